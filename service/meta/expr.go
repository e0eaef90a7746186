package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// Lookup resolves a variable name; ok is false when it is not defined
type Lookup func(name string) (value string, ok bool)

// ExpandEnv replaces ${env.KEY} with the value of environment variable KEY
func ExpandEnv(value string) string {
	return Expand(value, os.LookupEnv)
}

// Expand replaces ${env.KEY} expressions using lookup, undefined keys expand
// to an empty string. An expression without a closing brace is kept literally;
// a key with characters other than letters, digits or '_' leaves its prefix
// untouched and scanning resumes right after it.
func Expand(value string, lookup Lookup) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], envPrefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(envPrefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		key := value[startKey : startKey+endKey]
		if !isKey(key) {
			b.WriteString(envPrefix)
			i = startKey
			continue
		}
		if key != "" {
			resolved, _ := lookup(key)
			b.WriteString(resolved)
		}
		i = startKey + endKey + 1
	}
	return b.String()
}

func isKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
