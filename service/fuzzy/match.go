// Package fuzzy suggests an existing asset for a reference that does not
// resolve, using word token overlap between file names.
package fuzzy

import (
	"math"
	"path"
	"sort"
	"strings"
	"unicode"
)

// AcceptRatio is the minimal share of target tokens a candidate must contain
const AcceptRatio = 0.5

// Tokens returns the word token set of a file name: base name without
// extension, lower-cased, split on underscore, dash and whitespace
func Tokens(name string) map[string]bool {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.FieldsFunc(strings.ToLower(base), func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	result := make(map[string]bool, len(words))
	for _, word := range words {
		result[word] = true
	}
	return result
}

// Score counts target tokens present in the candidate
func Score(target, candidate map[string]bool) int {
	score := 0
	for token := range target {
		if candidate[token] {
			score++
		}
	}
	return score
}

// Threshold returns the minimal accepted score for a target with tokenCount tokens
func Threshold(tokenCount int) int {
	threshold := int(math.Ceil(AcceptRatio * float64(tokenCount)))
	if threshold < 1 {
		threshold = 1
	}
	return threshold
}

// Match is a scored suggestion
type Match struct {
	Candidate string
	Score     int
	Tokens    int
}

// Rank returns the best scoring candidate; equal scores resolve to the
// lexicographically smallest candidate so the result does not depend on
// directory traversal order
func Rank(target string, candidates []string) (*Match, bool) {
	targetTokens := Tokens(target)
	if len(targetTokens) == 0 || len(candidates) == 0 {
		return nil, false
	}
	ordered := append([]string(nil), candidates...)
	sort.Strings(ordered)
	var best *Match
	for _, candidate := range ordered {
		score := Score(targetTokens, Tokens(candidate))
		if score == 0 {
			continue
		}
		if best == nil || score > best.Score {
			best = &Match{Candidate: candidate, Score: score, Tokens: len(targetTokens)}
		}
	}
	if best == nil || best.Score < Threshold(len(targetTokens)) {
		return nil, false
	}
	return best, true
}

// BestMatch returns the accepted candidate for target, if any
func BestMatch(target string, candidates []string) (string, bool) {
	match, ok := Rank(target, candidates)
	if !ok {
		return "", false
	}
	return match.Candidate, true
}
