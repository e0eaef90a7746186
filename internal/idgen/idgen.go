// Package idgen issues run identifiers used in temporary and backup file
// names. NewFunc can be replaced in tests.
package idgen

import (
	"strings"

	"github.com/google/uuid"
)

var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique identifier
func New() string { return NewFunc() }

// Short returns the leading segment of a new identifier
func Short() string {
	id := New()
	if index := strings.IndexByte(id, '-'); index > 0 {
		return id[:index]
	}
	return id
}
