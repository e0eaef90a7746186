package corpus

import (
	"fmt"

	"github.com/viant/flowcorpus/service/dao"
)

// ErrMalformed matches every MalformedError
var ErrMalformed = dao.ErrMalformed

// MalformedError describes why a module document was rejected
type MalformedError struct {
	File   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("malformed corpus: %s", e.Reason)
	}
	return fmt.Sprintf("malformed corpus %s: %s", e.File, e.Reason)
}

// Unwrap returns ErrMalformed
func (e *MalformedError) Unwrap() error {
	return ErrMalformed
}

func malformed(file, format string, args ...interface{}) error {
	return &MalformedError{File: file, Reason: fmt.Sprintf(format, args...)}
}
