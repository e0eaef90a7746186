package dao

import "errors"

// Sentinel DAO errors, detect them with errors.Is.

var (
	// ErrNotFound is returned when the requested document does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrMalformed indicates a document that matches no recognised layout or
	// carries an invalid record.
	ErrMalformed = errors.New("dao: malformed document")

	// ErrNilEntity is returned when the caller attempts to persist a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
