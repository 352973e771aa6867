package persistence

import "errors"

var (
	// ErrKeySizeMismatch is returned when two primary keys of different
	// sizes are compared.
	ErrKeySizeMismatch = errors.New("primary key size mismatch")
	ErrStorageNotFound = errors.New("storage not found")
	// ErrObjectNotFound is returned by loaders whose statement gave no row.
	ErrObjectNotFound = errors.New("object not found")
)
