package sqlar

import "errors"

// Sentinel errors returned by Archive operations. Call sites wrap them with
// context; match with errors.Is.
var (
	// ErrNotFound is returned when an archive file or entry does not exist.
	ErrNotFound = errors.New("sqlar: not found")

	// ErrReadOnly is returned when a mutating operation is attempted on an
	// archive opened ReadOnly.
	ErrReadOnly = errors.New("sqlar: archive is read-only")

	// ErrSchema is returned when the sqlar table is missing or its column
	// set does not match the archive schema.
	ErrSchema = errors.New("sqlar: unexpected table schema")

	// ErrCorrupt is returned when a stored payload matches neither its
	// compressed nor its raw interpretation against the recorded size.
	ErrCorrupt = errors.New("sqlar: corrupt entry")

	// ErrClosed is returned when an operation is attempted after Close.
	ErrClosed = errors.New("sqlar: archive is closed")
)
