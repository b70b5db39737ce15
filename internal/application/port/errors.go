package port

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateNumber is returned when an invoice number is already stored.
	ErrDuplicateNumber = errors.New("invoice number already exists")

	// ErrBusy is returned when the store stayed locked by another writer
	// past its busy timeout. The operation had no effect and may be retried.
	ErrBusy = errors.New("database busy")

	// ErrPersistence wraps store failures (I/O, locking, corrupt rows).
	// It is not retried by the service; callers decide on retries.
	ErrPersistence = errors.New("persistence failure")
)
