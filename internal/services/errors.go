package services

import "errors"

var (
	// ErrInvalidQuery rejects empty or whitespace-only queries.
	ErrInvalidQuery = errors.New("query must not be empty")

	// ErrInvalidLanguage rejects language codes outside the configured set.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrStoreUnavailable tags a text or embedding store failure. Fatal for
	// a single-method request; inside a hybrid request it degrades that one
	// matcher to zero candidates.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrDimensionMismatch tags a vector whose length disagrees with the
	// configured model dimension. Recorded per item, never aborts a batch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
