package annotation

import "errors"

// Error kinds returned by the normalizer and its collaborators. Call sites
// wrap them with context; test for them with errors.Is.
var (
	// ErrValidation is returned for malformed JSON sources and records.
	ErrValidation = errors.New("validation error")

	// ErrConfiguration is returned for unusable inputs outside the JSON
	// source, such as a missing table or an unwritable output directory.
	ErrConfiguration = errors.New("configuration error")

	// ErrLookup is returned when a descriptor was never annotated.
	ErrLookup = errors.New("lookup error")
)
