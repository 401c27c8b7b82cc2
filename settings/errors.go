package settings

import "errors"

// MaxValueSize limits the length of a single environment value.
const MaxValueSize = 64 * 1024

var (
	// ErrConfigNotFound is returned when a settings file does not exist.
	// Callers that run on defaults treat it as non-fatal.
	ErrConfigNotFound = errors.New("settings file not found")

	// ErrCLIParse wraps failures while reading command-line overrides.
	ErrCLIParse = errors.New("failed to parse command-line overrides")

	// ErrValueSize is returned when a value exceeds MaxValueSize.
	ErrValueSize = errors.New("value exceeds maximum size")

	// ErrNotRegistered is returned for operations on unknown paths.
	ErrNotRegistered = errors.New("path not registered")
)
