package build

import "errors"

var (
	// ErrCompilerNotFound is returned when the compiler path is empty or does not exist.
	ErrCompilerNotFound = errors.New("compiler not specified or not found")

	// ErrLaunch wraps failures to start or wait for the compiler process.
	ErrLaunch = errors.New("failed to run compiler")

	// ErrInvalidProject describes a project file without a Link section or Module key.
	ErrInvalidProject = errors.New("invalid project file")
)
