package build

import (
	"io"

	"github.com/rs/zerolog"
)

// DefaultArgs are the compiler flags passed before any file: no splash screen,
// server mode and no DDE.
var DefaultArgs = []string{"-NOSPLASH", "-server", "-nodde"}

// Extensions names the file kinds a build works with. Each includes the leading dot.
type Extensions struct {
	Source  string
	Project string
	Error   string
}

// DefaultExtensions returns the MapBasic file extensions.
func DefaultExtensions() Extensions {
	return Extensions{
		Source:  ".mb",
		Project: ".mbp",
		Error:   ".err",
	}
}

// withDefaults fills empty extensions from DefaultExtensions.
func (e Extensions) withDefaults() Extensions {
	def := DefaultExtensions()
	if e.Source == "" {
		e.Source = def.Source
	}
	if e.Project == "" {
		e.Project = def.Project
	}
	if e.Error == "" {
		e.Error = def.Error
	}
	return e
}

// Request describes one compiler run. It may be changed until Execute is called.
type Request struct {
	// CompilerPath is the compiler executable.
	CompilerPath string

	// Args are the flags placed before the file arguments. Nil selects DefaultArgs.
	Args []string

	// OutputFolder holds the sources and receives the compiler output.
	OutputFolder string

	// ProjectFile is linked after compiling; its modules replace SourceFiles.
	ProjectFile string

	// SourceFiles are compiled when there is no ProjectFile. When both are empty
	// the folder is scanned with Discover.
	SourceFiles []string
}

// Options configures an Orchestrator.
type Options struct {
	// Extensions of source, project and error files
	Extensions Extensions

	// CleanArtifacts removes error files left by a previous run before compiling
	CleanArtifacts bool

	// Runner starts the compiler; nil selects ExecRunner
	Runner Runner

	// Stderr receives one line per diagnostic; nil discards them
	Stderr io.Writer

	// Logger for progress and warnings
	Logger zerolog.Logger
}

// DefaultOptions returns options for a plain MapBasic build with logging disabled.
func DefaultOptions() Options {
	return Options{
		Extensions: DefaultExtensions(),
		Runner:     ExecRunner{},
		Logger:     zerolog.Nop(),
	}
}
