package build

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/lixenwraith/mbhelper/ini"
	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// Orchestrator runs one build for a Request.
type Orchestrator struct {
	req  Request
	opts Options

	// Filled by Execute
	command     Command
	sources     []string
	project     string
	diagnostics []Diagnostic
	launched    bool
	success     bool
	started     time.Time
	duration    time.Duration
}

// NewOrchestrator prepares a build. Zero-valued fields of opts fall back to DefaultOptions.
func NewOrchestrator(req Request, opts Options) *Orchestrator {
	opts.Extensions = opts.Extensions.withDefaults()
	if opts.Runner == nil {
		opts.Runner = DefaultOptions().Runner
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Orchestrator{req: req, opts: opts}
}

// Execute runs the build and reports whether it finished without errors.
// It succeeds only if the compiler exists, the process ran, and no error artifact
// has a line in it. Every diagnostic is written to the error stream.
func (o *Orchestrator) Execute() bool {
	log := o.opts.Logger
	o.started = time.Now()
	o.launched = false
	o.diagnostics = nil
	o.success = false
	defer func() { o.duration = time.Since(o.started) }()

	if o.req.CompilerPath == "" || !fsutil.IsFile(o.req.CompilerPath) {
		fmt.Fprintf(o.opts.Stderr, "MapBasic compiler not specified or not found. Path='%s'\n", o.req.CompilerPath)
		log.Error().Err(ErrCompilerNotFound).Str("path", o.req.CompilerPath).Msg("Build aborted")
		return false
	}

	if err := o.resolve(); err != nil {
		fmt.Fprintln(o.opts.Stderr, err)
		log.Error().Err(err).Msg("Build aborted")
		return false
	}

	if o.opts.CleanArtifacts {
		removed, err := removeArtifacts(o.req.OutputFolder, o.opts.Extensions)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to remove old error files")
		}
		for _, path := range removed {
			log.Debug().Str("file", path).Msg("Removed old error file")
		}
	}

	o.command = o.buildCommand()
	log.Info().
		Str("compiler", o.command.Path).
		Str("dir", o.command.Dir).
		Int("sources", len(o.sources)).
		Str("project", o.project).
		Msg("Running compiler")
	log.Debug().Str("command", o.command.String()).Msg("Compiler command line")

	o.launched = true
	if err := o.opts.Runner.Run(o.command); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			err = fmt.Errorf("%w: %w", ErrLaunch, err)
			fmt.Fprintln(o.opts.Stderr, err)
			log.Error().Err(err).Msg("Build failed")
			return false
		}
		log.Debug().Int("exit_code", exitErr.ExitCode()).Msg("Compiler exited with non-zero code")
	}

	diags, err := ReadArtifacts(o.req.OutputFolder, o.opts.Extensions)
	o.diagnostics = diags
	for _, d := range diags {
		fmt.Fprintln(o.opts.Stderr, d.Raw)
	}
	if err != nil {
		fmt.Fprintln(o.opts.Stderr, err)
		log.Error().Err(err).Msg("Build failed")
		return false
	}

	o.success = len(diags) == 0
	log.Info().Bool("success", o.success).Int("diagnostics", len(diags)).Msg("Build finished")
	return o.success
}

// resolve fills the build set from the project, the request or a folder scan.
func (o *Orchestrator) resolve() error {
	log := o.opts.Logger
	exts := o.opts.Extensions

	o.project = o.req.ProjectFile
	o.sources = append([]string(nil), o.req.SourceFiles...)
	if o.project == "" && len(o.sources) == 0 {
		sources, project, err := Discover(o.req.OutputFolder, exts)
		if err != nil {
			return err
		}
		o.sources, o.project = sources, project
	}
	if o.project == "" {
		return nil
	}

	p, err := ini.Load(o.project)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	if err := VerifyProject(p); err != nil {
		log.Warn().Err(err).Str("project", o.project).Msg("Project has no modules to compile")
	}

	o.sources = nil
	for _, module := range ProjectModules(p) {
		path := ModulePath(o.req.OutputFolder, module, exts.Source)
		if !fsutil.IsFile(path) {
			log.Warn().Str("module", module).Str("file", path).Msg("Project module not found, skipped")
			continue
		}
		o.sources = append(o.sources, path)
	}
	return nil
}

func (o *Orchestrator) buildCommand() Command {
	base := o.req.Args
	if base == nil {
		base = DefaultArgs
	}
	args := append([]string(nil), base...)
	for _, src := range o.sources {
		args = append(args, "-d", src)
	}
	if o.project != "" {
		args = append(args, "-l", o.project)
	}
	return Command{
		Path: o.req.CompilerPath,
		Dir:  filepath.Dir(o.req.OutputFolder),
		Args: args,
	}
}

// Diagnostics returns the diagnostics of the last Execute.
func (o *Orchestrator) Diagnostics() []Diagnostic {
	return o.diagnostics
}

// Command returns the command run by the last Execute.
func (o *Orchestrator) Command() Command {
	return o.command
}

// Sources returns the build set of the last Execute.
func (o *Orchestrator) Sources() []string {
	return o.sources
}

// Project returns the project file used by the last Execute, or "".
func (o *Orchestrator) Project() string {
	return o.project
}

// Launched reports whether the last Execute tried to start the compiler.
func (o *Orchestrator) Launched() bool {
	return o.launched
}
