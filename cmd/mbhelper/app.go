package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/mbhelper/build"
	"github.com/lixenwraith/mbhelper/host"
	"github.com/lixenwraith/mbhelper/locate"
	"github.com/lixenwraith/mbhelper/logging"
	"github.com/lixenwraith/mbhelper/settings"
)

// app holds what every command shares: streams, flags and loaded settings.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// Replaced in tests
	runner   build.Runner
	platform host.Platform

	// Global flags
	configFile string
	overrides  []string
	logLevel   string
	logFormat  string

	// Set by setup
	settings *settings.Settings
	store    *settings.Store
	log      zerolog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		log:    zerolog.Nop(),
	}
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return exitCode(root.ExecuteContext(ctx), a.stderr)
}

// setup loads settings with the global flags applied and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	overrides, err := settingsOverrides(a.overrides)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}
	if cmd.Flags().Changed("log-level") {
		overrides = append(overrides, "--log.level="+a.logLevel)
	}
	if cmd.Flags().Changed("log-format") {
		overrides = append(overrides, "--log.format="+a.logFormat)
	}

	s, store, err := settings.Load(a.configFile, overrides)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	log, err := logging.New(s.Log.Level, s.Log.Format, a.stderr)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	a.settings, a.store, a.log = s, store, log
	if path := store.FilePath(); path != "" {
		a.log.Debug().Str("file", path).Msg("Settings loaded")
	}
	return nil
}

// settingsOverrides turns "key=value" pairs into "--key=value" arguments.
func settingsOverrides(pairs []string) ([]string, error) {
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set value %q, expected key=value", p)
		}
		out = append(out, "--"+key+"="+value)
	}
	return out, nil
}

func (a *app) extensions() build.Extensions {
	return build.Extensions{
		Source:  a.settings.Build.SourceExt,
		Project: a.settings.Build.ProjectExt,
		Error:   a.settings.Build.ErrorExt,
	}
}

// compilerPath returns explicit when given, otherwise the settings lookup chain result.
func (a *app) compilerPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	c := a.settings.Compiler
	return locate.Find(locate.Options{
		Path:        c.Path,
		EnvVar:      c.EnvVar,
		RegistryKey: c.RegistryKey,
		Name:        "mapbasic.exe",
		Fallback:    c.Fallback,
	})
}

func (a *app) hostPath() string {
	h := a.settings.Host
	return locate.Find(locate.Options{
		Path:        h.Path,
		EnvVar:      h.EnvVar,
		RegistryKey: h.RegistryKey,
		Name:        "MapInfoPro.exe",
		Fallback:    h.Fallback,
	})
}

// buildFlags are shared by the root form and the build and watch commands.
type buildFlags struct {
	compiler string
	project  string
	report   string
	clean    bool
}

// newOrchestrator prepares one build of folder.
func (a *app) newOrchestrator(folder string, f buildFlags) *build.Orchestrator {
	runner := a.runner
	if runner == nil {
		runner = build.ExecRunner{Stdout: a.stdout, Stderr: a.stderr}
	}
	req := build.Request{
		CompilerPath: a.compilerPath(f.compiler),
		Args:         a.settings.Compiler.Args,
		OutputFolder: folder,
		ProjectFile:  f.project,
	}
	return build.NewOrchestrator(req, build.Options{
		Extensions:     a.extensions(),
		CleanArtifacts: f.clean || a.settings.Build.CleanArtifacts,
		Runner:         runner,
		Stderr:         a.stderr,
		Logger:         a.log,
	})
}

// buildOnce runs one build, writes the report if asked and prints the verdict.
func (a *app) buildOnce(folder string, f buildFlags) bool {
	o := a.newOrchestrator(folder, f)
	ok := o.Execute()

	report := f.report
	if report == "" {
		report = a.settings.Build.Report
	}
	if report != "" {
		if err := build.WriteReport(report, o.Report()); err != nil {
			fmt.Fprintln(a.stderr, err)
			ok = false
		} else {
			a.log.Debug().Str("file", report).Msg("Report written")
		}
	}

	if ok {
		fmt.Fprintln(a.stdout, "No errors found")
	} else {
		fmt.Fprintln(a.stdout, "Errors found")
	}
	return ok
}
