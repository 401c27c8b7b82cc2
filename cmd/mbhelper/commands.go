package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/mbhelper/build"
	"github.com/lixenwraith/mbhelper/host"
	"github.com/lixenwraith/mbhelper/ini"
	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

func newRootCmd(a *app) *cobra.Command {
	var f buildFlags

	root := &cobra.Command{
		Use:   "mbhelper [path/to/mapbasic.exe] <folder>",
		Short: "Build MapBasic projects and launch MapInfo Pro",
		Long: `mbhelper compiles the MapBasic sources in a folder with the external compiler
and reports the compiler's error files.

If the folder holds a project file (.mbp), the modules listed under [Link] are
compiled and the project is linked. Otherwise every .mb file is compiled.`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, compiler, ok := splitLegacyArgs(args)
			if !ok {
				fmt.Fprintf(a.stdout, "Usage: %s\n", cmd.UseLine())
				return &exitError{code: ExitFailure}
			}
			if compiler != "" {
				f.compiler = compiler
			}
			if !a.buildOnce(folder, f) {
				return &exitError{code: ExitFailure}
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "settings file (default: discovered mbhelper.{toml,yaml,yml,json})")
	pf.StringArrayVar(&a.overrides, "set", nil, "override a setting, e.g. --set build.clean_artifacts=true (repeatable)")
	pf.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error, disabled")
	pf.StringVar(&a.logFormat, "log-format", "console", "log format: console or json")

	addBuildFlags(root, &f)

	root.AddCommand(
		newBuildCmd(a),
		newWatchCmd(a),
		newLaunchCmd(a),
		newProjectCmd(a),
		newSettingsCmd(a),
	)
	return root
}

// splitLegacyArgs reads "[compiler] <folder>" in either order. An argument ending
// in mapbasic.exe is the compiler; the other is the folder.
func splitLegacyArgs(args []string) (folder, compiler string, ok bool) {
	if len(args) == 0 || len(args) > 2 {
		return "", "", false
	}
	for _, arg := range args {
		if strings.HasSuffix(strings.ToLower(arg), "mapbasic.exe") {
			compiler = arg
		} else {
			folder = arg
		}
	}
	return folder, compiler, folder != ""
}

func addBuildFlags(cmd *cobra.Command, f *buildFlags) {
	cmd.Flags().StringVar(&f.compiler, "compiler", "", "path to mapbasic.exe (default: lookup chain)")
	cmd.Flags().StringVar(&f.project, "project", "", "project file to build instead of scanning the folder")
	cmd.Flags().StringVar(&f.report, "report", "", "write a build report (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&f.clean, "clean", false, "remove old error files before compiling")
}

func newBuildCmd(a *app) *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build <folder>",
		Short: "Compile the sources in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.buildOnce(args[0], f) {
				return &exitError{code: ExitFailure}
			}
			return nil
		},
	}
	addBuildFlags(cmd, &f)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Rebuild whenever sources in a folder change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			opts := build.WatchOptions{
				PollInterval: a.settings.Watch.PollInterval,
				Debounce:     a.settings.Watch.Debounce,
				BuildOnStart: true,
			}
			w := build.NewWatcher(folder, a.extensions(), func() bool {
				return a.buildOnce(folder, f)
			}, opts, a.log)
			if err := w.Run(cmd.Context()); err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			return nil
		},
	}
	addBuildFlags(cmd, &f)
	return cmd
}

func newLaunchCmd(a *app) *cobra.Command {
	var noAttach bool
	cmd := &cobra.Command{
		Use:   "launch [application.mbx]",
		Short: "Run an application in MapInfo Pro, attaching to a running instance if possible",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := host.Request{
				Executable: a.hostPath(),
				ProgID:     a.settings.Host.ProgID,
				Attach:     a.settings.Host.Attach && !noAttach,
			}
			if len(args) == 1 {
				mbx, err := filepath.Abs(args[0])
				if err != nil {
					return &exitError{code: ExitFailure, err: err}
				}
				req.Application = mbx
			}
			if err := host.NewLauncher(a.platform, a.log).Launch(req); err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noAttach, "no-attach", false, "always start a new instance")
	return cmd
}

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Inspect and tidy project files",
	}

	var write bool
	fmtCmd := &cobra.Command{
		Use:   "fmt <file.mbp>",
		Short: "Print a project file in canonical form, or rewrite it with -w",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ini.Load(args[0])
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			if write {
				if err := p.SaveFile(args[0]); err != nil {
					return &exitError{code: ExitFailure, err: err}
				}
				return nil
			}
			return p.Save(a.stdout)
		},
	}
	fmtCmd.Flags().BoolVarP(&write, "write", "w", false, "write the result back to the file")

	var folder string
	modulesCmd := &cobra.Command{
		Use:   "modules <file.mbp>",
		Short: "List the modules a project links and whether their sources exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ini.Load(args[0])
			if err != nil {
				return &exitError{code: ExitFailure, err: err}
			}
			if err := build.VerifyProject(p); err != nil {
				fmt.Fprintln(a.stderr, "Warning:", err)
			}
			dir := folder
			if dir == "" {
				dir = filepath.Dir(args[0])
			}
			missing := 0
			for _, m := range build.ProjectModules(p) {
				path := build.ModulePath(dir, m, a.settings.Build.SourceExt)
				status := "ok"
				if !fsutil.IsFile(path) {
					status = "missing"
					missing++
				}
				fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", m, path, status)
			}
			if missing > 0 {
				return &exitError{code: ExitFailure, err: fmt.Errorf("%d module(s) missing", missing)}
			}
			return nil
		},
	}
	modulesCmd.Flags().StringVar(&folder, "folder", "", "folder holding the sources (default: the project's folder)")

	cmd.AddCommand(fmtCmd, modulesCmd)
	return cmd
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the resolved settings",
	}

	var sources bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the resolved settings as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sources {
				_, err := fmt.Fprint(a.stdout, a.store.Debug())
				return err
			}
			return a.store.Dump(a.stdout)
		},
	}
	dumpCmd.Flags().BoolVar(&sources, "sources", false, "show every source's value for each setting")

	saveCmd := &cobra.Command{
		Use:   "save <file.toml>",
		Short: "Write the resolved settings to a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Save(args[0])
		},
	}

	cmd.AddCommand(dumpCmd, saveCmd)
	return cmd
}
