package build

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls []Command
	err   error
	onRun func(cmd Command)
}

func (f *fakeRunner) Run(cmd Command) error {
	f.calls = append(f.calls, cmd)
	if f.onRun != nil {
		f.onRun(cmd)
	}
	return f.err
}

type fixture struct {
	root     string
	out      string
	compiler string
	runner   *fakeRunner
	stderr   bytes.Buffer
	logs     bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		out:      filepath.Join(root, "src"),
		compiler: filepath.Join(root, "mapbasic.exe"),
		runner:   &fakeRunner{},
	}
	require.NoError(t, os.Mkdir(f.out, 0755))
	require.NoError(t, os.WriteFile(f.compiler, nil, 0755))
	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.out, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *fixture) orchestrator(req Request) *Orchestrator {
	if req.CompilerPath == "" {
		req.CompilerPath = f.compiler
	}
	if req.OutputFolder == "" {
		req.OutputFolder = f.out
	}
	return NewOrchestrator(req, Options{
		Runner: f.runner,
		Stderr: &f.stderr,
		Logger: zerolog.New(&f.logs),
	})
}

func TestExecuteCompilerNotFound(t *testing.T) {
	for name, path := range map[string]string{
		"Empty":   "",
		"Missing": filepath.Join(t.TempDir(), "nope.exe"),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.write(t, "a.mb", "")
			o := NewOrchestrator(Request{CompilerPath: path, OutputFolder: f.out}, Options{
				Runner: f.runner,
				Stderr: &f.stderr,
			})

			assert.False(t, o.Execute())
			assert.False(t, o.Launched())
			assert.Empty(t, f.runner.calls)
			assert.Contains(t, f.stderr.String(), "not specified or not found")
			assert.Equal(t, 1, strings.Count(f.stderr.String(), "\n"))
		})
	}
}

func TestExecuteFolderScan(t *testing.T) {
	f := newFixture(t)
	a := f.write(t, "a.mb", "")
	b := f.write(t, "B.MB", "")
	f.write(t, "notes.txt", "")
	f.write(t, "a.mbo", "")

	o := f.orchestrator(Request{})
	require.True(t, o.Execute())
	require.Len(t, f.runner.calls, 1)

	cmd := f.runner.calls[0]
	assert.Equal(t, f.compiler, cmd.Path)
	assert.Equal(t, f.root, cmd.Dir)
	assert.Equal(t, []string{"-NOSPLASH", "-server", "-nodde", "-d", b, "-d", a}, cmd.Args)
	assert.Equal(t, cmd, o.Command())
	assert.Empty(t, o.Project())
	assert.Empty(t, o.Diagnostics())
	assert.Empty(t, f.stderr.String())
}

func TestExecuteExplicitSources(t *testing.T) {
	f := newFixture(t)
	f.write(t, "ignored.mb", "")

	o := f.orchestrator(Request{
		Args:        []string{"-NOSPLASH"},
		SourceFiles: []string{"one.mb", "two.mb"},
	})
	require.True(t, o.Execute())
	assert.Equal(t, []string{"-NOSPLASH", "-d", "one.mb", "-d", "two.mb"}, f.runner.calls[0].Args)
}

func TestExecuteProject(t *testing.T) {
	t.Run("MissingModuleDropped", func(t *testing.T) {
		f := newFixture(t)
		main := f.write(t, "main.mb", "")
		f.write(t, "other.mb", "")
		project := f.write(t, "app.mbp", "[Link]\nApplication=app.mbx\nModule=main.mbo\nModule=missing.mbo\n")

		o := f.orchestrator(Request{})
		require.True(t, o.Execute())

		assert.Equal(t, project, o.Project())
		assert.Equal(t, []string{main}, o.Sources())
		assert.Equal(t,
			[]string{"-NOSPLASH", "-server", "-nodde", "-d", main, "-l", project},
			f.runner.calls[0].Args)
		assert.Contains(t, f.logs.String(), "missing.mbo")
		assert.Empty(t, f.stderr.String())
	})

	t.Run("ExplicitProjectReplacesSources", func(t *testing.T) {
		f := newFixture(t)
		lib := f.write(t, "lib.mb", "")
		project := f.write(t, "app.mbp", "[LINK]\nmodule=lib\n")

		o := f.orchestrator(Request{ProjectFile: project, SourceFiles: []string{"x.mb"}})
		require.True(t, o.Execute())
		assert.Equal(t, []string{"-NOSPLASH", "-server", "-nodde", "-d", lib, "-l", project}, f.runner.calls[0].Args)
	})

	t.Run("NoLinkSection", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		project := f.write(t, "app.mbp", "[Other]\nModule=main\n")

		o := f.orchestrator(Request{ProjectFile: project})
		require.True(t, o.Execute())
		assert.Empty(t, o.Sources())
		assert.Equal(t, []string{"-NOSPLASH", "-server", "-nodde", "-l", project}, f.runner.calls[0].Args)
		assert.Contains(t, f.logs.String(), "no [Link] section")
	})

	t.Run("LastProjectWins", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "a.mbp", "[Link]\n")
		last := f.write(t, "b.mbp", "[Link]\n")

		o := f.orchestrator(Request{})
		require.True(t, o.Execute())
		assert.Equal(t, last, o.Project())
	})

	t.Run("ProjectUnreadable", func(t *testing.T) {
		f := newFixture(t)
		o := f.orchestrator(Request{ProjectFile: filepath.Join(f.out, "gone.mbp")})
		assert.False(t, o.Execute())
		assert.False(t, o.Launched())
		assert.Contains(t, f.stderr.String(), "failed to load project")
	})
}

func TestExecuteDiagnostics(t *testing.T) {
	t.Run("ArtifactLinesForceFailure", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		f.runner.onRun = func(cmd Command) {
			f.write(t, "main.err", "Unrecognized command\r\n(main.mb:12) Found: [End ] while searching for [End Sub]\n\n")
		}

		o := f.orchestrator(Request{})
		assert.False(t, o.Execute())

		diags := o.Diagnostics()
		require.Len(t, diags, 3)
		assert.Equal(t, "(main.mbp:1)Unrecognized command", diags[0].Raw)
		assert.Equal(t, "main.mbp", diags[0].File)
		assert.Equal(t, 1, diags[0].Line)
		assert.Equal(t, "main", diags[0].Artifact)

		assert.Equal(t, "main.mb", diags[1].File)
		assert.Equal(t, 12, diags[1].Line)
		assert.Equal(t, "Found: [End ] while searching for [End Sub]", diags[1].Message)

		assert.Equal(t, "(main.mbp:1)", diags[2].Raw)

		assert.Equal(t,
			"(main.mbp:1)Unrecognized command\n(main.mb:12) Found: [End ] while searching for [End Sub]\n(main.mbp:1)\n",
			f.stderr.String())
	})

	t.Run("CaseInsensitiveArtifactExtension", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		f.write(t, "OLD.ERR", "stale")

		o := f.orchestrator(Request{})
		assert.False(t, o.Execute())
		require.Len(t, o.Diagnostics(), 1)
		assert.Equal(t, "(OLD.mbp:1)stale", o.Diagnostics()[0].Raw)
	})

	t.Run("LongLinesAreReported", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		long := strings.Repeat("y", 70*1024)
		f.write(t, "a.err", "first\n"+long+"\nthird\n")
		f.write(t, "b.err", "second file\n")

		o := f.orchestrator(Request{})
		assert.False(t, o.Execute())
		require.Len(t, o.Diagnostics(), 4)
		assert.Equal(t,
			"(a.mbp:1)first\n(a.mbp:1)"+long+"\n(a.mbp:1)third\n(b.mbp:1)second file\n",
			f.stderr.String())
	})

	t.Run("CleanArtifacts", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		stale := f.write(t, "main.err", "old error")

		o := NewOrchestrator(Request{CompilerPath: f.compiler, OutputFolder: f.out}, Options{
			Runner:         f.runner,
			CleanArtifacts: true,
		})
		assert.True(t, o.Execute())
		assert.NoFileExists(t, stale)
	})

	t.Run("NonZeroExitIsNotFailure", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		f.runner.err = &exec.ExitError{}

		o := f.orchestrator(Request{})
		assert.True(t, o.Execute())
	})

	t.Run("LaunchErrorSkipsArtifacts", func(t *testing.T) {
		f := newFixture(t)
		f.write(t, "main.mb", "")
		f.write(t, "main.err", "would be read")
		f.runner.err = errors.New("access denied")

		o := f.orchestrator(Request{})
		assert.False(t, o.Execute())
		assert.True(t, o.Launched())
		assert.Empty(t, o.Diagnostics())
		assert.Contains(t, f.stderr.String(), "failed to run compiler: access denied")
		assert.NotContains(t, f.stderr.String(), "would be read")
	})
}

func TestExecuteWithExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script as the compiler")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	f := newFixture(t)
	f.write(t, "prog.mb", "")
	script := "#!/bin/sh\necho \"$@\" > src/args.txt\necho 'bad thing' > src/prog.err\nexit 3\n"
	require.NoError(t, os.WriteFile(f.compiler, []byte(script), 0755))

	var stderr bytes.Buffer
	o := NewOrchestrator(Request{CompilerPath: f.compiler, OutputFolder: f.out}, Options{Stderr: &stderr})
	assert.False(t, o.Execute())

	args, err := os.ReadFile(filepath.Join(f.out, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "-NOSPLASH -server -nodde -d "+filepath.Join(f.out, "prog.mb")+"\n", string(args))
	assert.Equal(t, "(prog.mbp:1)bad thing\n", stderr.String())
}
