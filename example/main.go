// Command example walks through the mbhelper packages without a real compiler:
// it writes a project with ini, builds it with a stand-in compiler, then lets the
// watcher rebuild after an edit.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/lixenwraith/mbhelper/build"
	"github.com/lixenwraith/mbhelper/ini"
	"github.com/lixenwraith/mbhelper/logging"
)

// fakeCompiler stands in for mapbasic.exe. It reports an error for every
// module whose source contains "BROKEN".
type fakeCompiler struct{}

func (fakeCompiler) Run(cmd build.Command) error {
	for i := 0; i+1 < len(cmd.Args); i++ {
		if cmd.Args[i] != "-d" {
			continue
		}
		src := cmd.Args[i+1]
		data, err := os.ReadFile(src)
		if err != nil {
			return err
		}
		errFile := src[:len(src)-len(filepath.Ext(src))] + ".err"
		if string(data) == "BROKEN" {
			msg := fmt.Sprintf("(%s:1) Unrecognized command: BROKEN\n", filepath.Base(src))
			if err := os.WriteFile(errFile, []byte(msg), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	// =========================================================================
	// PART 1: SETUP
	// A folder with two modules and a project that links them plus one missing.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 1: Creating project folder...")

	root, err := os.MkdirTemp("", "mbhelper-example-")
	if err != nil {
		log.Fatalf("❌ Failed to create temp folder: %v", err)
	}
	defer os.RemoveAll(root)

	folder := filepath.Join(root, "src")
	compiler := filepath.Join(root, "mapbasic.exe")
	must(os.Mkdir(folder, 0755))
	must(os.WriteFile(compiler, nil, 0755))
	must(os.WriteFile(filepath.Join(folder, "main.mb"), []byte("Include \"util.def\""), 0644))
	must(os.WriteFile(filepath.Join(folder, "util.mb"), []byte("Sub Util\nEnd Sub"), 0644))

	project := ini.New()
	link := project.AddSection("Link")
	link.AddKey("Application").AddValue("demo.mbx")
	modules := link.AddKey("Module")
	for _, m := range []string{"main.mbo", "util.mbo", "legacy.mbo", "main.mbo"} {
		modules.AddValue(m)
	}
	projectPath := filepath.Join(folder, "demo.mbp")
	must(project.SaveFile(projectPath))
	log.Printf("✅ Project written with modules %v (duplicate dropped).", modules.Values())

	// =========================================================================
	// PART 2: ONE BUILD
	// legacy.mbo has no source; it is skipped with a warning, not an error.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Building once...")

	logger, err := logging.New(logging.LevelWarn, logging.FormatConsole, os.Stderr)
	must(err)

	o := build.NewOrchestrator(build.Request{
		CompilerPath: compiler,
		OutputFolder: folder,
	}, build.Options{
		Runner:         fakeCompiler{},
		Stderr:         os.Stderr,
		Logger:         logger,
		CleanArtifacts: true,
	})
	ok := o.Execute()
	log.Printf("✅ Build success=%v, command: %s", ok, o.Command())

	// =========================================================================
	// PART 3: WATCH
	// Break a module, wait for the rebuild, then print its diagnostics.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Watching for changes...")

	var last atomic.Pointer[build.Orchestrator]
	rebuilt := make(chan bool, 4)
	rebuild := func() bool {
		o := build.NewOrchestrator(build.Request{CompilerPath: compiler, OutputFolder: folder},
			build.Options{Runner: fakeCompiler{}, CleanArtifacts: true, Logger: zerolog.Nop()})
		ok := o.Execute()
		last.Store(o)
		rebuilt <- ok
		return ok
	}

	w := build.NewWatcher(folder, build.DefaultExtensions(), rebuild, build.WatchOptions{
		PollInterval: 100 * time.Millisecond,
		Debounce:     200 * time.Millisecond,
	}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := w.Run(ctx); err != nil {
			log.Printf("❌ Watcher stopped: %v", err)
		}
	}()

	time.Sleep(300 * time.Millisecond)
	must(os.WriteFile(filepath.Join(folder, "util.mb"), []byte("BROKEN"), 0644))
	log.Println("   (util.mb broken, waiting for rebuild...)")

	select {
	case ok := <-rebuilt:
		log.Printf("✅ Rebuild success=%v", ok)
		for _, d := range last.Load().Diagnostics() {
			log.Printf("   %s line %d: %s", d.File, d.Line, d.Message)
		}
	case <-time.After(5 * time.Second):
		log.Fatalf("❌ Timed out waiting for rebuild.")
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
}
