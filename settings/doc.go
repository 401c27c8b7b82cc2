// Package settings holds the helper's own configuration: where the compiler and host
// application live, which arguments and file extensions to use, and how to log.
//
// Values are registered from a defaults struct and layered from several sources:
// TOML, YAML or JSON files, MBHELPER_* environment variables, and --path=value
// command-line overrides.
//
// Quick Start:
//
//	s, store, err := settings.Load("", []string{"--compiler.path=/opt/mapbasic/mapbasic.exe"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(s.Compiler.Path, store.Debug())
//
// Default Precedence (highest to lowest):
//  1. Command-line overrides (--build.source_ext=.mb)
//  2. Environment variables (MBHELPER_BUILD_SOURCE_EXT=.mb)
//  3. Settings file (mbhelper.toml)
//  4. Default values
//
// Custom Precedence:
//
//	store, err := settings.NewBuilder().
//	    WithDefaults(settings.Defaults()).
//	    WithSources(
//	        settings.SourceEnv,
//	        settings.SourceCLI,
//	        settings.SourceFile,
//	        settings.SourceDefault,
//	    ).
//	    Build()
//
// A Store is safe for concurrent use.
package settings
