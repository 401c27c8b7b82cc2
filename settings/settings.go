package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// AppName is the settings file base name and the discovery env var stem.
	AppName = "mbhelper"
	// EnvPrefix prefixes environment overrides, e.g. MBHELPER_COMPILER_PATH.
	EnvPrefix = "MBHELPER_"
)

// Settings is the decoded tool configuration.
type Settings struct {
	Compiler CompilerSettings `toml:"compiler"`
	Host     HostSettings     `toml:"host"`
	Build    BuildSettings    `toml:"build"`
	Log      LogSettings      `toml:"log"`
	Watch    WatchSettings    `toml:"watch"`
}

// CompilerSettings locates and drives the MapBasic compiler.
type CompilerSettings struct {
	Path        string   `toml:"path"`
	EnvVar      string   `toml:"env_var"`
	RegistryKey string   `toml:"registry_key"`
	Fallback    string   `toml:"fallback"`
	Args        []string `toml:"args"`
}

// HostSettings locates the MapInfo Pro host application.
type HostSettings struct {
	Path        string `toml:"path"`
	EnvVar      string `toml:"env_var"`
	RegistryKey string `toml:"registry_key"`
	Fallback    string `toml:"fallback"`
	ProgID      string `toml:"prog_id"`
	Attach      bool   `toml:"attach"`
}

// BuildSettings names the file kinds the build works with.
type BuildSettings struct {
	SourceExt      string `toml:"source_ext"`
	ProjectExt     string `toml:"project_ext"`
	ErrorExt       string `toml:"error_ext"`
	CleanArtifacts bool   `toml:"clean_artifacts"`
	Report         string `toml:"report"`
}

// LogSettings selects log verbosity and encoding.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// WatchSettings tunes the source folder watcher.
type WatchSettings struct {
	PollInterval time.Duration `toml:"poll_interval"`
	Debounce     time.Duration `toml:"debounce"`
}

// Defaults returns the settings used when no source overrides them.
func Defaults() *Settings {
	return &Settings{
		Compiler: CompilerSettings{
			EnvVar:      "MAPBASICEXE",
			RegistryKey: `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\mapbasic.exe`,
			Fallback:    `C:\Program Files\MapInfo\MapBasic\mapbasic.exe`,
			Args:        []string{"-NOSPLASH", "-server", "-nodde"},
		},
		Host: HostSettings{
			EnvVar:      "MAPINFOEXE",
			RegistryKey: `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\MapInfoPro.exe`,
			Fallback:    `C:\Program Files\MapInfo\Professional\MapInfoPro.exe`,
			ProgID:      "MapInfo.Application",
			Attach:      true,
		},
		Build: BuildSettings{
			SourceExt:  ".mb",
			ProjectExt: ".mbp",
			ErrorExt:   ".err",
		},
		Log: LogSettings{
			Level:  "warn",
			Format: "console",
		},
		Watch: WatchSettings{
			PollInterval: DefaultPollInterval,
			Debounce:     DefaultDebounce,
		},
	}
}

// Validate checks values that the build cannot work without.
func (s *Settings) Validate() error {
	var errs []error
	for name, ext := range map[string]string{
		"build.source_ext":  s.Build.SourceExt,
		"build.project_ext": s.Build.ProjectExt,
		"build.error_ext":   s.Build.ErrorExt,
	} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("%s must be an extension with a leading dot, got %q", name, ext))
		}
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, disabled, got %q", s.Log.Level))
	}
	switch s.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be 'console' or 'json', got %q", s.Log.Format))
	}
	if s.Watch.PollInterval < MinPollInterval {
		errs = append(errs, fmt.Errorf("watch.poll_interval must be at least %s", MinPollInterval))
	}
	return errors.Join(errs...)
}

// Load resolves Settings from defaults, the settings file, MBHELPER_* variables and
// the given "--path=value" overrides. An explicit file must exist; a discovered one may not.
func Load(file string, overrides []string) (*Settings, *Store, error) {
	b := NewBuilder().
		WithDefaults(Defaults()).
		WithEnvPrefix(EnvPrefix).
		WithArgs(overrides).
		WithFileDiscovery(DefaultDiscoveryOptions(AppName))
	if file != "" {
		b.WithFile(file)
	}

	var s Settings
	store, err := b.BuildAndScan(&s)
	if err != nil {
		if file != "" || !errors.Is(err, ErrConfigNotFound) {
			return nil, nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, store, nil
}
