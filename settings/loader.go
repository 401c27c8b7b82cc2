package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/mbhelper/internal/fsutil"
)

// Source represents a settings source, used to define load precedence
type Source string

const (
	// SourceDefault represents use of registered default values
	SourceDefault Source = "default"
	// SourceFile represents values loaded from a settings file
	SourceFile Source = "file"
	// SourceEnv represents values loaded from environment variables
	SourceEnv Source = "env"
	// SourceCLI represents values loaded from command-line overrides
	SourceCLI Source = "cli"
)

// EnvTransformFunc converts a settings path to an environment variable name
type EnvTransformFunc func(path string) string

// LoadOptions configures how settings are loaded from multiple sources
type LoadOptions struct {
	// Sources defines the precedence order (first = highest priority)
	Sources []Source

	// EnvPrefix is prepended to environment variable names
	// Example: "MBHELPER_" transforms "compiler.path" to "MBHELPER_COMPILER_PATH"
	EnvPrefix string

	// EnvTransform customizes how paths map to environment variables
	EnvTransform EnvTransformFunc

	// EnvWhitelist limits which paths are checked for env vars (nil = all)
	EnvWhitelist map[string]bool
}

// DefaultLoadOptions returns the standard load options
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

// LoadWithOptions loads settings from every source in opts.
// A missing file is reported as ErrConfigNotFound alongside any other non-fatal errors.
func (s *Store) LoadWithOptions(filePath string, args []string, opts LoadOptions) error {
	s.mutex.Lock()
	s.options = opts
	s.recompute()
	s.mutex.Unlock()

	var loadErrors []error

	for i := len(opts.Sources) - 1; i >= 0; i-- {
		switch opts.Sources[i] {
		case SourceDefault:
			continue

		case SourceFile:
			if filePath == "" {
				continue
			}
			if err := s.LoadFile(filePath); err != nil {
				if !errors.Is(err, ErrConfigNotFound) {
					return err
				}
				loadErrors = append(loadErrors, err)
			}

		case SourceEnv:
			if err := s.loadEnv(opts); err != nil {
				loadErrors = append(loadErrors, err)
			}

		case SourceCLI:
			if len(args) > 0 {
				if err := s.LoadCLI(args); err != nil {
					loadErrors = append(loadErrors, err)
				}
			}
		}
	}

	return errors.Join(loadErrors...)
}

// LoadEnv loads values from environment variables with the given prefix
func (s *Store) LoadEnv(prefix string) error {
	s.mutex.RLock()
	opts := s.options
	s.mutex.RUnlock()

	opts.EnvPrefix = prefix
	return s.loadEnv(opts)
}

// LoadFile reads a TOML, YAML or JSON settings file.
// Unregistered paths in the file are ignored.
func (s *Store) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to open settings file '%s': %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(data)
	}

	parsed := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("failed to parse TOML settings file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&parsed); err != nil {
			return fmt.Errorf("failed to parse JSON settings file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return fmt.Errorf("failed to parse YAML settings file '%s': %w", path, err)
		}
	default:
		return fmt.Errorf("unable to determine settings format for file '%s'", path)
	}

	flat := flattenMap(parsed, "")

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.configFilePath = path
	for p, it := range s.items {
		if v, ok := flat[p]; ok {
			it.values[SourceFile] = v
		} else {
			delete(it.values, SourceFile)
		}
		it.currentValue = s.computeValue(it)
		s.items[p] = it
	}
	return nil
}

// LoadCLI loads values from "--path=value" or "--path value" arguments.
// A bare "--flag" is read as "true"; non-flag arguments are skipped.
func (s *Store) LoadCLI(args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for p, v := range flattenMap(parsed, "") {
		if it, ok := s.items[p]; ok {
			it.values[SourceCLI] = v
			it.currentValue = s.computeValue(it)
			s.items[p] = it
		}
	}
	return nil
}

func (s *Store) loadEnv(opts LoadOptions) error {
	transform := opts.EnvTransform
	if transform == nil {
		transform = defaultEnvTransform(opts.EnvPrefix)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for p, it := range s.items {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[p] {
			continue
		}
		value, ok := os.LookupEnv(transform(p))
		if !ok {
			continue
		}
		if len(value) > MaxValueSize {
			return fmt.Errorf("%w: %s", ErrValueSize, transform(p))
		}
		// Stored raw; Scan converts to the target type.
		it.values[SourceEnv] = value
		it.currentValue = s.computeValue(it)
		s.items[p] = it
	}
	return nil
}

// Save writes the resolved values as TOML, atomically.
func (s *Store) Save(path string) error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	return fsutil.AtomicWriteFile(path, data)
}

// Dump writes the resolved values as TOML to w.
func (s *Store) Dump(w io.Writer) error {
	data, err := s.encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (s *Store) encode() ([]byte, error) {
	s.mutex.RLock()
	nested := make(map[string]any)
	for p, it := range s.items {
		setNestedValue(nested, p, it.currentValue)
	}
	s.mutex.RUnlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(nested); err != nil {
		return nil, fmt.Errorf("failed to marshal settings to TOML: %w", err)
	}
	return buf.Bytes(), nil
}

// defaultEnvTransform maps "compiler.path" to PREFIX + "COMPILER_PATH".
func defaultEnvTransform(prefix string) EnvTransformFunc {
	return func(path string) string {
		return prefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
	}
}

// parseArgs reads "--key.sub=value", "--key.sub value" and "--flag" forms.
// Every value is kept as a string.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		content := strings.TrimPrefix(arg, "--")
		if content == "" {
			continue
		}

		keyPath, value, hasValue := strings.Cut(content, "=")
		if !hasValue {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				value = args[i+1]
				i++
			} else {
				value = "true"
			}
		}
		if keyPath == "" {
			continue
		}

		for _, segment := range strings.Split(keyPath, ".") {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}
		setNestedValue(result, keyPath, value)
	}
	return result, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	var probe any
	if err := json.Unmarshal(data, &probe); err == nil {
		return "json"
	}
	// TOML before YAML: most TOML documents are also valid YAML scalars.
	if err := toml.Unmarshal(data, &probe); err == nil {
		return "toml"
	}
	if err := yaml.Unmarshal(data, &probe); err == nil {
		return "yaml"
	}
	return ""
}
