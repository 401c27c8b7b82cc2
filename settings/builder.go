package settings

import (
	"errors"
	"fmt"
)

// ValidatorFunc checks a fully loaded Store.
type ValidatorFunc func(s *Store) error

// Builder provides a fluent interface for building a Store
type Builder struct {
	store      *Store
	opts       LoadOptions
	defaults   any
	prefix     string
	file       string
	args       []string
	validators []ValidatorFunc
}

// NewBuilder creates a new settings builder
func NewBuilder() *Builder {
	return &Builder{
		store: New(),
		opts:  DefaultLoadOptions(),
	}
}

// WithDefaults sets the struct containing default values
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithPrefix sets the path prefix for struct registration
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithEnvPrefix sets the environment variable prefix
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFile sets the settings file path
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithArgs sets the command-line overrides
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithSources sets the precedence order for sources
func (b *Builder) WithSources(sources ...Source) *Builder {
	b.opts.Sources = sources
	return b
}

// WithEnvTransform sets a custom environment variable transformer
func (b *Builder) WithEnvTransform(fn EnvTransformFunc) *Builder {
	b.opts.EnvTransform = fn
	return b
}

// WithEnvWhitelist limits which paths are checked for env vars
func (b *Builder) WithEnvWhitelist(paths ...string) *Builder {
	if b.opts.EnvWhitelist == nil {
		b.opts.EnvWhitelist = make(map[string]bool)
	}
	for _, path := range paths {
		b.opts.EnvWhitelist[path] = true
	}
	return b
}

// WithValidator adds a validation function run after loading, in order of addition
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build registers defaults, loads every source and runs validators.
// A missing settings file is returned as ErrConfigNotFound together with a usable Store.
func (b *Builder) Build() (*Store, error) {
	if b.defaults != nil {
		if err := b.store.RegisterStruct(b.prefix, b.defaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	loadErr := b.store.LoadWithOptions(b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		return nil, loadErr
	}

	for _, validator := range b.validators {
		if err := validator(b.store); err != nil {
			return nil, fmt.Errorf("settings validation failed: %w", err)
		}
	}

	return b.store, loadErr
}

// BuildAndScan builds the Store and decodes it into target.
func (b *Builder) BuildAndScan(target any) (*Store, error) {
	store, err := b.Build()
	if err != nil && !errors.Is(err, ErrConfigNotFound) {
		return nil, err
	}

	if scanErr := store.Scan(b.prefix, target); scanErr != nil {
		return nil, fmt.Errorf("failed to scan settings into target: %w", scanErr)
	}
	return store, err
}
