package settings

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// item holds the default, per-source and resolved value of one path.
type item struct {
	defaultValue any
	values       map[Source]any
	currentValue any
}

// Store keeps registered settings paths and their values from every source.
type Store struct {
	items          map[string]item
	options        LoadOptions
	tagName        string
	configFilePath string
	mutex          sync.RWMutex
}

// New creates an empty Store with the default load options.
func New() *Store {
	return &Store{
		items:   make(map[string]item),
		options: DefaultLoadOptions(),
		tagName: "toml",
	}
}

// Register makes a path known to the Store with its default value.
// The path is dot-separated (e.g., "compiler.path"); every segment must be a bare key.
func (s *Store) Register(path string, defaultValue any) error {
	if path == "" {
		return fmt.Errorf("registration path cannot be empty")
	}

	for _, segment := range strings.Split(path, ".") {
		if !isValidKeySegment(segment) {
			return fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.items[path] = item{
		defaultValue: defaultValue,
		values:       make(map[Source]any),
		currentValue: defaultValue,
	}
	return nil
}

// Unregister removes a path and all paths below it.
func (s *Store) Unregister(path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prefix := path + "."
	found := false
	for p := range s.items {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(s.items, p)
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	return nil
}

// RegisterStruct registers every exported leaf field of a struct, using the
// `toml` tag (or the field name) as the path segment. Nested structs extend the path.
func (s *Store) RegisterStruct(prefix string, defaults any) error {
	v := reflect.ValueOf(defaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("RegisterStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("RegisterStruct requires a struct or struct pointer, got %T", defaults)
	}

	var errs []string
	s.registerFields(v, prefix, &errs)
	if len(errs) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func (s *Store) registerFields(v reflect.Value, prefix string, errs *[]string) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(s.tagName)
		if tag == "-" {
			continue
		}
		key := field.Name
		if name, _, _ := strings.Cut(tag, ","); name != "" {
			key = name
		}

		path := key
		if prefix != "" {
			path = strings.TrimSuffix(prefix, ".") + "." + key
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr && fv.Type().Elem().Kind() == reflect.Struct {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		// time.Duration and friends are leaves; only plain structs recurse.
		if fv.Kind() == reflect.Struct {
			s.registerFields(fv, path, errs)
			continue
		}

		if err := s.Register(path, fv.Interface()); err != nil {
			*errs = append(*errs, fmt.Sprintf("field %s (path %s): %v", field.Name, path, err))
		}
	}
}

// Paths returns the registered paths with the given prefix, sorted.
func (s *Store) Paths(prefix string) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var paths []string
	for p := range s.items {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// Get returns the resolved value of a path and whether the path is registered.
func (s *Store) Get(path string) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	it, ok := s.items[path]
	if !ok {
		return nil, false
	}
	return it.currentValue, true
}

// Set stores a value for a path as if it came from the command line.
func (s *Store) Set(path string, value any) error {
	return s.SetSource(SourceCLI, path, value)
}

// SetSource stores a value for a path under a specific source and re-resolves it.
func (s *Store) SetSource(source Source, path string, value any) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	it, ok := s.items[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, path)
	}
	it.values[source] = value
	it.currentValue = s.computeValue(it)
	s.items[path] = it
	return nil
}

// Source reports which source supplied the resolved value of a path.
func (s *Store) Source(path string) (Source, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	it, ok := s.items[path]
	if !ok {
		return "", false
	}
	for _, src := range s.options.Sources {
		if src == SourceDefault {
			return SourceDefault, true
		}
		if _, has := it.values[src]; has {
			return src, true
		}
	}
	return SourceDefault, true
}

// Validate checks that every required path is registered and set by some source.
func (s *Store) Validate(required ...string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var missing []string
	for _, path := range required {
		it, ok := s.items[path]
		if !ok {
			missing = append(missing, path+" (not registered)")
			continue
		}
		if len(it.values) == 0 && isZero(it.defaultValue) {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Debug returns every path with its resolved, default and per-source values.
func (s *Store) Debug() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	paths := make([]string, 0, len(s.items))
	for p := range s.items {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	fmt.Fprintf(&b, "Precedence: %v\n", s.options.Sources)
	for _, p := range paths {
		it := s.items[p]
		fmt.Fprintf(&b, "  %s:\n", p)
		fmt.Fprintf(&b, "    current: %v\n", it.currentValue)
		fmt.Fprintf(&b, "    default: %v\n", it.defaultValue)
		for _, src := range s.options.Sources {
			if v, ok := it.values[src]; ok {
				fmt.Fprintf(&b, "    %s: %v\n", src, v)
			}
		}
	}
	return b.String()
}

// FilePath returns the settings file last loaded, or "".
func (s *Store) FilePath() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.configFilePath
}

// computeValue picks the highest-precedence value. Caller holds the lock.
func (s *Store) computeValue(it item) any {
	for _, src := range s.options.Sources {
		if src == SourceDefault {
			return it.defaultValue
		}
		if v, ok := it.values[src]; ok {
			return v
		}
	}
	return it.defaultValue
}

// recompute re-resolves every item after the precedence changed. Caller holds the lock.
func (s *Store) recompute() {
	for p, it := range s.items {
		it.currentValue = s.computeValue(it)
		s.items[p] = it
	}
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}
