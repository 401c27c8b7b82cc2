package settings

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Scan decodes the resolved values under basePath into target, which must be a
// non-nil pointer to a struct or map. Fields are matched by `toml` tag.
func (s *Store) Scan(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be non-nil pointer, got %T", target)
	}

	s.mutex.RLock()
	nested := make(map[string]any)
	for p, it := range s.items {
		setNestedValue(nested, p, it.currentValue)
	}
	tagName := s.tagName
	s.mutex.RUnlock()

	section := navigateToPath(nested, basePath)
	sectionMap, ok := section.(map[string]any)
	if !ok {
		if section != nil {
			return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, section)
		}
		sectionMap = make(map[string]any)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// navigateToPath traverses nested maps to reach path; nil when absent.
func navigateToPath(nested map[string]any, path string) any {
	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	current := any(nested)
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[segment]; !ok {
			return nil
		}
	}
	return current
}
