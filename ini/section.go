package ini

import "strings"

// Section is a named group of keys.
type Section struct {
	name string
	keys namedMap[*Key]
}

func newSection(name string) *Section {
	return &Section{name: name, keys: newNamedMap[*Key]()}
}

// Name returns the section name as first seen, trimmed.
func (s *Section) Name() string {
	return s.name
}

// Keys returns the section's keys in insertion order.
func (s *Section) Keys() []*Key {
	return s.keys.values()
}

// Len returns the number of keys.
func (s *Section) Len() int {
	return s.keys.len()
}

// AddKey returns the key with the given name, creating it if needed.
// It returns nil when the trimmed name is empty.
func (s *Section) AddKey(name string) *Key {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return s.keys.put(name, newKey(name))
}

// Key looks up a key by name, returning nil when absent.
func (s *Section) Key(name string) *Key {
	k, _ := s.keys.get(name)
	return k
}

// RemoveKey deletes the named key, reporting whether it existed.
func (s *Section) RemoveKey(name string) bool {
	return s.keys.remove(name)
}

// RemoveAllKeys empties the section.
func (s *Section) RemoveAllKeys() {
	s.keys.clear()
}

// RemoveValue deletes the value at index i of the named key.
// It returns false when the key is absent or the index is out of range.
func (s *Section) RemoveValue(key string, i int) bool {
	k := s.Key(key)
	if k == nil {
		return false
	}
	return k.RemoveValue(i)
}

// ClearValues removes all values of the named key, if present.
func (s *Section) ClearValues(key string) {
	if k := s.Key(key); k != nil {
		k.ClearValues()
	}
}

// Values is shorthand for the values of the named key; nil when the key is absent.
func (s *Section) Values(key string) []string {
	if k := s.Key(key); k != nil {
		return k.Values()
	}
	return nil
}
