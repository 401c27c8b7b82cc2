package ini

import "slices"

// Key is a named, ordered list of unique string values.
type Key struct {
	name   string
	values []string
}

func newKey(name string) *Key {
	return &Key{name: name}
}

// Name returns the key name as first seen, trimmed.
func (k *Key) Name() string {
	return k.name
}

// Values returns a copy of the values in insertion order.
func (k *Key) Values() []string {
	return slices.Clone(k.values)
}

// Len returns the number of values.
func (k *Key) Len() int {
	return len(k.values)
}

// AddValue appends v unless an equal value is already present.
// It reports whether the value was added.
func (k *Key) AddValue(v string) bool {
	if slices.Contains(k.values, v) {
		return false
	}
	k.values = append(k.values, v)
	return true
}

// Value returns the value at index i.
// The second result is false when i is out of range.
func (k *Key) Value(i int) (string, bool) {
	if i < 0 || i >= len(k.values) {
		return "", false
	}
	return k.values[i], true
}

// SetValue replaces the value at index i. It is a no-op returning false when i is out
// of range or when v is already held at another index.
func (k *Key) SetValue(i int, v string) bool {
	if i < 0 || i >= len(k.values) {
		return false
	}
	if j := slices.Index(k.values, v); j >= 0 && j != i {
		return false
	}
	k.values[i] = v
	return true
}

// RemoveValue deletes the value at index i, reporting whether anything was removed.
func (k *Key) RemoveValue(i int) bool {
	if i < 0 || i >= len(k.values) {
		return false
	}
	k.values = slices.Delete(k.values, i, i+1)
	return true
}

// ClearValues removes every value, leaving the key in place.
func (k *Key) ClearValues() {
	k.values = nil
}
