package ini

import "strings"

// name is the lookup form of a section or key name.
type name string

func normalize(s string) name {
	return name(strings.ToLower(strings.TrimSpace(s)))
}

// namedMap keeps values under a normalized name and remembers insertion order.
type namedMap[V any] struct {
	order []name
	items map[name]V
}

func newNamedMap[V any]() namedMap[V] {
	return namedMap[V]{items: make(map[name]V)}
}

func (m *namedMap[V]) get(s string) (V, bool) {
	v, ok := m.items[normalize(s)]
	return v, ok
}

// put stores v unless the name is already present. It returns the stored value.
func (m *namedMap[V]) put(s string, v V) V {
	n := normalize(s)
	if existing, ok := m.items[n]; ok {
		return existing
	}
	m.items[n] = v
	m.order = append(m.order, n)
	return v
}

func (m *namedMap[V]) remove(s string) bool {
	n := normalize(s)
	if _, ok := m.items[n]; !ok {
		return false
	}
	delete(m.items, n)
	for i, o := range m.order {
		if o == n {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *namedMap[V]) clear() {
	m.order = nil
	m.items = make(map[name]V)
}

func (m *namedMap[V]) len() int {
	return len(m.order)
}

// values returns the stored values in insertion order.
func (m *namedMap[V]) values() []V {
	out := make([]V, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.items[n])
	}
	return out
}
