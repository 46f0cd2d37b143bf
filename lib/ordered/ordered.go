// Package ordered provides a map that remembers the order keys were first
// inserted in. Re-inserting a key replaces its value but keeps its position.
package ordered

type Map[K comparable, V any] struct {
	keys  []K
	index map[K]int
	vals  []V
}

func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{index: map[K]int{}}
}

// Put sets key to value, returns true if the key was not present before.
func (m *Map[K, V]) Put(key K, value V) bool {
	if m.index == nil {
		m.index = map[K]int{}
	}
	if i, ok := m.index[key]; ok {
		m.vals[i] = value
		return false
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, value)
	return true
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if m == nil {
		return zero, false
	}
	i, ok := m.index[key]
	if !ok {
		return zero, false
	}
	return m.vals[i], true
}

func (m *Map[K, V]) Has(key K) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns a copy of the values in key insertion order.
func (m *Map[K, V]) Values() []V {
	if m == nil {
		return nil
	}
	out := make([]V, len(m.vals))
	copy(out, m.vals)
	return out
}

// Each calls fn for every entry in insertion order.
func (m *Map[K, V]) Each(fn func(key K, value V)) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		fn(k, m.vals[i])
	}
}
