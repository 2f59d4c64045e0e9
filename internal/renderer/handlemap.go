package renderer

// HandleMap exposes a set of entities both as an ordered list and as a
// handle-indexed lookup. Templates address it either way: iterate it in
// a for loop, or index it by handle ({{ collections['summer-sale'] }}).
// An unknown handle yields nil rather than an error.
type HandleMap struct {
	order    []string
	byHandle map[string]any
}

// NewHandleMap creates an empty handle map.
func NewHandleMap() *HandleMap {
	return &HandleMap{byHandle: make(map[string]any)}
}

// Add registers an entity under one or more handles. The first handle
// determines the entity's position in iteration order; aliases resolve
// to the same value without appearing twice in the order.
func (m *HandleMap) Add(value any, handles ...string) {
	first := true
	for _, h := range handles {
		if h == "" {
			continue
		}
		if _, exists := m.byHandle[h]; !exists && first {
			m.order = append(m.order, h)
		}
		m.byHandle[h] = value
		first = false
	}
}

// Get returns the entity for the handle, or nil when absent.
func (m *HandleMap) Get(handle string) any {
	return m.byHandle[handle]
}

// Has reports whether the handle is known.
func (m *HandleMap) Has(handle string) bool {
	_, ok := m.byHandle[handle]
	return ok
}

// Keys returns the handles in insertion order, aliases excluded.
func (m *HandleMap) Keys() []string {
	return m.order
}

// Len returns the number of distinct entities.
func (m *HandleMap) Len() int {
	return len(m.order)
}

// LiquidGet makes the map indexable from templates.
func (m *HandleMap) LiquidGet(key string) (any, bool) {
	if key == "size" {
		return int64(m.Len()), true
	}
	v, ok := m.byHandle[key]
	return v, ok
}

// LiquidKeys makes the map iterable from templates.
func (m *HandleMap) LiquidKeys() []string {
	return m.order
}
