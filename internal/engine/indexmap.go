package engine

// IndexMap links a 1-based display index to the detail of a result.
// Entries are appended by Parse only; everything else reads.
type IndexMap struct {
	entries []Detail
}

// add appends d and returns its index.
func (m *IndexMap) add(d Detail) int {
	m.entries = append(m.entries, d)
	return len(m.entries)
}

// Lookup returns the detail for index i.
func (m *IndexMap) Lookup(i int) (Detail, bool) {
	if m == nil || i < 1 || i > len(m.entries) {
		return Detail{}, false
	}
	return m.entries[i-1], true
}

// Len is the number of indexed results.
func (m *IndexMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// NewIndexMap returns a map holding details at indices 1..len(details).
func NewIndexMap(details ...Detail) *IndexMap {
	return &IndexMap{entries: append([]Detail(nil), details...)}
}
