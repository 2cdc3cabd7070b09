package flowline

import "sort"

// MemStore is an in-memory Store, the reference implementation other
// stores are checked against and the fixture used by traverse/outlet
// tests. It mirrors the teacher's map-of-maps adjacency list: vertices in
// one map, directed edges in a from->[]to map guarded by nothing (MemStore
// is built once, then read-only for the lifetime of a run, same contract
// as flowline.Store itself).
type MemStore struct {
	flowlines map[ID]Flowline
	// downstreamOf[id] lists the ids that id flows into (id -> to).
	downstreamOf map[ID][]ID
	// upstreamOf[id] lists the ids that flow into id (to -> from), kept in
	// sync with downstreamOf by AddEdge so Upstream/Downstream are O(1) map
	// lookups instead of O(E) scans.
	upstreamOf map[ID][]ID
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		flowlines:    make(map[ID]Flowline),
		downstreamOf: make(map[ID][]ID),
		upstreamOf:   make(map[ID][]ID),
	}
}

// AddFlowline inserts or replaces the flowline record for f.ID.
func (m *MemStore) AddFlowline(f Flowline) {
	m.flowlines[f.ID] = f
	if _, ok := m.downstreamOf[f.ID]; !ok {
		m.downstreamOf[f.ID] = nil
	}
	if _, ok := m.upstreamOf[f.ID]; !ok {
		m.upstreamOf[f.ID] = nil
	}
}

// AddEdge records a directed from->to flow edge (from flows into to, i.e.
// to is downstream of from and from is upstream of to).
func (m *MemStore) AddEdge(from, to ID) {
	m.downstreamOf[from] = append(m.downstreamOf[from], to)
	m.upstreamOf[to] = append(m.upstreamOf[to], from)
}

// Get implements Store.
func (m *MemStore) Get(id ID) (Flowline, bool) {
	f, ok := m.flowlines[id]
	return f, ok
}

// Headwaters implements Store. It returns, in ascending id order (MemStore
// has no "medium-res descending id" ordering requirement of its own; tests
// that need that exact contract use sqlitestore instead), every flowline
// whose StartFlag is set and whose reachcode begins with huc8.
func (m *MemStore) Headwaters(huc8 string) ([]ID, error) {
	var out []ID
	for id, f := range m.flowlines {
		if f.StartFlag && hasPrefix(f.Reachcode, huc8) {
			out = append(out, id)
		}
	}
	sort.Float64s(out)
	return out, nil
}

// Upstream implements Store, returning neighbors in descending id order —
// the same stable ordering sqlitestore's medium-res adapter uses (spec
// §4.1), so tests written against MemStore exercise the real ordering
// contract.
func (m *MemStore) Upstream(id ID) ([]Flowline, error) {
	ids := append([]ID(nil), m.upstreamOf[id]...)
	sort.Sort(sort.Reverse(sort.Float64Slice(ids)))
	return m.lookupAll(ids), nil
}

// Downstream implements Store, returning neighbors in ascending id order
// (spec §4.1).
func (m *MemStore) Downstream(id ID) ([]Flowline, error) {
	ids := append([]ID(nil), m.downstreamOf[id]...)
	sort.Float64s(ids)
	return m.lookupAll(ids), nil
}

func (m *MemStore) lookupAll(ids []ID) []Flowline {
	out := make([]Flowline, 0, len(ids))
	for _, id := range ids {
		if f, ok := m.flowlines[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

func hasPrefix(reachcode, huc8 string) bool {
	if len(reachcode) < len(huc8) {
		return false
	}
	return reachcode[:len(huc8)] == huc8
}
