// Package flowline defines the Flowline data model and the read-only Store
// contract that the rest of the module traverses. A Store is a thin
// lookup-and-enumerate surface over whatever hydrography database backs it
// (see sqlitestore for the NHDPlus adapters); this package owns only the
// shape, not the backing storage.
package flowline

// ID identifies a flowline within a Store. Medium-resolution NHDPlus keys
// flowlines by an integer comid; high-resolution NHDPlus keys them by a
// floating-point nhdplusid. Both are carried as float64 so a single Store
// interface serves both resolutions; medium-res callers pass whole numbers.
type ID = float64

// Flowline is an identified stream segment (spec §3).
//
// HackOrder and Label are derived fields: the Store never populates them,
// and the Traversal Engine writes each exactly once per watershed run.
type Flowline struct {
	ID             ID
	Reachcode      string
	StreamLevel    int
	StrahlerOrder  int
	Divergence     int
	StartFlag      bool
	HackOrder      int
	Label          string
	hackOrderKnown bool
}

// SetLabel records the traversal's derived fields. It panics if called
// twice for the same flowline: the Traversal Engine's revisit guard must
// prevent this, and a second call indicates that guard has a bug.
func (f *Flowline) SetLabel(order int, label string) {
	if f.hackOrderKnown {
		panic("flowline: SetLabel called twice for the same flowline")
	}
	f.HackOrder = order
	f.Label = label
	f.hackOrderKnown = true
}

// Labeled reports whether SetLabel has already been called.
func (f *Flowline) Labeled() bool {
	return f.hackOrderKnown
}

// Store is a read-only lookup of flowline attributes and adjacency,
// shared (never mutated) across one watershed's traversal (spec §4.1).
//
// Upstream and Downstream must return neighbors in a stable order across
// calls within one run; see each implementation's doc comment for its
// ordering contract.
type Store interface {
	// Get returns the flowline with the given id, or ok=false if absent.
	Get(id ID) (Flowline, bool)

	// Headwaters returns the ids of start-of-chain flowlines whose
	// reachcode begins with huc8.
	Headwaters(huc8 string) ([]ID, error)

	// Upstream returns the flowlines that flow into id.
	Upstream(id ID) ([]Flowline, error)

	// Downstream returns the flowlines that id flows into.
	Downstream(id ID) ([]Flowline, error)
}
