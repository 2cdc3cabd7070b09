// Package outlet finds a watershed's root (outlet) flowlines by descending
// downstream from each headwater (spec §4.2).
package outlet

import (
	"fmt"
	"log/slog"

	"github.com/lwi-gis/nhdlabel/flowline"
)

// finder walks downstream from headwaters, collecting roots and sharing a
// visited set across headwaters within one HUC8 so a shared downstream
// chain is walked once (spec §4.2), in the same walker-holds-state-and-
// recurses shape as the teacher's graph/algorithms dfsWalker.
type finder struct {
	store   flowline.Store
	huc8    string
	log     *slog.Logger
	visited map[flowline.ID]bool
	roots   map[flowline.ID]flowline.Flowline
}

// Find returns the watershed's root (outlet) flowlines for huc8: the
// flowlines through which the watershed drains, reached by descending
// downstream from every headwater.
func Find(store flowline.Store, huc8 string, log *slog.Logger) ([]flowline.Flowline, error) {
	if log == nil {
		log = slog.Default()
	}
	headwaterIDs, err := store.Headwaters(huc8)
	if err != nil {
		return nil, fmt.Errorf("outlet: Headwaters(%q): %w", huc8, err)
	}

	f := &finder{
		store:   store,
		huc8:    huc8,
		log:     log,
		visited: make(map[flowline.ID]bool),
		roots:   make(map[flowline.ID]flowline.Flowline),
	}

	for _, id := range headwaterIDs {
		head, ok := store.Get(id)
		if !ok {
			// Not-found: the edge table may reference a deleted flowline
			// (spec §7); skip silently.
			continue
		}
		if err := f.descend(head); err != nil {
			return nil, err
		}
	}

	out := make([]flowline.Flowline, 0, len(f.roots))
	for _, r := range f.roots {
		out = append(out, r)
	}
	return out, nil
}

// descend performs the depth-first descent of spec §4.2 step 2.
func (f *finder) descend(curr flowline.Flowline) error {
	if f.visited[curr.ID] {
		return nil
	}
	f.visited[curr.ID] = true

	if curr.StreamLevel == 1 {
		// Coastal terminus: curr is itself a root, don't descend further.
		f.roots[curr.ID] = curr
		return nil
	}

	downstream, err := f.store.Downstream(curr.ID)
	if err != nil {
		return fmt.Errorf("outlet: Downstream(%v): %w", curr.ID, err)
	}

	exitedWatershed := false
	for _, d := range downstream {
		if !hasPrefix(d.Reachcode, f.huc8) {
			exitedWatershed = true
			continue
		}
		if err := f.descend(d); err != nil {
			return err
		}
	}
	if exitedWatershed {
		f.roots[curr.ID] = curr
	}

	return nil
}

func hasPrefix(reachcode, huc8 string) bool {
	if len(reachcode) < len(huc8) {
		return false
	}
	return reachcode[:len(huc8)] == huc8
}
