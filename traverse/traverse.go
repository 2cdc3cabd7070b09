// Package traverse implements the upstream depth-first traversal and
// label-minting state machine that is the hard engineering of this module
// (spec §4.4). It walks upstream from each watershed root, deciding at
// every step whether the branch continues, opens a new tributary, or
// unwinds to a shallower hierarchy level, minting labels via minter.Minter
// as it goes.
package traverse

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/lwi-gis/nhdlabel/flowline"
	"github.com/lwi-gis/nhdlabel/minter"
)

// Result is the outcome of one watershed's traversal: every reached
// flowline, labeled, bucketed by hack_order (spec §4.6 "stream_orders"),
// plus the deepest hack_order actually reached.
type Result struct {
	// Labeled maps flowline id to its labeled copy.
	Labeled map[flowline.ID]*flowline.Flowline
	// ByOrder buckets ids by hack_order, in the order they were recorded.
	ByOrder map[int][]flowline.ID
	// MaxOrder is the deepest hack_order written during this run.
	MaxOrder int
}

// Engine runs one watershed's traversal. It is constructed fresh per
// watershed (spec §3 "Lifecycles", §5 "Shared state": visited set and
// Minter are owned exclusively by one task) and discarded afterward.
type Engine struct {
	store   flowline.Store
	huc8    string
	minter  *minter.Minter
	log     *slog.Logger
	visited map[flowline.ID]bool
	res     *Result
}

// NewEngine constructs a traversal Engine for one watershed. log may be
// nil, in which case slog.Default() is used.
func NewEngine(store flowline.Store, huc8 string, m *minter.Minter, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:   store,
		huc8:    huc8,
		minter:  m,
		log:     log,
		visited: make(map[flowline.ID]bool),
		res: &Result{
			Labeled: make(map[flowline.ID]*flowline.Flowline),
			ByOrder: make(map[int][]flowline.ID),
		},
	}
}

// SortRoots orders roots the way spec §4.4 requires for deterministic
// output: divergence ascending, then stream_level ascending, then
// strahler_order descending, then reachcode descending.
func SortRoots(roots []flowline.Flowline) {
	sort.SliceStable(roots, func(i, j int) bool {
		a, b := roots[i], roots[j]
		if a.Divergence != b.Divergence {
			return a.Divergence < b.Divergence
		}
		if a.StreamLevel != b.StreamLevel {
			return a.StreamLevel < b.StreamLevel
		}
		if a.StrahlerOrder != b.StrahlerOrder {
			return a.StrahlerOrder > b.StrahlerOrder
		}
		return a.Reachcode > b.Reachcode
	})
}

// Run sorts roots (spec §4.4 "Root ordering") and traverses upstream from
// each, minting that root's main-stem label first (spec §4.4 "Root
// initialization").
func (e *Engine) Run(roots []flowline.Flowline) (*Result, error) {
	sorted := append([]flowline.Flowline(nil), roots...)
	SortRoots(sorted)

	for _, root := range sorted {
		label, err := e.minter.NextMainstem()
		if err != nil {
			return nil, fmt.Errorf("traverse: minting root label for huc8 %q: %w", e.huc8, err)
		}
		if err := e.visitRecursive(root, 0, label); err != nil {
			return nil, err
		}
	}
	return e.res, nil
}

// visitRecursive implements spec §4.4 steps 1-4 as straightforward
// recursion, in the teacher dfsWalker's style (walk holds shared state,
// traverse/visit method recurses into unvisited neighbors).
func (e *Engine) visitRecursive(curr flowline.Flowline, order int, label string) error {
	if e.visited[curr.ID] {
		return nil // revisit guard (spec invariant 1), silent no-op
	}
	e.record(curr, order, label)

	upstream, err := e.store.Upstream(curr.ID)
	if err != nil {
		return fmt.Errorf("traverse: Upstream(%v): %w", curr.ID, err)
	}

	for _, u := range upstream {
		if !hasPrefix(u.Reachcode, e.huc8) {
			continue // out-of-watershed: silent skip (spec §7)
		}
		descend, newOrder, newLabel, err := e.step(curr, order, label, u)
		if err != nil {
			return err
		}
		if !descend {
			continue
		}
		if err := e.visitRecursive(u, newOrder, newLabel); err != nil {
			return err
		}
	}
	return nil
}

// record writes the derived fields for curr and files it under order's
// bucket (spec §4.4 steps 2-3).
func (e *Engine) record(curr flowline.Flowline, order int, label string) {
	e.visited[curr.ID] = true
	if order > e.res.MaxOrder {
		e.res.MaxOrder = order
	}
	labeled := curr
	labeled.SetLabel(order, label)
	e.res.Labeled[curr.ID] = &labeled
	e.res.ByOrder[order] = append(e.res.ByOrder[order], curr.ID)
}

// step decides, for one upstream candidate u of curr, whether to descend
// into it and with what (order, label) — the transition table of spec
// §4.4. It mints a new label exactly when the rules call for one; minting
// happens even if u turns out to already be visited (matching the
// source's behavior so counter state, and therefore output, stays
// deterministic across runs — spec invariant 6, Property 4).
func (e *Engine) step(curr flowline.Flowline, order int, label string, u flowline.Flowline) (descend bool, newOrder int, newLabel string, err error) {
	switch {
	case u.StrahlerOrder == curr.StrahlerOrder:
		return e.stepContinuation(curr, order, label, u)
	case u.StrahlerOrder > curr.StrahlerOrder:
		return e.stepShallower(order, label, u)
	default:
		return e.stepDeeper(order, label, u)
	}
}

// stepContinuation handles Case A (spec §4.4): u is the same Strahler
// order as curr.
func (e *Engine) stepContinuation(curr flowline.Flowline, order int, label string, u flowline.Flowline) (bool, int, string, error) {
	if curr.Divergence > 1 {
		// Case A1: curr is a minor divergence flowpath.
		if u.Divergence != curr.Divergence {
			return false, 0, "", nil // prevents a spurious hierarchy level
		}
		if u.StreamLevel < curr.StreamLevel {
			return false, 0, "", nil // u is closer to the mainstem; let it be reached from there
		}
		return true, order, label, nil
	}

	// Case A2: curr is not a minor divergence flowpath.
	if u.Divergence > 1 {
		newLabel, err := e.minter.NextForCurrentLevel(order, label)
		if err != nil {
			return false, 0, "", fmt.Errorf("traverse: huc8 %q flowline %v: %w", e.huc8, curr.ID, err)
		}
		return true, order, newLabel, nil
	}
	return true, order, label, nil
}

// stepShallower handles Case B (spec §4.4): u has a higher Strahler order
// than curr, which occurs under divergent flow.
func (e *Engine) stepShallower(order int, label string, u flowline.Flowline) (bool, int, string, error) {
	if order == 0 {
		return true, 0, label, nil
	}
	newOrder := order - 1
	newLabel, err := e.minter.NextForPreviousLevel(newOrder, label)
	if err != nil {
		return false, 0, "", fmt.Errorf("traverse: huc8 %q flowline %v: %w", e.huc8, u.ID, err)
	}
	return true, newOrder, newLabel, nil
}

// stepDeeper handles Case C (spec §4.4): u is a tributary (lower Strahler
// order than curr).
func (e *Engine) stepDeeper(order int, label string, u flowline.Flowline) (bool, int, string, error) {
	newOrder := order + 1
	newLabel, err := e.minter.NextForNextLevel(newOrder, label)
	if err != nil {
		return false, 0, "", fmt.Errorf("traverse: huc8 %q flowline %v: %w", e.huc8, u.ID, err)
	}
	return true, newOrder, newLabel, nil
}

func hasPrefix(reachcode, huc8 string) bool {
	if len(reachcode) < len(huc8) {
		return false
	}
	return reachcode[:len(huc8)] == huc8
}
