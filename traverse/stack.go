package traverse

import (
	"fmt"

	"github.com/lwi-gis/nhdlabel/flowline"
)

// work is one pending unit for RunStack's explicit stack. A visit entry
// records curr and begins iterating its (already prefix-filtered) upstream
// neighbors; a resume entry picks that iteration back up at neighbors[idx:]
// once the neighbor pushed ahead of it (and that neighbor's whole subtree)
// has finished. Exactly one of the two is populated.
type work struct {
	visit  *visitWork
	resume *resumeWork
}

type visitWork struct {
	f     flowline.Flowline
	order int
	label string
}

type resumeWork struct {
	curr      flowline.Flowline
	order     int
	label     string
	neighbors []flowline.Flowline
	idx       int
}

// RunStack is the explicit-stack equivalent of Run (spec §9 "Recursive
// descent vs. explicit stack"): it reproduces the exact same dispatch and
// minting order as the recursive traversal. This requires deciding
// (and, where the transition table calls for it, minting against) a
// neighbor only when that neighbor's turn comes up — never eagerly for a
// whole sibling group — because the recursive form decides sibling i+1
// only after sibling i's entire subtree has finished, and that subtree can
// itself mint against a counter key siblings i+1 shares (e.g. two
// tributaries off the same mainstem first-order counter, one reached
// directly, the other via a same-order continuation node). Deciding a
// sibling group up front would let a later direct sibling mint ahead of an
// earlier sibling's nested descendant, producing swapped labels relative
// to Run for the same input. Use RunStack when a watershed's reach count
// makes recursion depth a concern.
func (e *Engine) RunStack(roots []flowline.Flowline) (*Result, error) {
	sorted := append([]flowline.Flowline(nil), roots...)
	SortRoots(sorted)

	for _, root := range sorted {
		label, err := e.minter.NextMainstem()
		if err != nil {
			return nil, fmt.Errorf("traverse: minting root label for huc8 %q: %w", e.huc8, err)
		}
		if err := e.runOneRootStack(root, label); err != nil {
			return nil, err
		}
	}
	return e.res, nil
}

func (e *Engine) runOneRootStack(root flowline.Flowline, rootLabel string) error {
	stack := []work{{visit: &visitWork{f: root, order: 0, label: rootLabel}}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.visit != nil {
			v := top.visit
			if e.visited[v.f.ID] {
				continue // revisit guard, matches visitRecursive
			}
			e.record(v.f, v.order, v.label)

			upstream, err := e.store.Upstream(v.f.ID)
			if err != nil {
				return fmt.Errorf("traverse: Upstream(%v): %w", v.f.ID, err)
			}
			var neighbors []flowline.Flowline
			for _, u := range upstream {
				if hasPrefix(u.Reachcode, e.huc8) {
					neighbors = append(neighbors, u)
				}
			}
			stack = append(stack, work{resume: &resumeWork{
				curr: v.f, order: v.order, label: v.label, neighbors: neighbors, idx: 0,
			}})
			continue
		}

		r := top.resume
		if r.idx >= len(r.neighbors) {
			continue // this node's neighbor iteration is exhausted
		}
		u := r.neighbors[r.idx]

		// Push the continuation for the remaining siblings first, so it is
		// only reached again once u's descend branch (pushed after it,
		// landing on top) and everything u leads to have been fully
		// processed — deciding sibling idx+1 no earlier than Run would.
		stack = append(stack, work{resume: &resumeWork{
			curr: r.curr, order: r.order, label: r.label, neighbors: r.neighbors, idx: r.idx + 1,
		}})

		descend, newOrder, newLabel, err := e.step(r.curr, r.order, r.label, u)
		if err != nil {
			return err
		}
		if descend {
			stack = append(stack, work{visit: &visitWork{f: u, order: newOrder, label: newLabel}})
		}
	}
	return nil
}
