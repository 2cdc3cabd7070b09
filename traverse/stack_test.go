package traverse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwi-gis/nhdlabel/digitenc"
	"github.com/lwi-gis/nhdlabel/flowline"
	"github.com/lwi-gis/nhdlabel/minter"
	"github.com/lwi-gis/nhdlabel/outlet"
	"github.com/lwi-gis/nhdlabel/traverse"
)

// runBoth executes both the recursive and explicit-stack engines against
// independent Minters over the same store and returns their results.
func runBoth(t *testing.T, store flowline.Store) (recursive, stacked *traverse.Result) {
	t.Helper()
	roots, err := outlet.Find(store, huc8, nil)
	require.NoError(t, err)

	recEng := traverse.NewEngine(store, huc8, minter.New(digitenc.Hex), nil)
	recursive, err = recEng.Run(roots)
	require.NoError(t, err)

	stackEng := traverse.NewEngine(store, huc8, minter.New(digitenc.Hex), nil)
	stacked, err = stackEng.RunStack(roots)
	require.NoError(t, err)
	return recursive, stacked
}

func assertSameLabels(t *testing.T, recursive, stacked *traverse.Result) {
	t.Helper()
	require.Equal(t, len(recursive.Labeled), len(stacked.Labeled))
	for id, f := range recursive.Labeled {
		sf, ok := stacked.Labeled[id]
		require.True(t, ok, "id %v labeled by Run but not RunStack", id)
		assert.Equal(t, f.Label, sf.Label, "id %v", id)
		assert.Equal(t, f.HackOrder, sf.HackOrder, "id %v", id)
	}
	assert.Equal(t, recursive.MaxOrder, stacked.MaxOrder)
}

func TestRunStack_MatchesRun_SingleStraightStem(t *testing.T) {
	m := flowline.NewMemStore()
	m.AddFlowline(flowline.Flowline{ID: 1, Reachcode: huc8 + "0001", StrahlerOrder: 1, StartFlag: true})
	m.AddFlowline(flowline.Flowline{ID: 2, Reachcode: huc8 + "0002", StrahlerOrder: 1})
	m.AddFlowline(flowline.Flowline{ID: 3, Reachcode: huc8 + "0003", StrahlerOrder: 1, StreamLevel: 1})
	m.AddEdge(1, 2)
	m.AddEdge(2, 3)

	recursive, stacked := runBoth(t, m)
	assertSameLabels(t, recursive, stacked)
}

func TestRunStack_MatchesRun_SimpleTributary(t *testing.T) {
	m := flowline.NewMemStore()
	m.AddFlowline(flowline.Flowline{ID: 1, Reachcode: huc8 + "0001", StrahlerOrder: 2, StartFlag: true})
	m.AddFlowline(flowline.Flowline{ID: 2, Reachcode: huc8 + "0002", StrahlerOrder: 2})
	m.AddFlowline(flowline.Flowline{ID: 3, Reachcode: huc8 + "0003", StrahlerOrder: 2, StreamLevel: 1})
	m.AddFlowline(flowline.Flowline{ID: 4, Reachcode: huc8 + "0004", StrahlerOrder: 1, StartFlag: true})
	m.AddEdge(1, 2)
	m.AddEdge(2, 3)
	m.AddEdge(4, 2)

	recursive, stacked := runBoth(t, m)
	assertSameLabels(t, recursive, stacked)
}

// TestRunStack_SharedCounterOrderingMatchesRun is the scenario the review
// traced concretely: root Z has two upstream neighbors, a same-order
// continuation Y and a direct first-order tributary W sharing Y's
// mainstem's first-order counter. Y's own upstream holds a first-order
// tributary V that mints against that same counter before W's turn comes
// up. Run decides W only after Y's entire subtree (including V) has
// finished, so V must mint ahead of W. An eager, non-interleaved explicit
// stack would decide W before descending into Y's subtree and swap the two
// labels.
func TestRunStack_SharedCounterOrderingMatchesRun(t *testing.T) {
	m := flowline.NewMemStore()
	m.AddFlowline(flowline.Flowline{ID: 5, Reachcode: huc8 + "0005", StrahlerOrder: 2, StreamLevel: 1, StartFlag: true}) // Z (root)
	m.AddFlowline(flowline.Flowline{ID: 3, Reachcode: huc8 + "0003", StrahlerOrder: 2})                                 // Y (continuation, higher id so it sorts first)
	m.AddFlowline(flowline.Flowline{ID: 2, Reachcode: huc8 + "0002", StrahlerOrder: 1, StartFlag: true})                // W (direct tributary off Z)
	m.AddFlowline(flowline.Flowline{ID: 4, Reachcode: huc8 + "0004", StrahlerOrder: 1, StartFlag: true})                // V (tributary off Y)
	m.AddEdge(3, 5) // Y -> Z
	m.AddEdge(2, 5) // W -> Z
	m.AddEdge(4, 3) // V -> Y

	recursive, stacked := runBoth(t, m)
	assertSameLabels(t, recursive, stacked)

	// Pin down the exact values so a regression shows up as a wrong label,
	// not just a Run/RunStack mismatch.
	assert.Equal(t, "01", recursive.Labeled[5].Label) // Z
	assert.Equal(t, "01", recursive.Labeled[3].Label) // Y, continuation
	assert.Equal(t, "0101", recursive.Labeled[4].Label) // V minted first
	assert.Equal(t, "0102", recursive.Labeled[2].Label) // W minted second
}

func TestRunStack_CounterOverflowIsFatal(t *testing.T) {
	m := flowline.NewMemStore()
	m.AddFlowline(flowline.Flowline{ID: 0, Reachcode: huc8 + "0000", StrahlerOrder: 2, StreamLevel: 1, StartFlag: true})
	for i := 1; i <= 256; i++ {
		id := flowline.ID(i)
		m.AddFlowline(flowline.Flowline{ID: id, Reachcode: huc8 + "branch", StrahlerOrder: 1, StartFlag: true})
		m.AddEdge(id, 0)
	}

	roots, err := outlet.Find(m, huc8, nil)
	require.NoError(t, err)

	mt := minter.New(digitenc.Hex)
	eng := traverse.NewEngine(m, huc8, mt, nil)
	_, err = eng.RunStack(roots)
	assert.ErrorIs(t, err, minter.ErrCounterOverflow)
}
