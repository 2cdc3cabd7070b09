// Package minter mints hierarchical raw-label suffixes during traversal
// and owns the per-prefix counter state (spec §4.3).
//
// A Minter is constructed fresh per watershed and discarded at the end of
// that watershed's run (spec §3 "Lifecycles", §9 "Default-mutable shared
// accumulators" — counters are an explicit field of one Minter value, never
// a shared mutable default threaded implicitly across runs).
package minter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lwi-gis/nhdlabel/digitenc"
)

// ErrCounterOverflow is returned when minting would push a prefix's
// counter past its configured ceiling (spec §3 invariant 7, §7).
var ErrCounterOverflow = errors.New("minter: counter exceeds ceiling")

// mainstemKey is the Minter's bucket for the main-stem counter (spec §4.3).
const mainstemKey = "0"

// hierarchySep matches the raw-label separator used throughout the module.
const hierarchySep = "-"

// Minter mints raw-label suffixes at the mainstem, first-order, and nth-
// order positions, enforcing the ceiling for the given digit base.
type Minter struct {
	base    digitenc.Base
	ceiling int
	counts  map[string]int
}

// New returns a Minter configured for base b. Hex ceilings are 255 for
// every counter kind; Crockford base-32 ceilings are 1023 (spec §4.3, §6).
func New(b digitenc.Base) *Minter {
	ceiling := 255
	if b == digitenc.Crockford {
		ceiling = 1023
	}
	return &Minter{base: b, ceiling: ceiling, counts: make(map[string]int)}
}

// Counts returns a snapshot of the current counter map, keyed by prefix,
// for the Driver's per-order histogram (spec §6 Output log).
func (m *Minter) Counts() map[string]int {
	out := make(map[string]int, len(m.counts))
	for k, v := range m.counts {
		out[k] = v
	}
	return out
}

func (m *Minter) increment(key string) (int, error) {
	if m.counts[key] >= m.ceiling {
		return 0, fmt.Errorf("%w: prefix %q at ceiling %d", ErrCounterOverflow, key, m.ceiling)
	}
	m.counts[key]++
	return m.counts[key], nil
}

// NextMainstem mints the next main-stem label. The raw label is always
// rendered in hex regardless of the active base (spec §9 Open Question:
// "mainstem-label encoding at raw stage", kept as the source does it).
func (m *Minter) NextMainstem() (string, error) {
	n, err := m.increment(mainstemKey)
	if err != nil {
		return "", err
	}
	return digitenc.Encode(n, digitenc.Hex), nil
}

// NextFirstOrder mints the next first-order label under mainstemLabel,
// concatenating (not dash-joining) the mainstem prefix with a new
// width-2 hex counter, e.g. NextFirstOrder("01") -> "0102".
func (m *Minter) NextFirstOrder(mainstemLabel string) (string, error) {
	n, err := m.increment(mainstemLabel)
	if err != nil {
		return "", err
	}
	return mainstemLabel + digitenc.Encode(n, digitenc.Hex), nil
}

// NextNthOrder mints the next label at currentLabel's own depth: the stub
// is every hierarchy segment of currentLabel except the last, joined by
// '-', plus a trailing '-'; the counter at stub+"0" is incremented and the
// new label is stub + the counter rendered in decimal (spec §4.3).
func (m *Minter) NextNthOrder(currentLabel string) (string, error) {
	stub := nthOrderStub(currentLabel)
	n, err := m.increment(stub + "0")
	if err != nil {
		return "", err
	}
	return stub + strconv.Itoa(n), nil
}

func nthOrderStub(currentLabel string) string {
	parts := strings.Split(currentLabel, hierarchySep)
	return strings.Join(parts[:len(parts)-1], hierarchySep) + hierarchySep
}

// NextForCurrentLevel dispatches by order (spec §4.3):
// 0 -> NextMainstem; 1 -> NextFirstOrder on currentLabel's first 2 chars;
// >=2 -> NextNthOrder(currentLabel).
func (m *Minter) NextForCurrentLevel(order int, currentLabel string) (string, error) {
	return m.dispatch(order, currentLabel)
}

// NextForPreviousLevel dispatches by newOrder using the same table as
// NextForCurrentLevel (spec §4.3).
func (m *Minter) NextForPreviousLevel(newOrder int, currentLabel string) (string, error) {
	return m.dispatch(newOrder, currentLabel)
}

func (m *Minter) dispatch(order int, currentLabel string) (string, error) {
	switch {
	case order == 0:
		return m.NextMainstem()
	case order == 1:
		return m.NextFirstOrder(currentLabel[:2])
	default:
		return m.NextNthOrder(currentLabel)
	}
}

// NextForNextLevel mints a label one hierarchy level deeper than
// currentLabel (spec §4.3). newOrder must be >= 1; newOrder == 0 is
// undefined and is a caller bug.
func (m *Minter) NextForNextLevel(newOrder int, currentLabel string) (string, error) {
	switch {
	case newOrder == 1:
		return m.NextFirstOrder(currentLabel)
	case newOrder > 1:
		n, err := m.increment(currentLabel + hierarchySep + "0")
		if err != nil {
			return "", err
		}
		return currentLabel + hierarchySep + strconv.Itoa(n), nil
	default:
		panic("minter: NextForNextLevel called with newOrder == 0")
	}
}
