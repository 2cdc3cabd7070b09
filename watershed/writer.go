package watershed

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lwi-gis/nhdlabel/compact"
	"github.com/lwi-gis/nhdlabel/digitenc"
	"github.com/lwi-gis/nhdlabel/flowline"
	"github.com/lwi-gis/nhdlabel/minter"
	"github.com/lwi-gis/nhdlabel/traverse"
)

// MaxFQLabelLen is the fully-qualified label's soft width limit (spec §6);
// exceeding it is a logged warning, not a fatal error (spec §4.5 step 5).
const MaxFQLabelLen = 16

// Writer renders one watershed's Traversal Engine result to its output CSV
// and statistics log (spec §6).
type Writer struct {
	base digitenc.Base
	log  *slog.Logger
}

// NewWriter builds a Writer. log may be nil, in which case slog.Default()
// is used.
func NewWriter(base digitenc.Base, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{base: base, log: log}
}

// row is one flowline ready for CSV emission, carrying its raw label so the
// caller can sort on it before compacting (spec §4.6).
type row struct {
	rawLabel string
	fq       string
	f        *flowline.Flowline
}

// WriteCSV writes path as "stream_label,ws_code,huc8,comid,reachcode,divergence",
// one row per labeled flowline in ascending raw-label order (spec §4.6).
func (w *Writer) WriteCSV(path string, ws Watershed, res *traverse.Result) error {
	rows, err := w.buildRows(ws, res)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("watershed: creating %q: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"stream_label", "ws_code", "huc8", "comid", "reachcode", "divergence"}); err != nil {
		return fmt.Errorf("watershed: writing header of %q: %w", path, err)
	}
	for _, r := range rows {
		rec := []string{
			r.fq,
			ws.Code,
			ws.HUC8,
			strconv.FormatFloat(r.f.ID, 'f', -1, 64),
			r.f.Reachcode,
			strconv.Itoa(r.f.Divergence),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("watershed: writing record to %q: %w", path, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *Writer) buildRows(ws Watershed, res *traverse.Result) ([]row, error) {
	rows := make([]row, 0, len(res.Labeled))
	for _, f := range res.Labeled {
		compacted, err := compact.Compact(f.Label, w.base)
		if err != nil {
			return nil, fmt.Errorf("watershed: huc8 %q comid %v: %w", ws.HUC8, f.ID, err)
		}
		fq := ws.Code + compacted
		if len(fq) > MaxFQLabelLen {
			w.log.Warn("fully-qualified label exceeds max length",
				"huc8", ws.HUC8, "ws_code", ws.Code, "comid", f.ID, "fq_label", fq, "max", MaxFQLabelLen)
		}
		rows = append(rows, row{rawLabel: f.Label, fq: fq, f: f})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].rawLabel < rows[j].rawLabel })
	return rows, nil
}

// WriteLog writes path as a plain-text statistics summary: root count,
// maximum hierarchy depth, max compact-label length produced, and a
// per-order reach-count histogram derived from the Minter's counter map
// (spec §6 Output log).
func (w *Writer) WriteLog(path string, ws Watershed, res *traverse.Result, rootCount int, m *minter.Minter) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("watershed: creating %q: %w", path, err)
	}
	defer f.Close()

	maxCompactLen := 0
	for _, fl := range res.Labeled {
		compacted, err := compact.Compact(fl.Label, w.base)
		if err != nil {
			return fmt.Errorf("watershed: huc8 %q comid %v: %w", ws.HUC8, fl.ID, err)
		}
		if len(compacted) > maxCompactLen {
			maxCompactLen = len(compacted)
		}
	}

	fmt.Fprintf(f, "Statistics for Watershed %s, HUC8 %q\n", ws.Code, ws.HUC8)
	fmt.Fprintf(f, "\tNumber of roots: %d\n", rootCount)
	fmt.Fprintf(f, "\tMax depth was: %d\n", res.MaxOrder)
	fmt.Fprintf(f, "\tMax compact label length was %d\n", maxCompactLen)

	hist := Histogram(m, res.MaxOrder)
	for order := 0; order <= res.MaxOrder; order++ {
		fmt.Fprintf(f, "\tNum streams of order %d: %d\n", order, hist[order])
	}
	return nil
}

// Histogram derives the per-order reach count from the Minter's counter
// map: the mainstem key ("0") contributes to order 0, and every other key
// contributes to the order equal to its '-'-separated segment count (spec
// §6, restored from the original's num_reaches_per_order accumulation).
func Histogram(m *minter.Minter, maxOrder int) map[int]int {
	hist := make(map[int]int, maxOrder+1)
	for key, count := range m.Counts() {
		if key == "0" {
			hist[0] += count
			continue
		}
		order := strings.Count(key, "-") + 1
		hist[order] += count
	}
	return hist
}
