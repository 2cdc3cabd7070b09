// Command nhdlabel assigns hierarchical stream-reach labels to NHDPlus
// flowlines, one output CSV and log per HUC8 watershed (spec §4.6, §6).
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lwi-gis/nhdlabel/digitenc"
	"github.com/lwi-gis/nhdlabel/flowline"
	"github.com/lwi-gis/nhdlabel/minter"
	"github.com/lwi-gis/nhdlabel/outlet"
	"github.com/lwi-gis/nhdlabel/sqlitestore"
	"github.com/lwi-gis/nhdlabel/traverse"
	"github.com/lwi-gis/nhdlabel/watershed"
)

// outputDir is the directory output CSVs and logs are written to, matching
// the source's OUTPUT_PREFIX.
const outputDir = "output"

// largeWatershedHeadwaterThreshold switches a watershed from recursive to
// explicit-stack traversal once its headwater count suggests a reach count
// large enough to risk the goroutine stack limit (spec §5 "Resource
// policy"). Headwater count is a cheap upfront proxy for network size —
// the true reach count isn't known without traversing.
const largeWatershedHeadwaterThreshold = 500

func main() {
	app := &cli.App{
		Name:  "nhdlabel",
		Usage: "Assign hierarchical stream-reach labels to NHDPlus flowlines",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "flowline", Aliases: []string{"f"}, Required: true,
				Usage: "Path to SQLite file containing NHDPlus flowline geometries"},
			&cli.StringFlag{Name: "plusflow", Aliases: []string{"p"},
				Usage: "Path to SQLite file containing the NHDPlus PlusFlow table (ignored with --nhdhr)"},
			&cli.StringFlag{Name: "watersheds", Aliases: []string{"w"}, Value: "input/LWI_watersheds.csv",
				Usage: "Path to CSV file listing the HUC8 watersheds to label"},
			&cli.IntFlag{Name: "num_threads", Aliases: []string{"n"}, Value: runtime.NumCPU(),
				Usage: "Number of watersheds to process concurrently"},
			&cli.BoolFlag{Name: "nhdhr", Usage: "Use the NHDPlus High Resolution schema"},
			&cli.BoolFlag{Name: "base32", Value: true,
				Usage: "Encode stream reach IDs as Crockford base32 instead of hexadecimal"},
			&cli.BoolFlag{Name: "hexadecimal",
				Usage: "Encode stream reach IDs as hexadecimal instead of Crockford base32"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("nhdlabel failed", "error", err)
		os.Exit(1)
	}
}

func run(cCtx *cli.Context) error {
	base := digitenc.Crockford
	if cCtx.Bool("hexadecimal") {
		base = digitenc.Hex
	} else if !cCtx.Bool("base32") {
		base = digitenc.Hex
	}

	watersheds, err := watershed.LoadWatersheds(cCtx.String("watersheds"))
	if err != nil {
		return fmt.Errorf("nhdlabel: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("nhdlabel: creating output directory: %w", err)
	}

	store, closeStore, err := openStore(cCtx)
	if err != nil {
		return fmt.Errorf("nhdlabel: %w", err)
	}
	defer closeStore()

	numThreads := cCtx.Int("num_threads")
	if numThreads < 1 {
		numThreads = 1
	}

	// A plain Group (not WithContext): a failed watershed must not stop the
	// remaining ones from being started.
	var g errgroup.Group
	sem := semaphore.NewWeighted(int64(numThreads))

	for _, ws := range watersheds {
		ws := ws
		if err := sem.Acquire(context.Background(), 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return labelWatershed(ws, store, base)
		})
	}

	return g.Wait()
}

// openStore opens the flowline store(s) named by the CLI flags. The
// returned close func releases every database handle it opened.
func openStore(cCtx *cli.Context) (flowline.Store, func(), error) {
	flowlineDB, err := sql.Open("sqlite3", cCtx.String("flowline"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening flowline database: %w", err)
	}

	if cCtx.Bool("nhdhr") {
		return sqlitestore.NewHighRes(flowlineDB), func() { flowlineDB.Close() }, nil
	}

	plusflowPath := cCtx.String("plusflow")
	if plusflowPath == "" {
		flowlineDB.Close()
		return nil, nil, fmt.Errorf("--plusflow is required unless --nhdhr is set")
	}
	plusflowDB, err := sql.Open("sqlite3", plusflowPath)
	if err != nil {
		flowlineDB.Close()
		return nil, nil, fmt.Errorf("opening plusflow database: %w", err)
	}
	return sqlitestore.NewMediumRes(flowlineDB, plusflowDB), func() {
		flowlineDB.Close()
		plusflowDB.Close()
	}, nil
}

// labelWatershed runs the whole per-watershed pipeline — Outlet Finder,
// Traversal Engine, Label Compactor, CSV/log output — owning its own
// Minter and visited set exclusively (spec §5 "Shared state").
func labelWatershed(ws watershed.Watershed, store flowline.Store, base digitenc.Base) error {
	log := slog.Default().With("ws_code", ws.Code, "huc8", ws.HUC8)
	log.Info("labeling watershed")

	roots, err := outlet.Find(store, ws.HUC8, log)
	if err != nil {
		return fmt.Errorf("watershed %s/%s: %w", ws.Code, ws.HUC8, err)
	}

	headwaters, err := store.Headwaters(ws.HUC8)
	if err != nil {
		return fmt.Errorf("watershed %s/%s: %w", ws.Code, ws.HUC8, err)
	}

	m := minter.New(base)
	eng := traverse.NewEngine(store, ws.HUC8, m, log)

	var res *traverse.Result
	if len(headwaters) > largeWatershedHeadwaterThreshold {
		log.Info("large watershed, using explicit-stack traversal", "headwaters", len(headwaters))
		res, err = eng.RunStack(roots)
	} else {
		res, err = eng.Run(roots)
	}
	if err != nil {
		return fmt.Errorf("watershed %s/%s: %w", ws.Code, ws.HUC8, err)
	}

	w := watershed.NewWriter(base, log)
	csvPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", ws.Code, ws.HUC8))
	if err := w.WriteCSV(csvPath, ws, res); err != nil {
		return fmt.Errorf("watershed %s/%s: %w", ws.Code, ws.HUC8, err)
	}

	logPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.txt", ws.Code, ws.HUC8))
	if err := w.WriteLog(logPath, ws, res, len(roots), m); err != nil {
		return fmt.Errorf("watershed %s/%s: %w", ws.Code, ws.HUC8, err)
	}

	log.Info("finished watershed", "roots", len(roots), "max_order", res.MaxOrder)
	return nil
}
