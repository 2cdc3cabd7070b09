// Package nhdlabel assigns hierarchical stream-reach labels to NHDPlus
// flowlines.
//
// Given a hydrography database (medium-resolution NHDPlus or NHDPlus High
// Resolution) and a roster of HUC8 watersheds, it walks each watershed
// upstream from its outlet, minting a compact label at every reach that
// encodes the reach's position in the stream hierarchy (main stem,
// tributary order, divergence). Output is one CSV and one statistics log
// per watershed.
//
// Package layout:
//
//	flowline/    — Flowline model and the Store contract backing stores satisfy
//	digitenc/    — hex / Crockford base-32 digit-string codec
//	minter/      — per-prefix counter state that mints raw-label suffixes
//	outlet/      — finds each watershed's outlet reaches by downstream search
//	traverse/    — the upstream traversal and label-minting state machine
//	compact/     — renders a raw label into its fixed-width compact form
//	sqlitestore/ — medium-res and high-res FlowlineStore adapters over SQLite
//	watershed/   — watershed roster loading, CSV/log output
//	cmd/nhdlabel/ — the CLI entrypoint
package nhdlabel
