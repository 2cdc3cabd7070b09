// Package sqlitestore adapts NHDPlus SQLite exports (medium-resolution and
// high-resolution) to flowline.Store, grounded on the query shapes in
// lwi_label_nhd_streams.py's get_flowline/get_headwater_reaches/
// get_upstream_flowlines/get_downstream_flowlines family.
package sqlitestore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lwi-gis/nhdlabel/flowline"
)

// MediumRes is a flowline.Store over NHDPlus medium-resolution tables:
// nhdflowline_network (per-flowline attributes, startflag, reachcode) joined
// against a separate PlusFlow database holding the fromcomid/tocomid graph.
// The two may be the same *sql.DB (PlusFlow often ships alongside the
// flowline table) or two distinct ones (spec §2 "Two input files").
type MediumRes struct {
	flowlineDB *sql.DB
	plusflowDB *sql.DB
}

// NewMediumRes builds a MediumRes store. plusflowDB may be the same handle
// as flowlineDB.
func NewMediumRes(flowlineDB, plusflowDB *sql.DB) *MediumRes {
	return &MediumRes{flowlineDB: flowlineDB, plusflowDB: plusflowDB}
}

func (s *MediumRes) Get(id flowline.ID) (flowline.Flowline, bool) {
	row := s.flowlineDB.QueryRow(
		`select comid, reachcode, streamleve, streamorde, divergence
		 from nhdflowline_network where comid = ?`, int64(id))
	return scanFlowline(row, id)
}

func (s *MediumRes) Headwaters(huc8 string) ([]flowline.ID, error) {
	rows, err := s.flowlineDB.Query(
		`select comid from nhdflowline_network
		 where reachcode like ? and startflag = 1 order by comid desc`,
		huc8+"%")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: Headwaters(%q): %w", huc8, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *MediumRes) Upstream(id flowline.ID) ([]flowline.Flowline, error) {
	return s.neighbors(
		`select fromcomid from plusflow where tocomid = ? order by fromcomid desc`,
		id)
}

func (s *MediumRes) Downstream(id flowline.ID) ([]flowline.Flowline, error) {
	return s.neighbors(
		`select tocomid from plusflow where fromcomid = ? order by tocomid asc`,
		id)
}

func (s *MediumRes) neighbors(query string, id flowline.ID) ([]flowline.Flowline, error) {
	rows, err := s.plusflowDB.Query(query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: neighbor query for %v: %w", id, err)
	}
	defer rows.Close()

	var out []flowline.Flowline
	for rows.Next() {
		var neighborID int64
		if err := rows.Scan(&neighborID); err != nil {
			return nil, fmt.Errorf("sqlitestore: scanning neighbor of %v: %w", id, err)
		}
		f, ok := s.Get(flowline.ID(neighborID))
		if !ok {
			continue // neighbor absent from the flowline table: silent skip, matches source
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// HighRes is a flowline.Store over NHDPlus High Resolution tables:
// nhdflowline joined with nhdplusflowlinevaa for attributes, and
// nhdplusflow for the graph. Unlike MediumRes, HR's graph query carries no
// ORDER BY in the source, so neighbor order here is whatever SQLite returns
// (typically rowid order).
type HighRes struct {
	db *sql.DB
}

func NewHighRes(db *sql.DB) *HighRes {
	return &HighRes{db: db}
}

func (s *HighRes) Get(id flowline.ID) (flowline.Flowline, bool) {
	row := s.db.QueryRow(
		`select fl.nhdplusid, fl.reachcode, vaa.streamleve, vaa.streamorde, vaa.divergence
		 from nhdflowline as fl, nhdplusflowlinevaa as vaa
		 where fl.nhdplusid = ? and fl.nhdplusid = vaa.nhdplusid`, float64(id))
	return scanFlowline(row, id)
}

func (s *HighRes) Headwaters(huc8 string) ([]flowline.ID, error) {
	rows, err := s.db.Query(
		`select nhdplusid from nhdplusflowlinevaa where reachcode like ? and startflag = 1`,
		huc8+"%")
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: Headwaters(%q): %w", huc8, err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (s *HighRes) Upstream(id flowline.ID) ([]flowline.Flowline, error) {
	return s.neighbors(
		`select fromnhdpid from nhdplusflow where tonhdpid = ?`, id)
}

func (s *HighRes) Downstream(id flowline.ID) ([]flowline.Flowline, error) {
	return s.neighbors(
		`select tonhdpid from nhdplusflow where fromnhdpid = ?`, id)
}

func (s *HighRes) neighbors(query string, id flowline.ID) ([]flowline.Flowline, error) {
	rows, err := s.db.Query(query, float64(id))
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: neighbor query for %v: %w", id, err)
	}
	defer rows.Close()

	var out []flowline.Flowline
	for rows.Next() {
		var neighborID float64
		if err := rows.Scan(&neighborID); err != nil {
			return nil, fmt.Errorf("sqlitestore: scanning neighbor of %v: %w", id, err)
		}
		f, ok := s.Get(flowline.ID(neighborID))
		if !ok {
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanFlowline(row scannable, id flowline.ID) (flowline.Flowline, bool) {
	var f flowline.Flowline
	f.ID = id
	if err := row.Scan(&f.ID, &f.Reachcode, &f.StreamLevel, &f.StrahlerOrder, &f.Divergence); err != nil {
		return flowline.Flowline{}, false
	}
	return f, true
}

func scanIDs(rows *sql.Rows) ([]flowline.ID, error) {
	var ids []flowline.ID
	for rows.Next() {
		var id flowline.ID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlitestore: scanning headwater id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
