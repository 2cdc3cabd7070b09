package sqlitestore_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwi-gis/nhdlabel/flowline"
	"github.com/lwi-gis/nhdlabel/sqlitestore"
)

func openMediumResFixture(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		create table nhdflowline_network (
			comid integer primary key,
			reachcode text,
			streamleve integer,
			streamorde integer,
			divergence integer,
			startflag integer
		);
		create table plusflow (
			fromcomid integer,
			tocomid integer
		);
	`)
	require.NoError(t, err)

	_, err = db.Exec(`insert into nhdflowline_network
		(comid, reachcode, streamleve, streamorde, divergence, startflag) values
		(1, '999999990001', 0, 1, 0, 1),
		(2, '999999990002', 0, 1, 0, 0),
		(3, '999999990003', 1, 1, 0, 0)`)
	require.NoError(t, err)

	_, err = db.Exec(`insert into plusflow (fromcomid, tocomid) values (1, 2), (2, 3)`)
	require.NoError(t, err)

	return db
}

func TestMediumRes_GetAndNeighbors(t *testing.T) {
	db := openMediumResFixture(t)
	store := sqlitestore.NewMediumRes(db, db)

	f, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "999999990001", f.Reachcode)
	assert.Equal(t, 1, f.StrahlerOrder)

	_, ok = store.Get(999)
	assert.False(t, ok)

	ids, err := store.Headwaters("99999999")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, flowline.ID(1), ids[0])

	down, err := store.Downstream(1)
	require.NoError(t, err)
	require.Len(t, down, 1)
	assert.Equal(t, flowline.ID(2), down[0].ID)

	up, err := store.Upstream(3)
	require.NoError(t, err)
	require.Len(t, up, 1)
	assert.Equal(t, flowline.ID(2), up[0].ID)
}

func TestMediumRes_UpstreamOrderingDescending(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		create table nhdflowline_network (
			comid integer primary key, reachcode text,
			streamleve integer, streamorde integer, divergence integer, startflag integer
		);
		create table plusflow (fromcomid integer, tocomid integer);
		insert into nhdflowline_network values
			(10, '99999999aaaa', 0, 1, 0, 1),
			(11, '99999999bbbb', 0, 1, 0, 1),
			(20, '99999999cccc', 1, 2, 0, 0);
		insert into plusflow (fromcomid, tocomid) values (10, 20), (11, 20);
	`)
	require.NoError(t, err)

	store := sqlitestore.NewMediumRes(db, db)
	up, err := store.Upstream(20)
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, flowline.ID(11), up[0].ID) // descending fromcomid
	assert.Equal(t, flowline.ID(10), up[1].ID)
}

func TestHighRes_GetAndNeighbors(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		create table nhdflowline (nhdplusid real primary key, reachcode text);
		create table nhdplusflowlinevaa (
			nhdplusid real primary key, reachcode text, streamleve integer, streamorde integer,
			divergence integer, startflag integer
		);
		create table nhdplusflow (fromnhdpid real, tonhdpid real);
		insert into nhdflowline values (1.0, '999999990001'), (2.0, '999999990002');
		insert into nhdplusflowlinevaa values
			(1.0, '999999990001', 0, 1, 0, 1),
			(2.0, '999999990002', 1, 1, 0, 0);
		insert into nhdplusflow (fromnhdpid, tonhdpid) values (1.0, 2.0);
	`)
	require.NoError(t, err)

	store := sqlitestore.NewHighRes(db)
	f, ok := store.Get(1.0)
	require.True(t, ok)
	assert.Equal(t, "999999990001", f.Reachcode)

	ids, err := store.Headwaters("99999999")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, flowline.ID(1.0), ids[0])

	down, err := store.Downstream(1.0)
	require.NoError(t, err)
	require.Len(t, down, 1)
	assert.Equal(t, flowline.ID(2.0), down[0].ID)
}
