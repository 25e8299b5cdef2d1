package store

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	return st
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	var records []record
	require.NoError(t, st.Load("calendar", &records))
	assert.Empty(t, records)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	in := []record{{ID: "EVT-1", Title: "standup"}, {ID: "EVT-2", Title: "retro"}}
	require.NoError(t, st.Save("calendar", in))

	var out []record
	require.NoError(t, st.Load("calendar", &out))
	assert.Equal(t, in, out)

	// One file per collection, named after it.
	_, err := os.Stat(filepath.Join(st.Dir(), "calendar.json"))
	assert.NoError(t, err)
}

func TestSave_OverwritesWholeCollection(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	require.NoError(t, st.Save("tickets", []record{{ID: "TKT-1"}}))
	require.NoError(t, st.Save("tickets", []record{{ID: "TKT-2"}}))

	var out []record
	require.NoError(t, st.Load("tickets", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "TKT-2", out[0].ID)
}

func TestLoad_CorruptFileErrors(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	path := filepath.Join(st.Dir(), "alerts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var out []record
	err := st.Load("alerts", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts")
}

func TestGenID(t *testing.T) {
	t.Parallel()

	id := GenID("EVT")
	assert.True(t, strings.HasPrefix(id, "EVT-"))
	assert.Len(t, id, len("EVT-")+4)

	// Not a strong guarantee, but two draws colliding would be suspicious.
	assert.NotEqual(t, GenID("EVT"), GenID("EVT"))
}
