package zones

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadZones_ParsesRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.csv")
	require.NoError(t, os.WriteFile(path, []byte("zone_id,x,y\n5,1.0,2.5\n7,3.0,4.0\n"), 0o644))

	store := NewCSVStore(path)
	got, err := store.LoadZones(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 5, got[0].ID)
	require.Equal(t, 2.5, got[0].Y)
	require.Equal(t, 7, got[1].ID)
}

func TestLoadZones_MissingColumnErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zones.csv")
	require.NoError(t, os.WriteFile(path, []byte("zone_id,x\n5,1.0\n"), 0o644))

	store := NewCSVStore(path)
	_, err := store.LoadZones(context.Background())
	require.Error(t, err)
}

func TestLoadZones_MissingFileErrors(t *testing.T) {
	store := NewCSVStore("/nonexistent/zones.csv")
	_, err := store.LoadZones(context.Background())
	require.Error(t, err)
}
