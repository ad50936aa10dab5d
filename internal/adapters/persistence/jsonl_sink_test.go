package persistence

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestJSONLSink_WritesOneLinePerEvent(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewJSONLSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.WriteAssignment(domain.ZoneAssignment{DeviceID: "a", ZoneID: 5, TS: time.Now()}))
	require.NoError(t, sink.WriteAssignment(domain.ZoneAssignment{DeviceID: "b", ZoneID: 7, TS: time.Now()}))
	require.NoError(t, sink.WriteTransition(domain.Transition{DeviceID: "a", ToZone: 5}))
	require.NoError(t, sink.WriteError(domain.ErrorRecord{Where: "ingest", Error: "boom"}))

	require.Equal(t, 2, countLines(t, filepath.Join(dir, "zone_assignments.jsonl")))
	require.Equal(t, 1, countLines(t, filepath.Join(dir, "transitions.jsonl")))
	require.Equal(t, 1, countLines(t, filepath.Join(dir, "run_errors.jsonl")))
	require.Equal(t, 0, countLines(t, filepath.Join(dir, "dwells.jsonl")))
}

func TestNewJSONLSink_CreatesAllStreamFiles(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewJSONLSink(dir)
	require.NoError(t, err)
	defer sink.Close()

	for _, stream := range []string{
		"raw_rssi", "zone_assignments", "uncertain", "transitions",
		"dwells", "run_errors", "failed_uploads",
	} {
		_, err := os.Stat(filepath.Join(dir, stream+".jsonl"))
		require.NoError(t, err)
	}
}
