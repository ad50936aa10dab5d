package fingerprint

import (
	"context"
	"testing"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	s, err := NewStore(db)
	require.NoError(t, err)
	return s
}

func TestLoadFingerprints_KeepsLatestPerZone(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := domain.CalibrationRecord{
		ZoneID: 5, X: 1, Y: 1, CreatedTS: 100,
		Vectors: []domain.NormalizedVector{{"s1": 0}},
	}
	newer := domain.CalibrationRecord{
		ZoneID: 5, X: 1, Y: 1, CreatedTS: 200,
		Vectors: []domain.NormalizedVector{{"s1": 1}, {"s1": 2}},
	}
	otherZone := domain.CalibrationRecord{
		ZoneID: 7, X: 5, Y: 5, CreatedTS: 150,
		Vectors: []domain.NormalizedVector{{"s1": 3}},
	}

	require.NoError(t, s.SaveCalibration(ctx, older))
	require.NoError(t, s.SaveCalibration(ctx, newer))
	require.NoError(t, s.SaveCalibration(ctx, otherZone))

	fps, err := s.LoadFingerprints(ctx)
	require.NoError(t, err)
	require.Len(t, fps, 2)

	require.Equal(t, 5, fps[0].ZoneID)
	require.Equal(t, 200.0, fps[0].CreatedTS)
	require.Len(t, fps[0].Vectors, 2)

	require.Equal(t, 7, fps[1].ZoneID)
}

func TestLoadFingerprints_EmptyStoreReturnsEmptySlice(t *testing.T) {
	s := newTestStore(t)
	fps, err := s.LoadFingerprints(context.Background())
	require.NoError(t, err)
	require.Empty(t, fps)
}
