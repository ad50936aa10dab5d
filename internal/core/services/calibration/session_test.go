package calibration

import (
	"context"
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFingerprintStore struct {
	mock.Mock
}

func (m *mockFingerprintStore) SaveCalibration(ctx context.Context, rec domain.CalibrationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockFingerprintStore) LoadFingerprints(ctx context.Context) ([]domain.Fingerprint, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Fingerprint), args.Error(1)
}

func (m *mockFingerprintStore) Close() error { return nil }

func TestSession_StartTwiceFails(t *testing.T) {
	store := new(mockFingerprintStore)
	s := NewSession(defaultConfig(), store)

	require.NoError(t, s.Start(1, 0, 0, time.Now()))
	assert.ErrorIs(t, s.Start(1, 0, 0, time.Now()), ErrAlreadyRunning)
}

func TestSession_StopWithoutStartFails(t *testing.T) {
	store := new(mockFingerprintStore)
	s := NewSession(defaultConfig(), store)

	_, err := s.Stop(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestSession_ObserveThenStopPersists(t *testing.T) {
	store := new(mockFingerprintStore)
	store.On("SaveCalibration", mock.Anything, mock.MatchedBy(func(rec domain.CalibrationRecord) bool {
		return rec.ZoneID == 3 && rec.VectorsCollected == 1
	})).Return(nil)

	s := NewSession(defaultConfig(), store)
	now := time.Now()
	require.NoError(t, s.Start(3, 1.5, 2.5, now))
	assert.True(t, s.Active())

	s.Observe(context.Background(), "s1", -60, now)
	s.Observe(context.Background(), "s2", -62, now)
	s.Observe(context.Background(), "s3", -58, now)

	rec, err := s.Stop(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.ZoneID)
	assert.False(t, s.Active())
	store.AssertExpectations(t)
}
