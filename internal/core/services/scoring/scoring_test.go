package scoring

import (
	"testing"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() Config {
	return Config{
		MatchDiffDBM:       7.0,
		MarginGate:         0.15,
		L1Weight:           0.6,
		RankWeight:         0.4,
		RankMatchThreshold: 1.5,
	}
}

func TestScore_UnambiguousMatch(t *testing.T) {
	zoneA := ZoneModel{
		Zone:        domain.Zone{ID: 5},
		Fingerprint: domain.Fingerprint{ZoneID: 5, Vectors: []domain.NormalizedVector{{"s1": 0, "s2": -2, "s3": 2}}},
		Weights:     domain.ZoneWeights{"s1": 1, "s2": 1, "s3": 1},
	}
	zoneB := ZoneModel{
		Zone:        domain.Zone{ID: 7},
		Fingerprint: domain.Fingerprint{ZoneID: 7, Vectors: []domain.NormalizedVector{{"s1": 10, "s2": 8, "s3": 12}}},
		Weights:     domain.ZoneWeights{"s1": 1, "s2": 1, "s3": 1},
	}
	scorer := NewScorer(defaultConfig(), []ZoneModel{zoneA, zoneB})

	res := scorer.Score(domain.NormalizedVector{"s1": 0, "s2": -2, "s3": 2})
	require.NotNil(t, res.BestZone)
	assert.Equal(t, 5, res.BestZone.Zone.ID)
	assert.False(t, res.Uncertain)
	assert.GreaterOrEqual(t, res.Margin, defaultConfig().MarginGate)
}

func TestScore_AmbiguityTriggersUncertain(t *testing.T) {
	// Two zones scoring close enough that margin < MARGIN_GATE.
	zoneA := ZoneModel{
		Zone:        domain.Zone{ID: 1},
		Fingerprint: domain.Fingerprint{ZoneID: 1, Vectors: []domain.NormalizedVector{{"s1": 0, "s2": 0}}},
		Weights:     domain.ZoneWeights{"s1": 1, "s2": 1},
	}
	zoneB := ZoneModel{
		Zone:        domain.Zone{ID: 2},
		Fingerprint: domain.Fingerprint{ZoneID: 2, Vectors: []domain.NormalizedVector{{"s1": 0, "s2": 0.5}}},
		Weights:     domain.ZoneWeights{"s1": 1, "s2": 1},
	}
	scorer := NewScorer(defaultConfig(), []ZoneModel{zoneA, zoneB})
	res := scorer.Score(domain.NormalizedVector{"s1": 0, "s2": 0})
	assert.True(t, res.Uncertain)
}

func TestScore_NoZonesScored(t *testing.T) {
	scorer := NewScorer(defaultConfig(), nil)
	res := scorer.Score(domain.NormalizedVector{"s1": 0})
	assert.Nil(t, res.BestZone)
	assert.True(t, res.Uncertain)
}

func TestScore_ZeroFingerprintsSkipped(t *testing.T) {
	zoneEmpty := ZoneModel{Zone: domain.Zone{ID: 1}, Fingerprint: domain.Fingerprint{ZoneID: 1}}
	zoneA := ZoneModel{
		Zone:        domain.Zone{ID: 2},
		Fingerprint: domain.Fingerprint{ZoneID: 2, Vectors: []domain.NormalizedVector{{"s1": 0}}},
		Weights:     domain.ZoneWeights{"s1": 1},
	}
	scorer := NewScorer(defaultConfig(), []ZoneModel{zoneEmpty, zoneA})
	res := scorer.Score(domain.NormalizedVector{"s1": 0})
	require.NotNil(t, res.BestZone)
	assert.Equal(t, 2, res.BestZone.Zone.ID)
}

func TestRankInvarianceUnderConstantShift(t *testing.T) {
	base := domain.NormalizedVector{"s1": 1, "s2": 5, "s3": -3}
	shifted := domain.NormalizedVector{"s1": 11, "s2": 15, "s3": 7}
	assert.Equal(t, domain.Ranks(base), domain.Ranks(shifted))
}
