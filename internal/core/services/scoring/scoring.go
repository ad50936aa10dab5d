// Package scoring matches a live normalized vector against each zone's
// calibrated fingerprints using a composite weighted-L1 / rank-order
// metric, and applies the margin gate that suppresses ambiguous ticks.
package scoring

import (
	"math"
	"sort"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Config holds the scorer's tunable thresholds, all environment
// overridable per the external interface table.
type Config struct {
	MatchDiffDBM        float64
	MarginGate          float64
	L1Weight            float64
	RankWeight          float64
	RankMatchThreshold  float64
}

// ZoneModel is one calibrated zone: its fingerprints and precomputed
// per-sniffer reliability weights, both read-only after startup.
type ZoneModel struct {
	Zone        domain.Zone
	Fingerprint domain.Fingerprint
	Weights     domain.ZoneWeights
}

// Result is the outcome of scoring one live vector against all zones.
type Result struct {
	BestZone         *ZoneModel
	BestConfidence   float64
	SecondZone       *ZoneModel
	SecondConfidence float64
	Margin           float64
	Uncertain        bool
}

// Scorer holds the fixed zone models for one run.
type Scorer struct {
	cfg   Config
	zones []ZoneModel
}

// NewScorer sorts zones by ID ascending so confidence ties break
// deterministically toward the lowest zone_id, matching spec order.
func NewScorer(cfg Config, zones []ZoneModel) *Scorer {
	sorted := make([]ZoneModel, len(zones))
	copy(sorted, zones)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Zone.ID < sorted[j].Zone.ID })
	return &Scorer{cfg: cfg, zones: sorted}
}

// Score ranks every zone with a non-empty fingerprint list against live,
// returns the top two by confidence, and applies the margin gate.
func (s *Scorer) Score(live domain.NormalizedVector) Result {
	liveRanks := domain.Ranks(live)

	type scored struct {
		zone *ZoneModel
		conf float64
	}
	var all []scored
	for i := range s.zones {
		z := &s.zones[i]
		if len(z.Fingerprint.Vectors) == 0 {
			continue
		}
		all = append(all, scored{zone: z, conf: s.zoneConfidence(live, liveRanks, *z)})
	}

	if len(all) == 0 {
		return Result{Uncertain: true}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].conf != all[j].conf {
			return all[i].conf > all[j].conf
		}
		return all[i].zone.Zone.ID < all[j].zone.Zone.ID
	})

	res := Result{BestZone: all[0].zone, BestConfidence: all[0].conf}
	if len(all) > 1 {
		res.SecondZone = all[1].zone
		res.SecondConfidence = all[1].conf
	}
	res.Margin = res.BestConfidence - res.SecondConfidence
	res.Uncertain = res.Margin < s.cfg.MarginGate
	return res
}

func (s *Scorer) zoneConfidence(live domain.NormalizedVector, liveRanks map[string]int, z ZoneModel) float64 {
	sum := 0.0
	for _, v := range z.Fingerprint.Vectors {
		sum += s.fpScore(live, liveRanks, v, z.Weights)
	}
	return sum / float64(len(z.Fingerprint.Vectors))
}

func (s *Scorer) fpScore(live domain.NormalizedVector, liveRanks map[string]int, v domain.NormalizedVector, weights domain.ZoneWeights) float64 {
	l1 := weightedL1(live, v, weights)
	l1Match := 0.0
	if l1 <= s.cfg.MatchDiffDBM {
		l1Match = 1.0
	}

	vRanks := domain.Ranks(v)
	rd := domain.RankDistance(liveRanks, vRanks)
	rankMatch := 0.0
	if rd <= s.cfg.RankMatchThreshold {
		rankMatch = 1.0
	}

	return s.cfg.L1Weight*l1Match + s.cfg.RankWeight*rankMatch
}

// weightedL1 is the per-sniffer-weighted mean absolute difference over
// sniffers present in both vectors, +Inf if there is no overlap.
func weightedL1(a, b domain.NormalizedVector, weights domain.ZoneWeights) float64 {
	weightedSum := 0.0
	weightTotal := 0.0
	for sniffer, av := range a {
		bv, ok := b[sniffer]
		if !ok {
			continue
		}
		w := weights[sniffer]
		if w == 0 {
			w = 0.5
		}
		diff := av - bv
		if diff < 0 {
			diff = -diff
		}
		weightedSum += w * diff
		weightTotal += w
	}
	if weightTotal == 0 {
		return math.Inf(1)
	}
	return weightedSum / weightTotal
}
