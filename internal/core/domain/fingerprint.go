package domain

import (
	"fmt"
	"math"
	"sort"
)

// Fingerprint holds the calibrated normalized vectors recorded for one
// zone. Created by the calibration collector, append-only persisted; the
// most recently created record for a zone_id wins on load.
type Fingerprint struct {
	ZoneID    int
	X, Y      float64
	CreatedTS float64
	Vectors   []NormalizedVector
}

// minPisForVector is the minimum domain size a stored calibration vector
// must have to be considered valid.
const minPisForVector = 3

// Valid reports whether the fingerprint has at least one usable vector.
func (f Fingerprint) Valid() bool {
	for _, v := range f.Vectors {
		if len(v) >= minPisForVector {
			return true
		}
	}
	return false
}

// DedupKey returns a stable key for a normalized vector, used to reject
// duplicate calibration snapshots: sorted (sniffer, value) tuples.
func DedupKey(v NormalizedVector) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := ""
	for _, k := range keys {
		key += fmt.Sprintf("%s=%.1f;", k, v[k])
	}
	return key
}

// ZoneWeights is the per-sniffer reliability weight derived from a
// fingerprint's calibrated normalized values: w = clamp(1 - std/12.5, 0.2, 1.0).
// With fewer than two samples for a sniffer, the weight defaults to 0.5.
type ZoneWeights map[string]float64

// weightStdDenominator is empirical; see spec design notes. Treat as tunable.
const weightStdDenominator = 12.5

// ComputeWeights derives per-sniffer reliability weights from a
// fingerprint's stored vectors. Computed once at startup; read-only after.
func ComputeWeights(f Fingerprint) ZoneWeights {
	samples := map[string][]float64{}
	for _, v := range f.Vectors {
		for sniffer, val := range v {
			samples[sniffer] = append(samples[sniffer], val)
		}
	}
	out := make(ZoneWeights, len(samples))
	for sniffer, vals := range samples {
		if len(vals) < 2 {
			out[sniffer] = 0.5
			continue
		}
		out[sniffer] = clamp(1.0-stddev(vals)/weightStdDenominator, 0.2, 1.0)
	}
	return out
}

// ComputeStdDev returns each sniffer's standard deviation across a
// fingerprint's stored normalized (RSSI minus median) values, for reporting (ComputeWeights folds
// this into a clamped reliability weight instead).
func ComputeStdDev(f Fingerprint) map[string]float64 {
	samples := map[string][]float64{}
	for _, v := range f.Vectors {
		for sniffer, val := range v {
			samples[sniffer] = append(samples[sniffer], val)
		}
	}
	out := make(map[string]float64, len(samples))
	for sniffer, vals := range samples {
		out[sniffer] = stddev(vals)
	}
	return out
}

func stddev(vals []float64) float64 {
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))
	return math.Sqrt(variance)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
