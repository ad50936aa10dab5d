package domain

import (
	"math"
	"sort"
)

// LiveVector is the most recent RSSI per sniffer for one device, within
// the per-sniffer freshness bound. Rebuilt on every message.
type LiveVector map[string]int

// NormalizedVector has the same domain as a LiveVector but values are
// shifted so the median of the vector is zero.
type NormalizedVector map[string]float64

// Median returns the median of the vector's integer values, 0 if empty.
func (v LiveVector) Median() float64 {
	if len(v) == 0 {
		return 0
	}
	vals := make([]int, 0, len(v))
	for _, x := range v {
		vals = append(vals, x)
	}
	sort.Ints(vals)
	n := len(vals)
	if n%2 == 1 {
		return float64(vals[n/2])
	}
	return (float64(vals[n/2-1]) + float64(vals[n/2])) / 2
}

// Normalize subtracts the vector's median from each entry and rounds to
// one decimal, removing device-absolute transmit-power bias.
func (v LiveVector) Normalize() NormalizedVector {
	median := v.Median()
	out := make(NormalizedVector, len(v))
	for sniffer, rssi := range v {
		out[sniffer] = roundTo1(float64(rssi) - median)
	}
	return out
}

func roundTo1(f float64) float64 {
	if f < 0 {
		return -roundTo1(-f)
	}
	scaled := f*10 + 0.5
	return float64(int(scaled)) / 10
}

// Ranks orders the vector's sniffers by descending value, 0 = strongest,
// and returns each sniffer's position. Invariant under any constant
// offset applied to all values, which is what makes it usable to
// re-identify a device across an absolute-power shift.
func Ranks(v map[string]float64) map[string]int {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if v[keys[i]] == v[keys[j]] {
			return keys[i] < keys[j]
		}
		return v[keys[i]] > v[keys[j]]
	})
	out := make(map[string]int, len(keys))
	for i, k := range keys {
		out[k] = i
	}
	return out
}

// RankDistance is the mean absolute difference in rank position over the
// sniffers common to both rank maps. Returns +Inf if there is no overlap.
func RankDistance(a, b map[string]int) float64 {
	sum := 0.0
	n := 0
	for sniffer, ra := range a {
		rb, ok := b[sniffer]
		if !ok {
			continue
		}
		d := ra - rb
		if d < 0 {
			d = -d
		}
		sum += float64(d)
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}
