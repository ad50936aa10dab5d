// Package calibration implements the interactive collector: synchronized
// multi-sniffer aggregation of RSSI samples for one zone into
// deduplicated normalized fingerprint vectors.
package calibration

import (
	"sort"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Config holds the collector's tunable thresholds.
type Config struct {
	MaxSamplesPerPi   int
	RecentWindow      int
	OutlierDBM        float64
	SyncWindowSec     time.Duration
	MinPisForVector   int
	MaxVectorsPerZone int
	Timeout           time.Duration
}

// Collector runs one zone's capture session.
type Collector struct {
	cfg Config
	job *domain.CalibrationJob
}

// NewCollector starts a collector bound to job.
func NewCollector(cfg Config, job *domain.CalibrationJob) *Collector {
	return &Collector{cfg: cfg, job: job}
}

// Observe feeds one RSSI sample through the outlier check, sample cap,
// and sync-window snapshot logic. The collector does not filter by
// device: every sample it is given is folded in. Returns
// true if a new deduplicated vector was appended this call.
func (c *Collector) Observe(sniffer string, rssi int, rxTS time.Time) bool {
	recent := c.job.RecentSamples(sniffer, c.cfg.RecentWindow)
	if len(recent) > 0 {
		med := medianRSSI(recent)
		diff := float64(rssi) - med
		if diff < 0 {
			diff = -diff
		}
		if diff > c.cfg.OutlierDBM {
			return false
		}
	}

	if c.job.SampleCount(sniffer) < c.cfg.MaxSamplesPerPi {
		c.job.AppendSample(sniffer, domain.TimedRSSI{TS: rxTS, RSSI: rssi})
	}
	c.job.SetLatest(sniffer, domain.TimedRSSI{TS: rxTS, RSSI: rssi})

	return c.snapshot(rxTS)
}

// snapshot builds the active-sniffer set using absolute time delta (not
// ordered delta, so reordering/jitter can't spuriously drop a sniffer),
// and appends a deduplicated normalized vector if enough sniffers agree.
func (c *Collector) snapshot(rxTS time.Time) bool {
	live := domain.LiveVector{}
	for sniffer, latest := range c.job.Latest() {
		delta := rxTS.Sub(latest.TS)
		if delta < 0 {
			delta = -delta
		}
		if delta <= c.cfg.SyncWindowSec {
			live[sniffer] = latest.RSSI
		}
	}

	if len(live) < c.cfg.MinPisForVector {
		return false
	}
	if len(c.job.Vectors) >= c.cfg.MaxVectorsPerZone {
		return false
	}

	return c.job.AddVectorIfNew(live.Normalize())
}

// Done reports whether the collector should stop: every sniffer hit its
// sample cap, the max vector count was reached, or the timeout elapsed.
func (c *Collector) Done(now time.Time) bool {
	if now.Sub(c.job.StartedAt) >= c.cfg.Timeout {
		return true
	}
	if len(c.job.Vectors) >= c.cfg.MaxVectorsPerZone {
		return true
	}
	counts := c.job.AllSampleCounts()
	if len(counts) == 0 {
		return false
	}
	for _, n := range counts {
		if n < c.cfg.MaxSamplesPerPi {
			return false
		}
	}
	return true
}

// Record builds the persisted calibration record for the job.
func (c *Collector) Record(createdTS float64) domain.CalibrationRecord {
	return domain.CalibrationRecord{
		CreatedTS:        createdTS,
		ZoneID:           c.job.ZoneID,
		X:                c.job.X,
		Y:                c.job.Y,
		MaxSamplesPerPi:  c.cfg.MaxSamplesPerPi,
		SyncWindowSec:    c.cfg.SyncWindowSec.Seconds(),
		MinPisForVector:  c.cfg.MinPisForVector,
		VectorsCollected: len(c.job.Vectors),
		VectorType:       "normalized_rssi_minus_median",
		Timebase:         "rx_time_laptop",
		Vectors:          c.job.Vectors,
	}
}

func medianRSSI(samples []domain.TimedRSSI) float64 {
	vals := make([]int, len(samples))
	for i, s := range samples {
		vals[i] = s.RSSI
	}
	sort.Ints(vals)
	n := len(vals)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return float64(vals[n/2])
	}
	return (float64(vals[n/2-1]) + float64(vals[n/2])) / 2
}
