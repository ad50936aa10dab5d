// Package vectorbuilder reduces a device's window buffer to a live
// vector (latest reading per fresh sniffer) and its normalized form.
package vectorbuilder

import (
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
)

// Builder extracts live vectors from window buffers.
type Builder struct {
	perSnifferFresh time.Duration
	minSources      int
}

// NewBuilder configures the per-sniffer freshness bound and the minimum
// domain size required before a vector is usable for scoring.
func NewBuilder(perSnifferFresh time.Duration, minSources int) *Builder {
	return &Builder{perSnifferFresh: perSnifferFresh, minSources: minSources}
}

// Build reduces buf to latest-by-sniffer, filters to fresh sniffers only
// (stricter than the window buffer itself, so a sniffer gone silent
// cannot contribute a stale value), and reports whether the result
// clears MIN_SOURCES. now is normally the triggering sample's rx_ts.
func (b *Builder) Build(buf []domain.RSSISample, now time.Time) (domain.LiveVector, bool) {
	latest := map[string]domain.RSSISample{}
	for _, s := range buf {
		cur, ok := latest[s.SnifferID]
		if !ok || s.RxTS.After(cur.RxTS) {
			latest[s.SnifferID] = s
		}
	}

	cutoff := now.Add(-b.perSnifferFresh)
	live := domain.LiveVector{}
	for sniffer, s := range latest {
		if !s.RxTS.Before(cutoff) {
			live[sniffer] = s.RSSI
		}
	}

	if len(live) < b.minSources {
		return nil, false
	}
	return live, true
}
