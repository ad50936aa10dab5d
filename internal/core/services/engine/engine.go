// Package engine orchestrates one live-mode run: it owns the window
// registry, session linker, and transition debouncer, and is the single
// serialization point for all ordering-sensitive state. Only the
// upload sidecar runs with any independent parallelism; see the
// concurrency model in the design notes.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/core/services/calibration"
	"github.com/neuralsense/fusion/internal/core/services/ingest"
	"github.com/neuralsense/fusion/internal/core/services/linker"
	"github.com/neuralsense/fusion/internal/core/services/scoring"
	"github.com/neuralsense/fusion/internal/core/services/transition"
	"github.com/neuralsense/fusion/internal/core/services/vectorbuilder"
	"github.com/neuralsense/fusion/internal/telemetry"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/core/services/engine")

// Config bundles every tunable threshold the spec's external-interface
// table names, so the engine can be constructed from one loaded value.
type Config struct {
	WindowSec        time.Duration
	PerSnifferFresh  time.Duration
	MinSources       int
	Scoring          scoring.Config
	Linker           linker.Config
	ConfirmCount     int
	Debug            bool
}

// Engine fuses RSSI samples into zone assignments, transitions, and
// dwells, and writes every emitted event to sinks.
type Engine struct {
	cfg Config

	ingest   *ingest.Adapter
	windows  windowRegistry
	vectors  *vectorbuilder.Builder
	scorer   *scoring.Scorer
	linker   *linker.Linker
	debounce *transition.Debouncer

	sinks ports.EventSink

	// calib, if set, also receives every decoded sample so the control
	// plane's calibration start/stop endpoints can run against the same
	// live broker feed as the fusion pipeline.
	calib *calibration.Session

	// broadcast, if set, receives every emitted event alongside the
	// sinks, for the control plane's live WebSocket feed.
	broadcast eventBroadcaster

	// mu guards window/linker/debounce state against concurrent reads from the
	// control plane's status endpoint; HandleMessage is otherwise the
	// only writer and runs on a single goroutine.
	mu sync.RWMutex
}

// eventBroadcaster is the minimal surface the engine needs to push
// events to the control plane's live feed; declared here so the web
// adapter's WSManager can satisfy it without a back-import.
type eventBroadcaster interface {
	BroadcastAssignment(domain.ZoneAssignment)
	BroadcastUncertain(domain.Uncertain)
	BroadcastTransition(domain.Transition)
	BroadcastDwell(domain.Dwell)
}

// SetBroadcaster attaches a live-feed broadcaster. Optional; nil is a
// no-op.
func (e *Engine) SetBroadcaster(b eventBroadcaster) {
	e.broadcast = b
}

// SessionStatus is a read-only snapshot of one tracked session, for the
// control plane's status/sessions endpoints.
type SessionStatus struct {
	SessionID     string
	LastSeen      time.Time
	ConfirmedZone int
	Phase         domain.TransitionPhase
}

// SetCalibrationSession attaches a calibration session that receives
// every decoded sample alongside the fusion pipeline.
func (e *Engine) SetCalibrationSession(s *calibration.Session) {
	e.calib = s
}

// Sessions returns a point-in-time snapshot of every tracked session.
// Safe to call concurrently with HandleMessage.
func (e *Engine) Sessions() []SessionStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sessions := e.linker.Sessions()
	out := make([]SessionStatus, 0, len(sessions))
	for _, s := range sessions {
		status := SessionStatus{SessionID: s.ID, LastSeen: s.LastSeen}
		if st, ok := e.debounce.State(s.ID); ok {
			status.ConfirmedZone = st.ConfirmedZone
			status.Phase = st.Phase
		}
		out = append(out, status)
	}
	return out
}

// TrackedDevices returns every device identifier with a live window
// buffer, for the control plane's status endpoint to surface buffer
// growth independent of session count.
func (e *Engine) TrackedDevices() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.windows.KnownDevices()
}

// windowRegistry is the minimal surface engine needs from services/window;
// declared as an interface here so tests can substitute a fake.
type windowRegistry interface {
	Append(s domain.RSSISample)
	Buffer(deviceID string) []domain.RSSISample
	Remove(deviceID string)
	KnownDevices() []string
}

// New builds an engine around its fixed zone models and output sinks.
// Fingerprint data and weights are read-only for the life of the run.
func New(cfg Config, ingestAdapter *ingest.Adapter, windows windowRegistry, zones []scoring.ZoneModel, sinks ports.EventSink) *Engine {
	return &Engine{
		cfg:      cfg,
		ingest:   ingestAdapter,
		windows:  windows,
		vectors:  vectorbuilder.NewBuilder(cfg.PerSnifferFresh, cfg.MinSources),
		scorer:   scoring.NewScorer(cfg.Scoring, zones),
		linker:   linker.NewLinker(cfg.Linker),
		debounce: transition.NewDebouncer(cfg.ConfirmCount),
		sinks:    sinks,
	}
}

// HandleMessage is the single serialized entry point invoked by the
// broker's read loop for every inbound RSSI observation. It never blocks:
// file writes go through best-effort sinks, and the only background
// worker in the system is the upload sidecar downstream of this method.
func (e *Engine) HandleMessage(ctx context.Context, msg ports.RawMessage, rxTime time.Time) {
	ctx, span := tracer.Start(ctx, "engine.HandleMessage")
	defer span.End()

	sample, err := e.ingest.Decode(msg, rxTime)
	if err != nil {
		telemetry.ParseErrors.WithLabelValues(msg.SnifferID).Inc()
		e.writeError(ctx, "ingest.Decode", err, map[string]any{"sniffer": msg.SnifferID})
		return
	}
	telemetry.MessagesIngested.WithLabelValues(msg.SnifferID).Inc()

	if e.calib != nil && e.calib.Active() {
		e.calib.Observe(ctx, sample.SnifferID, sample.RSSI, sample.RxTS)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.windows.Append(sample)
	live, ok := e.vectors.Build(e.windows.Buffer(sample.DeviceID), rxTime)
	if !ok {
		return // InsufficientSources: normal, silent skip.
	}

	normalized := live.Normalize()

	link := e.linker.Resolve(sample.DeviceID, rxTime, normalized)
	if link.Linked {
		e.recordLink(sample.DeviceID, link.SessionID)
	}

	result := e.scorer.Score(normalized)
	if result.BestZone == nil {
		return
	}

	if result.Uncertain {
		e.emitUncertain(sample, link.SessionID, live, result)
		e.maybeCleanup(rxTime)
		return
	}

	e.emitAssignment(sample, link.SessionID, live, result)

	outcome := e.debounce.Advance(link.SessionID, sample.DeviceID, result.BestZone.Zone.ID, result.BestConfidence, rxTime)
	if outcome.Transition != nil {
		telemetry.TransitionsEmitted.WithLabelValues(fmt.Sprintf("%d", outcome.Transition.ToZone)).Inc()
		if err := e.sinks.WriteTransition(*outcome.Transition); err != nil {
			e.writeError(ctx, "sinks.WriteTransition", err, nil)
		}
		if e.broadcast != nil {
			e.broadcast.BroadcastTransition(*outcome.Transition)
		}
	}
	if outcome.Dwell != nil {
		telemetry.DwellsEmitted.WithLabelValues(fmt.Sprintf("%d", outcome.Dwell.ZoneID)).Inc()
		if err := e.sinks.WriteDwell(*outcome.Dwell); err != nil {
			e.writeError(ctx, "sinks.WriteDwell", err, nil)
		}
		if e.broadcast != nil {
			e.broadcast.BroadcastDwell(*outcome.Dwell)
		}
	}

	e.maybeCleanup(rxTime)
}

func (e *Engine) emitAssignment(sample domain.RSSISample, sessionID string, live domain.LiveVector, result scoring.Result) {
	sources := make([]string, 0, len(live))
	for s := range live {
		sources = append(sources, s)
	}
	a := domain.ZoneAssignment{
		TS:               sample.RxTS,
		DeviceID:         sample.DeviceID,
		SessionID:        sessionID,
		ZoneID:           result.BestZone.Zone.ID,
		X:                result.BestZone.Zone.X,
		Y:                result.BestZone.Zone.Y,
		Confidence:       result.BestConfidence,
		Margin:           result.Margin,
		Sources:          sources,
		Vector:           live,
	}
	if result.SecondZone != nil {
		a.SecondZoneID = result.SecondZone.Zone.ID
		a.SecondConfidence = result.SecondConfidence
	}
	telemetry.AssignmentsEmitted.WithLabelValues(fmt.Sprintf("%d", a.ZoneID)).Inc()
	if err := e.sinks.WriteAssignment(a); err != nil {
		log.Printf("sinks.WriteAssignment: %v", err)
	}
	if e.broadcast != nil {
		e.broadcast.BroadcastAssignment(a)
	}
}

func (e *Engine) emitUncertain(sample domain.RSSISample, sessionID string, live domain.LiveVector, result scoring.Result) {
	u := domain.Uncertain{
		TS:         sample.RxTS,
		DeviceID:   sample.DeviceID,
		SessionID:  sessionID,
		Margin:     result.Margin,
		Vector:     live,
	}
	if result.BestZone != nil {
		u.ZoneID = result.BestZone.Zone.ID
		u.Confidence = result.BestConfidence
	}
	if result.SecondZone != nil {
		u.SecondZoneID = result.SecondZone.Zone.ID
		u.SecondConfidence = result.SecondConfidence
	}
	telemetry.UncertainEmitted.WithLabelValues().Inc()
	if err := e.sinks.WriteUncertain(u); err != nil {
		log.Printf("sinks.WriteUncertain: %v", err)
	}
	if e.broadcast != nil {
		e.broadcast.BroadcastUncertain(u)
	}
}

func (e *Engine) maybeCleanup(now time.Time) {
	result := e.linker.MaybeCleanup(now)
	if result == nil {
		return
	}
	for _, sessionID := range result.SessionIDs {
		e.debounce.Remove(sessionID)
	}
	for _, deviceID := range result.DeviceIDs {
		e.windows.Remove(deviceID)
	}
}

// recordLink persists a device's re-identification into a pre-existing
// session to the run's observable error/audit stream (rather than a
// debug-only log line) so session linking can be reconstructed after the
// fact, per the live-run boundary scenario where a link must be recorded.
func (e *Engine) recordLink(deviceID, sessionID string) {
	telemetry.SessionsLinked.WithLabelValues().Inc()
	rec := domain.ErrorRecord{
		TS:    time.Now(),
		Where: "linker.Resolve",
		Error: "device linked to existing session",
		Extra: map[string]any{"phone_id": deviceID, "session_id": sessionID},
	}
	if err := e.sinks.WriteError(rec); err != nil {
		log.Printf("failed to persist link record: %v", err)
	}
}

func (e *Engine) writeError(ctx context.Context, where string, err error, extra map[string]any) {
	_ = ctx
	rec := domain.ErrorRecord{TS: time.Now(), Where: where, Error: err.Error(), Extra: extra}
	if writeErr := e.sinks.WriteError(rec); writeErr != nil {
		log.Printf("failed to persist error record: %v (original: %s: %v)", writeErr, where, err)
	}
}
