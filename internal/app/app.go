// Package app wires every adapter and service into one running
// instance: config, storage, the fusion engine, the upload sidecar, and
// the operator control plane. cmd/neuralsense-live builds an Application
// and calls Run; cmd/neuralsense-calibrate is an HTTP client of the
// running control plane and does not use this package.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/neuralsense/fusion/internal/adapters/broker"
	"github.com/neuralsense/fusion/internal/adapters/fingerprint"
	"github.com/neuralsense/fusion/internal/adapters/persistence"
	"github.com/neuralsense/fusion/internal/adapters/reporting"
	"github.com/neuralsense/fusion/internal/adapters/storage"
	"github.com/neuralsense/fusion/internal/adapters/uploadclient"
	"github.com/neuralsense/fusion/internal/adapters/web/server"
	"github.com/neuralsense/fusion/internal/config"
	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/neuralsense/fusion/internal/core/services/audit"
	"github.com/neuralsense/fusion/internal/core/services/auth"
	"github.com/neuralsense/fusion/internal/core/services/calibration"
	"github.com/neuralsense/fusion/internal/core/services/engine"
	"github.com/neuralsense/fusion/internal/core/services/ingest"
	"github.com/neuralsense/fusion/internal/core/services/linker"
	"github.com/neuralsense/fusion/internal/core/services/scoring"
	"github.com/neuralsense/fusion/internal/core/services/uploader"
	"github.com/neuralsense/fusion/internal/core/services/window"
	"github.com/neuralsense/fusion/internal/telemetry"
	"github.com/neuralsense/fusion/internal/zones"
)

// Application bundles every long-lived component the live-mode binary
// needs to run its fusion pipeline and control plane side by side.
type Application struct {
	cfg *config.Config

	storage     *storage.SQLiteAdapter
	fingerprint *fingerprint.Store
	sink        ports.EventSink
	uploader    *uploader.Uploader
	broker      ports.Broker
	engine      *engine.Engine
	calib       *calibration.Session
	server      *server.Server

	shutdownTracer func(context.Context) error
}

// Bootstrap constructs every adapter and service from cfg, in dependency
// order, and wires them into one Application. It does not start any
// goroutine; call Run for that.
func Bootstrap(cfg *config.Config) (*Application, error) {
	telemetry.InitMetrics()

	shutdownTracer, err := telemetry.InitTracer()
	if err != nil {
		log.Printf("tracer init failed, continuing without tracing: %v", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	storageAdapter, err := storage.NewSQLiteAdapter(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	fingerprintStore, err := fingerprint.NewStore(storageAdapter.DB())
	if err != nil {
		return nil, fmt.Errorf("open fingerprint store: %w", err)
	}

	zoneStore := zones.NewCSVStore(cfg.ZonesCSV)
	zoneList, err := zoneStore.LoadZones(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}

	zoneModels, err := buildZoneModels(zoneList, fingerprintStore)
	if err != nil {
		log.Printf("zone fingerprints unavailable, starting with no calibrated zones: %v", err)
	}

	localSink, err := persistence.NewJSONLSink(cfg.EventDir)
	if err != nil {
		return nil, fmt.Errorf("open event sink: %w", err)
	}

	uploadClient := uploadclient.NewHTTPClient(cfg.UploadEndpoint)
	up := uploader.New(uploader.Config{
		QueueSize:  cfg.UploadQueueSize,
		BatchSize:  cfg.UploadBatchSize,
		Interval:   cfg.UploadInterval,
		MaxRetries: cfg.UploadMaxRetries,
	}, uploadClient, localSink)
	up.SetEnabled(cfg.UploadEndpoint != "")

	sink := newFanoutSink(localSink, up)

	ingestAdapter := ingest.NewAdapter(cfg.RSSIMinDBM, cfg.RSSIMaxDBM, cfg.MACHashEnabled, cfg.MACHashSalt)
	windows := window.NewRegistry(cfg.WindowSec)

	eng := engine.New(engine.Config{
		WindowSec:       cfg.WindowSec,
		PerSnifferFresh: cfg.PerSnifferFreshSec,
		MinSources:      cfg.MinSources,
		Scoring: scoring.Config{
			MatchDiffDBM:       cfg.MatchDiffDBM,
			MarginGate:         cfg.MarginGate,
			L1Weight:           cfg.L1Weight,
			RankWeight:         cfg.RankWeight,
			RankMatchThreshold: cfg.RankMatchThreshold,
		},
		Linker: linker.Config{
			StaleDeviceAge:       cfg.StaleMACSec,
			SessionRankThreshold: cfg.SessionRankThreshold,
			SessionMaxAge:        cfg.SessionMaxAgeSec,
			CleanupInterval:      cfg.SessionCleanupInterval,
		},
		ConfirmCount: cfg.TransitionConfirmCount,
		Debug:        cfg.Debug,
	}, ingestAdapter, windows, zoneModels, sink)

	calibSession := calibration.NewSession(calibration.Config{}, fingerprintStore)
	eng.SetCalibrationSession(calibSession)

	var brokerClient ports.Broker
	if cfg.MockMode {
		brokerClient = broker.NewMockBroker(nil, 1*time.Second)
	} else {
		brokerClient = broker.NewClient(broker.Config{
			URL:            cfg.WSBrokerURL,
			ReconnectDelay: 1 * time.Second,
			MaxReconnect:   30 * time.Second,
		})
	}

	authService := auth.NewAuthService(storageAdapter)
	auditService := audit.NewAuditService(storageAdapter)

	if err := seedAdmin(storageAdapter, cfg); err != nil {
		log.Printf("admin seed skipped: %v", err)
	}

	controlServer := server.NewServer(
		cfg.ControlAddr,
		authService,
		auditService,
		eng,
		zoneList,
		calibSession,
		fingerprintStore,
		reporting.NewPDFExporter(),
	)

	return &Application{
		cfg:            cfg,
		storage:        storageAdapter,
		fingerprint:    fingerprintStore,
		sink:           sink,
		uploader:       up,
		broker:         brokerClient,
		engine:         eng,
		calib:          calibSession,
		server:         controlServer,
		shutdownTracer: shutdownTracer,
	}, nil
}

// Run starts the broker read loop, upload sidecar, and control plane,
// and blocks until ctx is cancelled or a component fails fatally.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(shutdownCtx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}()
	defer a.storage.Close()
	defer a.fingerprint.Close()
	defer a.broker.Close()

	go a.uploader.Start(ctx)

	errCh := make(chan error, 2)

	go func() {
		errCh <- a.broker.Run(ctx, a.handleMessage)
	}()

	go func() {
		errCh <- a.server.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// handleMessage adapts ports.MessageHandler's float-seconds receive stamp,
// taken by the broker adapter when the frame arrived, into the engine's
// time.Time rx_ts.
func (a *Application) handleMessage(ctx context.Context, msg ports.RawMessage, rxTS float64) {
	a.engine.HandleMessage(ctx, msg, time.Unix(0, int64(rxTS*float64(time.Second))))
}

// buildZoneModels pairs each configured zone with its latest calibrated
// fingerprint and derived sniffer weights, skipping zones with no usable
// calibration yet.
func buildZoneModels(zoneList []domain.Zone, store ports.FingerprintStore) ([]scoring.ZoneModel, error) {
	fingerprints, err := store.LoadFingerprints(context.Background())
	if err != nil {
		return nil, err
	}

	byZone := make(map[int]domain.Fingerprint, len(fingerprints))
	for _, f := range fingerprints {
		byZone[f.ZoneID] = f
	}

	models := make([]scoring.ZoneModel, 0, len(zoneList))
	for _, z := range zoneList {
		fp, ok := byZone[z.ID]
		if !ok || !fp.Valid() {
			continue
		}
		models = append(models, scoring.ZoneModel{
			Zone:        z,
			Fingerprint: fp,
			Weights:     domain.ComputeWeights(fp),
		})
	}
	return models, nil
}

// seedAdmin provisions the configured control-plane admin account on
// first boot. ControlPasswordHash is already a bcrypt hash (operators
// generate it out of band), so this writes the repository directly
// rather than going through AuthService.CreateUser, which hashes its
// plaintext input a second time.
func seedAdmin(repo ports.UserRepository, cfg *config.Config) error {
	if cfg.ControlPasswordHash == "" {
		return fmt.Errorf("no CONTROL_PASSWORD_HASH configured")
	}
	if _, err := repo.GetByUsername(context.Background(), cfg.ControlUser); err == nil {
		return nil
	}
	return repo.Save(context.Background(), domain.User{
		ID:           cfg.ControlUser,
		Username:     cfg.ControlUser,
		PasswordHash: cfg.ControlPasswordHash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now(),
	})
}
