// Package fingerprint implements the Fingerprint Loader: the "latest
// created_ts per zone_id wins" query over the calibration database,
// grounded on original_source's load_calibration().
package fingerprint

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
	"gorm.io/gorm"
)

// RecordModel is the GORM model for one completed collector run. Vectors
// are stored as a JSON blob: a calibration record's vector count is small
// and is always read back whole, never filtered per-vector in SQL.
type RecordModel struct {
	ID               uint `gorm:"primaryKey"`
	ZoneID           int  `gorm:"index"`
	X                float64
	Y                float64
	CreatedTS        float64 `gorm:"index"`
	MaxSamplesPerPi  int
	SyncWindowSec    float64
	MinPisForVector  int
	VectorsCollected int
	VectorType       string
	Timebase         string
	VectorsJSON      string
}

// Store persists calibration records and loads the current fingerprint set.
type Store struct {
	db *gorm.DB
}

// NewStore migrates the calibration schema on db and returns a Store bound
// to it. db is shared with the rest of internal/adapters/storage.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RecordModel{}); err != nil {
		return nil, err
	}
	db.Exec("CREATE INDEX IF NOT EXISTS idx_calibration_zone_created ON record_models(zone_id, created_ts)")
	return &Store{db: db}, nil
}

// SaveCalibration persists one completed collector run.
func (s *Store) SaveCalibration(ctx context.Context, rec domain.CalibrationRecord) error {
	vecJSON, err := json.Marshal(rec.Vectors)
	if err != nil {
		return err
	}

	model := RecordModel{
		ZoneID:           rec.ZoneID,
		X:                rec.X,
		Y:                rec.Y,
		CreatedTS:        rec.CreatedTS,
		MaxSamplesPerPi:  rec.MaxSamplesPerPi,
		SyncWindowSec:    rec.SyncWindowSec,
		MinPisForVector:  rec.MinPisForVector,
		VectorsCollected: rec.VectorsCollected,
		VectorType:       rec.VectorType,
		Timebase:         rec.Timebase,
		VectorsJSON:      string(vecJSON),
	}

	return s.db.WithContext(ctx).Create(&model).Error
}

// LoadFingerprints returns one Fingerprint per zone_id, keeping only the
// most recently created calibration record when a zone has several.
func (s *Store) LoadFingerprints(ctx context.Context) ([]domain.Fingerprint, error) {
	var models []RecordModel
	if err := s.db.WithContext(ctx).Order("zone_id asc, created_ts desc").Find(&models).Error; err != nil {
		return nil, err
	}

	latestByZone := make(map[int]RecordModel, len(models))
	for _, m := range models {
		if existing, ok := latestByZone[m.ZoneID]; !ok || m.CreatedTS > existing.CreatedTS {
			latestByZone[m.ZoneID] = m
		}
	}

	zoneIDs := make([]int, 0, len(latestByZone))
	for zoneID := range latestByZone {
		zoneIDs = append(zoneIDs, zoneID)
	}
	sort.Ints(zoneIDs)

	fps := make([]domain.Fingerprint, 0, len(zoneIDs))
	for _, zoneID := range zoneIDs {
		m := latestByZone[zoneID]
		var vectors []domain.NormalizedVector
		if err := json.Unmarshal([]byte(m.VectorsJSON), &vectors); err != nil {
			return nil, err
		}
		fps = append(fps, domain.Fingerprint{
			ZoneID:    m.ZoneID,
			X:         m.X,
			Y:         m.Y,
			CreatedTS: m.CreatedTS,
			Vectors:   vectors,
		})
	}
	return fps, nil
}

// Close is a no-op: the connection is owned by internal/adapters/storage.
func (s *Store) Close() error { return nil }

var _ ports.FingerprintStore = (*Store)(nil)
