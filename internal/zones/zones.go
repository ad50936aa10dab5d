// Package zones loads the static zone geometry table (zone_id,x,y) from a
// CSV file. Zone geometry is an external collaborator authored once by an
// operator, not a live-queried provider.
package zones

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

// CSVStore implements ports.ZoneStore by reading a fixed path once per call.
type CSVStore struct {
	path string
}

// NewCSVStore builds a store reading zone geometry from path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// LoadZones parses the CSV at the store's path. The file must have a header
// row and columns zone_id,x,y in any order.
func (s *CSVStore) LoadZones(ctx context.Context) ([]domain.Zone, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("zones: open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("zones: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range []string{"zone_id", "x", "y"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("zones: missing column %q", required)
		}
	}

	var out []domain.Zone
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("zones: read row: %w", err)
		}

		zoneID, err := strconv.Atoi(row[col["zone_id"]])
		if err != nil {
			return nil, fmt.Errorf("zones: parse zone_id %q: %w", row[col["zone_id"]], err)
		}
		x, err := strconv.ParseFloat(row[col["x"]], 64)
		if err != nil {
			return nil, fmt.Errorf("zones: parse x %q: %w", row[col["x"]], err)
		}
		y, err := strconv.ParseFloat(row[col["y"]], 64)
		if err != nil {
			return nil, fmt.Errorf("zones: parse y %q: %w", row[col["y"]], err)
		}

		out = append(out, domain.Zone{ID: zoneID, X: x, Y: y})
	}

	return out, nil
}

var _ ports.ZoneStore = (*CSVStore)(nil)
