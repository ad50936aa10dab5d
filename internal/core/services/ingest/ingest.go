// Package ingest turns raw broker messages into the engine's internal
// RSSI sample shape: bounds-checking, MAC normalization, and the
// optional privacy hash.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/neuralsense/fusion/internal/core/ports"
)

var (
	// ErrOutOfBand is returned when an RSSI value cannot be mapped into
	// the configured sanity band by any known encoding.
	ErrOutOfBand = errors.New("ingest: rssi out of band")
	// ErrEmptyMAC is returned when the message carries no device identifier.
	ErrEmptyMAC = errors.New("ingest: empty mac")
)

// Adapter decodes raw broker messages into RSSI samples. It stamps each
// message with local receive time as the authoritative rx_ts; the
// publisher's ts field is informational only, tolerating clock skew
// between sniffers.
type Adapter struct {
	rssiMin, rssiMax int
	hashEnabled      bool
	salt             string
}

// NewAdapter builds an ingest adapter bound to the configured sanity band
// and privacy-hash setting.
func NewAdapter(rssiMin, rssiMax int, hashEnabled bool, salt string) *Adapter {
	return &Adapter{rssiMin: rssiMin, rssiMax: rssiMax, hashEnabled: hashEnabled, salt: salt}
}

// Decode converts a raw message into an RSSI sample, stamping it with
// rxTime as rx_ts. Returns a structured error, never a panic, on any
// malformed field: the caller drops the message and logs the error.
func (a *Adapter) Decode(msg ports.RawMessage, rxTime time.Time) (domain.RSSISample, error) {
	mac := strings.TrimSpace(msg.MAC)
	if mac == "" {
		return domain.RSSISample{}, ErrEmptyMAC
	}

	rssi, err := a.NormalizeRSSI(msg.RSSI)
	if err != nil {
		return domain.RSSISample{}, fmt.Errorf("sniffer %s: %w", msg.SnifferID, err)
	}

	deviceID := a.HashMAC(mac)

	return domain.RSSISample{
		RxTS:      rxTime,
		SnifferID: msg.SnifferID,
		DeviceID:  deviceID,
		RSSI:      rssi,
	}, nil
}

// NormalizeRSSI passes signed dBm values through unchanged when already
// in band; remaps unsigned 8-bit encodings (128..255) to their signed
// dBm equivalent (v-256); rejects anything else.
func (a *Adapter) NormalizeRSSI(v int) (int, error) {
	if v >= a.rssiMin && v <= a.rssiMax {
		return v, nil
	}
	if v >= 128 && v <= 255 {
		remapped := v - 256
		if remapped >= a.rssiMin && remapped <= a.rssiMax {
			return remapped, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", ErrOutOfBand, v)
}

// HashMAC normalizes a MAC (lowercase, separators stripped) and, if the
// privacy hash is enabled, returns sha256(salt||mac) truncated to 16 hex
// characters. Otherwise it returns the normalized MAC unchanged.
func (a *Adapter) HashMAC(mac string) string {
	normalized := normalizeMAC(mac)
	if !a.hashEnabled {
		return normalized
	}
	sum := sha256.Sum256([]byte(a.salt + normalized))
	return hex.EncodeToString(sum[:])[:16]
}

func normalizeMAC(mac string) string {
	mac = strings.ToLower(strings.TrimSpace(mac))
	mac = strings.NewReplacer(":", "", "-", "").Replace(mac)
	return mac
}
