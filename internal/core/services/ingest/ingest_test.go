package ingest

import (
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRSSI_SignedPassthrough(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	v, err := a.NormalizeRSSI(-60)
	require.NoError(t, err)
	assert.Equal(t, -60, v)
}

func TestNormalizeRSSI_UnsignedRemap(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	// 256-60 = 196, should remap to -60
	v, err := a.NormalizeRSSI(196)
	require.NoError(t, err)
	assert.Equal(t, -60, v)
}

func TestNormalizeRSSI_Rejected(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	_, err := a.NormalizeRSSI(0)
	assert.ErrorIs(t, err, ErrOutOfBand)
}

func TestHashMAC_PassthroughWhenDisabled(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	assert.Equal(t, "aabbccddeeff", a.HashMAC("AA:BB:CC:DD:EE:FF"))
}

func TestHashMAC_DeterministicWhenEnabled(t *testing.T) {
	a := NewAdapter(-95, -20, true, "pepper")
	h1 := a.HashMAC("AA:BB:CC:DD:EE:FF")
	h2 := a.HashMAC("aa:bb:cc:dd:ee:ff")
	assert.Len(t, h1, 16)
	assert.Equal(t, h1, h2)
}

func TestDecode_DropsEmptyMAC(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	_, err := a.Decode(ports.RawMessage{SnifferID: "s1", RSSI: -60}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyMAC)
}

func TestDecode_StampsReceiveTime(t *testing.T) {
	a := NewAdapter(-95, -20, false, "")
	now := time.Now()
	sample, err := a.Decode(ports.RawMessage{SnifferID: "s1", MAC: "AA:BB:CC:DD:EE:FF", RSSI: -60}, now)
	require.NoError(t, err)
	assert.Equal(t, now, sample.RxTS)
	assert.Equal(t, "aabbccddeeff", sample.DeviceID)
}
