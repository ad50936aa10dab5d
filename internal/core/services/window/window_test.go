package window

import (
	"testing"
	"time"

	"github.com/neuralsense/fusion/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestAppend_PrunesStaleEntries(t *testing.T) {
	r := NewRegistry(5 * time.Second)
	base := time.Now()

	r.Append(domain.RSSISample{RxTS: base, SnifferID: "s1", DeviceID: "dev", RSSI: -60})
	r.Append(domain.RSSISample{RxTS: base.Add(6 * time.Second), SnifferID: "s2", DeviceID: "dev", RSSI: -65})

	buf := r.Buffer("dev")
	assert.Len(t, buf, 1)
	assert.Equal(t, "s2", buf[0].SnifferID)
}

func TestRemove_ClearsBuffer(t *testing.T) {
	r := NewRegistry(5 * time.Second)
	r.Append(domain.RSSISample{RxTS: time.Now(), SnifferID: "s1", DeviceID: "dev", RSSI: -60})
	r.Remove("dev")
	assert.Nil(t, r.Buffer("dev"))
}

func TestKnownDevices(t *testing.T) {
	r := NewRegistry(5 * time.Second)
	now := time.Now()
	r.Append(domain.RSSISample{RxTS: now, SnifferID: "s1", DeviceID: "a", RSSI: -60})
	r.Append(domain.RSSISample{RxTS: now, SnifferID: "s1", DeviceID: "b", RSSI: -60})
	assert.ElementsMatch(t, []string{"a", "b"}, r.KnownDevices())
}
