package hidhost

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	hid "github.com/sstallion/go-hid"
)

func testReader(cfg Config) *Reader {
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIsKeyboard(t *testing.T) {
	assert.True(t, isKeyboard(&hid.DeviceInfo{UsagePage: 0x01, Usage: 0x06}))
	assert.False(t, isKeyboard(&hid.DeviceInfo{UsagePage: 0x01, Usage: 0x02}), "mouse")
	assert.False(t, isKeyboard(&hid.DeviceInfo{UsagePage: 0x0c, Usage: 0x01}), "consumer control")
	assert.False(t, isKeyboard(&hid.DeviceInfo{}))
}

func TestMatches(t *testing.T) {
	keyboard := &hid.DeviceInfo{VendorID: 0x046d, ProductID: 0xc31c, UsagePage: 0x01, Usage: 0x06}
	noUsage := &hid.DeviceInfo{VendorID: 0x046d, ProductID: 0xc31c}

	r := testReader(Config{})
	assert.True(t, r.matches(keyboard))
	assert.False(t, r.matches(noUsage), "without a vendor pin, usage data is required")

	r = testReader(Config{VendorID: 0x046d})
	assert.True(t, r.matches(keyboard))
	assert.True(t, r.matches(noUsage), "a vendor pin accepts devices with unset usage fields")
}
