// Package hidhost attaches to a USB HID keyboard through hidapi and delivers
// its raw input reports to a callback. It keeps scanning until a keyboard
// shows up and reattaches after a detach, so the bridge survives unplugging.
package hidhost

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hid "github.com/sstallion/go-hid"
)

// HID usage identifying a keyboard application collection.
const (
	usagePageGenericDesktop = 0x01
	usageKeyboard           = 0x06
)

// Boot-protocol keyboard input reports are 8 bytes.
const reportBufSize = 8

// Config represents the keyboard discovery configuration.
type Config struct {
	VendorID     uint16        `help:"Only attach keyboards with this USB vendor ID (0 = any)" env:"KB2SERIAL_HID_VENDOR_ID"`
	ProductID    uint16        `help:"Only attach keyboards with this USB product ID (0 = any)" env:"KB2SERIAL_HID_PRODUCT_ID"`
	ScanInterval time.Duration `help:"Interval between device scans while no keyboard is attached" default:"1s" env:"KB2SERIAL_HID_SCAN_INTERVAL"`
	ReadTimeout  time.Duration `help:"Poll timeout for a single report read" default:"250ms" env:"KB2SERIAL_HID_READ_TIMEOUT"`
}

// ReportFunc receives one raw input report. The slice is owned by the callee.
type ReportFunc func(report []byte)

// Reader finds a HID keyboard and pumps its input reports.
type Reader struct {
	cfg Config
	log *slog.Logger
}

// New returns a Reader with the given discovery configuration.
func New(cfg Config, logger *slog.Logger) *Reader {
	return &Reader{cfg: cfg, log: logger}
}

// Run scans for a keyboard, reads its reports and hands each one to deliver,
// until ctx is cancelled. Device errors cause a reattach cycle, never a
// process failure.
func (r *Reader) Run(ctx context.Context, deliver ReportFunc) error {
	if err := hid.Init(); err != nil {
		return fmt.Errorf("hidapi init: %w", err)
	}
	defer hid.Exit()

	for {
		info := r.findKeyboard()
		if info == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.cfg.ScanInterval):
			}
			continue
		}

		dev, err := hid.OpenPath(info.Path)
		if err != nil {
			r.log.Warn("failed to open keyboard", "path", info.Path, "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.cfg.ScanInterval):
			}
			continue
		}

		r.log.Info("keyboard attached",
			"product", info.ProductStr,
			"vendorId", fmt.Sprintf("0x%04x", info.VendorID),
			"productId", fmt.Sprintf("0x%04x", info.ProductID),
			"path", info.Path)

		err = r.readLoop(ctx, dev, deliver)
		_ = dev.Close()
		if ctx.Err() != nil {
			return nil
		}
		r.log.Warn("keyboard detached", "path", info.Path, "error", err)
	}
}

// findKeyboard returns the first enumerated device matching the filter, or nil.
func (r *Reader) findKeyboard() *hid.DeviceInfo {
	var found *hid.DeviceInfo
	_ = hid.Enumerate(r.cfg.VendorID, r.cfg.ProductID, func(info *hid.DeviceInfo) error {
		if found == nil && r.matches(info) {
			cp := *info
			found = &cp
		}
		return nil
	})
	return found
}

func (r *Reader) matches(info *hid.DeviceInfo) bool {
	if isKeyboard(info) {
		return true
	}
	// Not every platform reports usage data for hidraw nodes; trust an
	// explicit vendor pin when the usage fields are unset.
	return r.cfg.VendorID != 0 && info.UsagePage == 0 && info.Usage == 0
}

func isKeyboard(info *hid.DeviceInfo) bool {
	return info.UsagePage == usagePageGenericDesktop && info.Usage == usageKeyboard
}

// readLoop reads reports until ctx is cancelled or the device errors out.
// Reads use a poll timeout so cancellation is noticed promptly.
func (r *Reader) readLoop(ctx context.Context, dev *hid.Device, deliver ReportFunc) error {
	buf := make([]byte, reportBufSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := dev.ReadWithTimeout(buf, r.cfg.ReadTimeout)
		if err != nil {
			return err
		}
		if n == 0 {
			// poll timeout
			continue
		}
		report := make([]byte, n)
		copy(report, buf[:n])
		deliver(report)
	}
}
