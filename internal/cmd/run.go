package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/michaelliao/usb-keyboard-to-serial/bridge"
	"github.com/michaelliao/usb-keyboard-to-serial/hidhost"
	"github.com/michaelliao/usb-keyboard-to-serial/internal/log"
	"github.com/michaelliao/usb-keyboard-to-serial/internal/util"
	"github.com/michaelliao/usb-keyboard-to-serial/uart"
)

// Run is the bridge command: attach to a HID keyboard and forward decoded
// keystrokes to the serial port with key repeat.
type Run struct {
	Bridge bridge.Config  `embed:""`
	Serial uart.Config    `embed:"" prefix:"serial."`
	HID    hidhost.Config `embed:"" prefix:"hid."`
}

// Run is called by kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := r.start(ctx, logger, rawLogger)
	if err != nil && util.IsRunFromGUI() {
		fmt.Println("Press any key to exit...")
		b := make([]byte, 1)
		_, _ = os.Stdin.Read(b)
	}
	return err
}

func (r *Run) start(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("starting USB keyboard to serial bridge")

	var out uart.Writer
	if r.Serial.Port == "" {
		logger.Warn("no serial port configured, decoded bytes will be discarded",
			"hint", "set --serial.port or KB2SERIAL_SERIAL_PORT")
		out = uart.Discard{}
	} else {
		port, err := uart.Open(r.Serial)
		if err != nil {
			return err
		}
		out = port
		logger.Info("serial port open", "port", r.Serial.Port, "baud", r.Serial.Baud)
	}
	defer func() { _ = out.Close() }()

	b, err := bridge.New(r.Bridge, out, logger, rawLogger)
	if err != nil {
		return fmt.Errorf("bridge configuration: %w", err)
	}

	bridgeErr := make(chan error, 1)
	go func() { bridgeErr <- b.Run(ctx) }()

	select {
	case err := <-bridgeErr:
		return err
	case <-b.Ready():
	}

	reader := hidhost.New(r.HID, logger)
	hidErr := make(chan error, 1)
	go func() { hidErr <- reader.Run(ctx, b.HandleReport) }()

	logger.Info("bridge ready, waiting for keyboard input")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-hidErr:
	case runErr = <-bridgeErr:
	}

	stats := b.Stats()
	logger.Info("bridge stopped",
		"reportsAccepted", stats.ReportsAccepted,
		"reportsRejected", stats.ReportsRejected,
		"bytesEmitted", stats.BytesEmitted,
		"writeFailures", stats.WriteFailures)
	return runErr
}
