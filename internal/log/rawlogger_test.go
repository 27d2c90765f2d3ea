package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/michaelliao/usb-keyboard-to-serial/internal/log"
)

func TestRawLoggerDirections(t *testing.T) {
	var buf bytes.Buffer
	l := log.NewRaw(&buf)

	l.Log(true, []byte{0x02, 0x00, 0x04})
	l.Log(false, []byte{0x41})

	out := buf.String()
	assert.Contains(t, out, "KEYB-> 3 bytes, hex: 02 00 04")
	assert.Contains(t, out, "UART<- 1 bytes, hex: 41")
}

func TestRawLoggerNilWriterAndEmptyData(t *testing.T) {
	l := log.NewRaw(nil)
	assert.NotPanics(t, func() { l.Log(true, []byte{0x01}) })

	var buf bytes.Buffer
	l = log.NewRaw(&buf)
	l.Log(false, nil)
	assert.Zero(t, buf.Len())
}
