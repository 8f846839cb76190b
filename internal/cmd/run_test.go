package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/Alia5/joymouse/internal/log"
	"github.com/Alia5/joymouse/translator"
)

func writeInput(t *testing.T, lines ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "telemetry.txt")
	require.NoError(t, os.WriteFile(p, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return p
}

func TestStartReplaysIntoLogSink(t *testing.T) {
	var logs, raw bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := &Run{
		Input:      writeInput(t, "PRESS", "LEFT", "noise", "-512,512"),
		Sink:       "log",
		Translator: translator.DefaultConfig(),
	}
	require.NoError(t, r.Start(context.Background(), logger, log.NewRaw(&raw)))

	out := logs.String()
	assert.Contains(t, out, "msg=click button=right")
	assert.Contains(t, out, "msg=move dx=-8 dy=0")
	assert.Contains(t, out, "msg=move dx=-15 dy=15")
	assert.Contains(t, out, "stats.lines=4")
	assert.Contains(t, out, "stats.ignored=1")
	assert.Contains(t, raw.String(), `RX 5 bytes: "PRESS"`)
}

func TestStartErrors(t *testing.T) {
	bad := translator.DefaultConfig()
	bad.MaxScale = 0

	tests := []struct {
		name    string
		run     Run
		wantErr string
	}{
		{
			name:    "invalid translator",
			run:     Run{Input: "-", Sink: "log", Translator: bad},
			wantErr: "invalid translator config: max scale must be positive",
		},
		{
			name:    "missing input file",
			run:     Run{Input: filepath.Join(os.TempDir(), "does-not-exist.txt"), Sink: "log", Translator: translator.DefaultConfig()},
			wantErr: "open input",
		},
		{
			name:    "missing serial port",
			run:     Run{Sink: "log", Translator: translator.DefaultConfig()},
			wantErr: "serial port is not set",
		},
		{
			name:    "unknown sink",
			run:     Run{Input: "-", Sink: "hid", Translator: translator.DefaultConfig()},
			wantErr: `unknown sink "hid"`,
		},
		{
			name: "missing key file",
			run: Run{
				Input:      "-",
				Sink:       "viiper",
				Translator: translator.DefaultConfig(),
				Viiper:     ViiperConfig{KeyFile: filepath.Join(os.TempDir(), "no-such-viiper.key.txt")},
			},
			wantErr: "read VIIPER key file",
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Start(context.Background(), logger, nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestPorts(t *testing.T) {
	tests := []struct {
		name    string
		ports   []*enumerator.PortDetails
		err     error
		want    []string
		wantErr string
	}{
		{
			name: "usb and native ports",
			ports: []*enumerator.PortDetails{
				{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043", SerialNumber: "75830333"},
				{Name: "/dev/ttyS0"},
			},
			want: []string{"PORT", "/dev/ttyACM0  2341:0043  75830333", "/dev/ttyS0    -          -"},
		},
		{name: "none", want: []string{"No serial ports found"}},
		{name: "enumeration fails", err: errors.New("permission denied"), wantErr: "list serial ports: permission denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &Ports{out: &out, list: func() ([]*enumerator.PortDetails, error) { return tt.ports, tt.err }}
			err := p.Run()
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}
