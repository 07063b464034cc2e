package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("instance-guard", "json", slog.LevelInfo, &buf)

	logger.With("world", "m1").Info("world locked", "timeout", 60)
	logger.Debug("hidden")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	testutil.AssertEqual(t, "service", rec["service"], any("instance-guard"))
	testutil.AssertEqual(t, "world", rec["world"], any("m1"))
	testutil.AssertEqual(t, "msg", rec["msg"], any("world locked"))
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	Setup("instance-guard", "text", slog.LevelDebug, &buf).Debug("tick")

	out := buf.String()
	if !strings.Contains(out, "service=instance-guard") || !strings.Contains(out, "msg=tick") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    slog.Level
		expErr string
	}{
		"empty":   {in: "", exp: slog.LevelInfo},
		"debug":   {in: "DEBUG", exp: slog.LevelDebug},
		"warning": {in: "warning", exp: slog.LevelWarn},
		"error":   {in: "error", exp: slog.LevelError},
		"unknown": {in: "loud", expErr: `unknown log level "loud"`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "level", got, tt.exp)
		})
	}
}
