package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/rgbloop/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf))

	a.Info("send",
		ports.Int("value", 114),
		ports.String("byte", "0x72"),
		ports.Uint64("seq", 7),
		ports.Duration("interval", time.Second),
		ports.Bool("pass_end", true),
		ports.Err(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if got["message"] != "send" {
		t.Errorf("message = %v, want send", got["message"])
	}
	if got["level"] != "info" {
		t.Errorf("level = %v, want info", got["level"])
	}
	if got["value"] != float64(114) {
		t.Errorf("value = %v, want 114", got["value"])
	}
	if got["byte"] != "0x72" {
		t.Errorf("byte = %v, want 0x72", got["byte"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v, want boom", got["error"])
	}
	if got["pass_end"] != true {
		t.Errorf("pass_end = %v, want true", got["pass_end"])
	}
}

func TestZerologAdapter_DisabledLevel(t *testing.T) {
	var buf bytes.Buffer
	a := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	a.Debug("hidden", ports.Int("n", 1))
	a.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output below warn, got %q", buf.String())
	}

	a.Warn("shown")
	if buf.Len() == 0 {
		t.Error("expected warn output")
	}
}
