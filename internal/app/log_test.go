package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestShopHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "20240615T143045Z",
			level:   slog.LevelInfo,
			message: "product added",
			want:    "2024-06-15T14:30:45Z\tINFO\t20240615T143045Z\tproduct added\n",
		},
		{
			name:    "debug level",
			opID:    "op-456",
			level:   slog.LevelDebug,
			message: "initialized key",
			want:    "2024-06-15T14:30:45Z\tDEBUG\top-456\tinitialized key\n",
		},
		{
			name:    "with record attrs",
			opID:    "op-789",
			level:   slog.LevelInfo,
			message: "purchase saved",
			attrs:   []slog.Attr{slog.String("store", "Atacadão"), slog.Int("items", 3)},
			want:    "2024-06-15T14:30:45Z\tINFO\top-789\tpurchase saved\tstore=Atacadão\titems=3\n",
		},
		{
			name:    "whitespace values are quoted",
			opID:    "op-1",
			level:   slog.LevelWarn,
			message: "corrupt stored value, treating as empty",
			attrs:   []slog.Attr{slog.String("error", "unexpected end of JSON input")},
			want:    "2024-06-15T14:30:45Z\tWARN\top-1\tcorrupt stored value, treating as empty\terror=\"unexpected end of JSON input\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &shopHandler{w: &buf, opID: tt.opID, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestShopHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &shopHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "kv")}).(*shopHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "write", 0)
	r.AddAttrs(slog.String("key", "products"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=kv") {
		t.Errorf("expected pre-set attr component=kv, got: %q", got)
	}
	if !strings.Contains(got, "key=products") {
		t.Errorf("expected record attr key=products, got: %q", got)
	}
}

func TestShopHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &shopHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*shopHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestShopHandler_Enabled(t *testing.T) {
	h := &shopHandler{level: slog.LevelWarn}

	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestFanoutHandler(t *testing.T) {
	var all, warn bytes.Buffer
	logger := slog.New(fanoutHandler{
		&shopHandler{w: &all, opID: "op", level: slog.LevelDebug},
		&shopHandler{w: &warn, opID: "op", level: slog.LevelWarn},
	})

	logger.Info("quiet")
	logger.Warn("loud", "key", "settings")

	if !strings.Contains(all.String(), "quiet") || !strings.Contains(all.String(), "loud") {
		t.Errorf("debug sink = %q, want both records", all.String())
	}
	if strings.Contains(warn.String(), "quiet") {
		t.Errorf("warn sink received an info record: %q", warn.String())
	}
	if !strings.Contains(warn.String(), "loud\tkey=settings") {
		t.Errorf("warn sink = %q, want the warning", warn.String())
	}
}

func TestNewLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	logger, f, err := newLogger(dir, "test-op")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	logger.Debug("written to file only", "n", 1)

	data, err := os.ReadFile(filepath.Join(dir, "shoplist.log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "DEBUG\ttest-op\twritten to file only\tn=1") {
		t.Errorf("log file = %q", data)
	}
}
