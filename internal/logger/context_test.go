package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestContextHandlerEnrichment(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := newContextHandler(slog.NewJSONHandler(buf, nil))
	log := slog.New(handler).With("component", "tg")

	ctx := WithRID(context.Background(), BuildRID(42, 7, 9))
	ctx = WithUpdateMeta(ctx, 42, 9, 7)

	log.LogAttrs(ctx, slog.LevelInfo, "update.received", slog.String("status", "ok"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if rec["rid"] != "42:7:9" {
		t.Fatalf("rid = %v, want 42:7:9", rec["rid"])
	}
	if rec["component"] != "tg" {
		t.Fatalf("component = %v, want tg", rec["component"])
	}
	if rec["user_id"] != float64(9) || rec["chat_id"] != float64(7) {
		t.Fatalf("unexpected meta: %v", rec)
	}
}

func TestSanitizeLimit(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"a\x00b\x1fc", 10, "abc"},
		{"tab\tok\nline", 20, "tab\tok\nline"},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := SanitizeLimit(tt.in, tt.max); got != tt.want {
			t.Fatalf("SanitizeLimit(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
