package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithSessionID(ctx, "cs_test_1")

	log.Error(ctx, "boom", errors.New("boom"))

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "req-123" {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if entry["session_id"] != "cs_test_1" {
		t.Fatalf("expected session_id; entry=%s", buf.String())
	}
	if entry["error"] != "boom" {
		t.Fatalf("expected error field; entry=%s", buf.String())
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatalf("expected stack on error entries")
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	log.Warn(context.Background(), "plain")
	if strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("stack should be omitted when warn stack disabled: %s", buf.String())
	}

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf, WarnStack: true})
	log.Warn(context.Background(), "stacked")
	if !strings.Contains(buf.String(), `"stack"`) {
		t.Fatalf("expected stack when warn stack enabled: %s", buf.String())
	}
}

func TestWithEventAddsIdentifiers(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	ctx := log.WithEvent(context.Background(), "evt_1", "checkout.session.completed")
	log.Info(ctx, "handled")

	entry := decodeEntry(t, buf)
	if entry["event_id"] != "evt_1" || entry["event_type"] != "checkout.session.completed" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service name, got %v", entry["service"])
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info for empty level, got %v", lvl)
	}
	if lvl := ParseLevel("nope"); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info for invalid level, got %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn, got %v", lvl)
	}
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log entry: %v (%s)", err, buf.String())
	}
	return entry
}

func TestEmailFieldsAreMasked(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	ctx := log.WithFields(context.Background(), map[string]any{
		"email":    "whiskers@bananameow.test",
		"order_id": "ord-1",
	})
	log.Info(ctx, "receipt queued")

	entry := decodeEntry(t, buf)
	if entry["email"] != "w***@bananameow.test" {
		t.Fatalf("expected masked email, got %v", entry["email"])
	}
	if entry["order_id"] != "ord-1" {
		t.Fatalf("unexpected order_id %v", entry["order_id"])
	}
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"a@b.c":         "a***@b.c",
		"not-an-email":  "***",
		"@b.c":          "***",
		" Zoë@cats.io ": "Z***@cats.io",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDebugRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level: %s", buf.String())
	}
	log = New(Options{ServiceName: "test", Output: buf, Format: "json", Level: zerolog.DebugLevel})
	log.Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected debug entry: %s", buf.String())
	}
}
