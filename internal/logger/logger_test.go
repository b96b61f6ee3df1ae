package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObjFieldsCarryEventAndSortedKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	log.WarnObj("source fetch failed", "fetch_error", map[string]any{
		"source": "reuters",
		"error":  "timeout",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["event"] != "fetch_error" {
		t.Errorf("event = %v", ctx["event"])
	}
	if ctx["source"] != "reuters" || ctx["error"] != "timeout" {
		t.Errorf("unexpected fields: %v", ctx)
	}
	fields := entries[0].Context
	if fields[1].Key != "error" || fields[2].Key != "source" {
		t.Errorf("fields not sorted: %v", fields)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestEnsure(t *testing.T) {
	if _, ok := Ensure(nil).(NopLogger); !ok {
		t.Fatal("Ensure(nil) should return NopLogger")
	}
}
