package logging

import (
	"testing"

	"github.com/inkwell/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLBeforeInitIsNop(t *testing.T) {
	Set(nil)
	if L() == nil {
		t.Fatalf("expected non-nil fallback logger")
	}
}

func TestInitParsesLevel(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	l, err := Init(config.LogConfig{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be enabled")
	}
}

func TestInitFallsBackOnUnknownLevel(t *testing.T) {
	t.Cleanup(func() { Set(nil) })

	l, err := Init(config.LogConfig{Level: "loud", Format: "text"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info fallback level")
	}
}

func TestComponentAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(nil) })

	Component("views").Info("tracked")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["component"]; got != "views" {
		t.Fatalf("expected component=views, got %v", got)
	}
}
