package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	l.Debug("not shown")
	l.Info("not shown either")
	l.Warn("warned")
	l.Error("errored")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Errorf("below-threshold lines leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] warned") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] errored") {
		t.Errorf("missing error line: %q", out)
	}
}

func TestKeyValueArgs(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	l.Info("client connected", "client", 3, "fd", 17)

	out := buf.String()
	if !strings.Contains(out, "client=3") || !strings.Contains(out, "fd=17") {
		t.Errorf("key-value args not formatted: %q", out)
	}
}

func TestPrintfStyle(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	l.Warnf("dropping event object=%d opcode=%d", 4, 99)

	if !strings.Contains(buf.String(), "dropping event object=4 opcode=99") {
		t.Errorf("printf formatting wrong: %q", buf.String())
	}
}

func TestWithScope(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: LevelDebug, Output: &buf})
	scoped := l.WithScope("client 3")

	scoped.Info("bound global", "iface", "wl_compositor")

	out := buf.String()
	if !strings.Contains(out, "[client 3]") {
		t.Errorf("scope prefix missing: %q", out)
	}
	if !strings.Contains(out, "iface=wl_compositor") {
		t.Errorf("args missing from scoped line: %q", out)
	}
}

func TestWaylandDebugLowersDefaultLevel(t *testing.T) {
	t.Setenv("WAYLAND_DEBUG", "1")
	cfg := DefaultConfig()
	if cfg.Level != LevelDebug {
		t.Errorf("WAYLAND_DEBUG=1 config level = %v, want debug", cfg.Level)
	}

	t.Setenv("WAYLAND_DEBUG", "")
	cfg = DefaultConfig()
	if cfg.Level != LevelInfo {
		t.Errorf("default config level = %v, want info", cfg.Level)
	}
}

func TestNilConfigUsesDefaults(t *testing.T) {
	if NewLogger(nil) == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
}

func TestSetDefault(t *testing.T) {
	var buf bytes.Buffer
	old := Default()
	defer SetDefault(old)

	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	Info("through package default")

	if !strings.Contains(buf.String(), "through package default") {
		t.Errorf("package-level helper bypassed the default logger: %q", buf.String())
	}
}
