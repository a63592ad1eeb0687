package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.log")
	logger, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	logger.Named("test").Info("hello", zap.String("k", "v"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) || !strings.Contains(string(data), `"logger":"test"`) {
		t.Fatalf("log file = %q", data)
	}
}

func TestNewInstallsGlobal(t *testing.T) {
	logger, err := New(Options{Development: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })
	if zap.L() != logger {
		t.Fatal("global logger was not replaced")
	}
}
