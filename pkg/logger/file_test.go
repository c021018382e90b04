package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentwire.log")
	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	l.Info("loaded %d cookies", 3)
	l.Error("login rejected")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "[INFO] loaded 3 cookies") || !strings.Contains(out, "[ERROR] login rejected") {
		t.Fatalf("unexpected log content %q", out)
	}
	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestFileLogger_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentwire.log")
	for _, msg := range []string{"first", "second"} {
		l, err := NewFileLogger(path)
		if err != nil {
			t.Fatal(err)
		}
		l.Warning(msg)
		l.Close()
	}
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "[WARNING]") != 2 {
		t.Fatalf("expected both runs in file, got %q", data)
	}
}

func TestNewFileLogger_BadPath(t *testing.T) {
	if _, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
