package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	log, err := New(dir, false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Info("thread_created")
	log.Debug("hidden_at_info")
	_ = log.Sync()

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"thread_created"`) {
		t.Errorf("log output missing info record:\n%s", out)
	}
	if strings.Contains(out, "hidden_at_info") {
		t.Errorf("debug record written at info level:\n%s", out)
	}
}

func TestNewDebugLevel(t *testing.T) {
	dir := t.TempDir()

	log, err := New(dir, true)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	log.Debug("chat_request")
	_ = log.Sync()

	data, _ := os.ReadFile(filepath.Join(dir, logFile))
	if !strings.Contains(string(data), "chat_request") {
		t.Errorf("debug record missing at debug level:\n%s", data)
	}
}
