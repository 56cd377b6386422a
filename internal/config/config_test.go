package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.RequestTimeout() != 30*time.Second {
		t.Errorf("expected default timeout 30s, got %s", cfg.RequestTimeout())
	}
	if cfg.AppName != "medication-reminder" {
		t.Errorf("expected default app name, got %s", cfg.AppName)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when BACKEND_URL is missing")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", " https://script.example.com/exec ")
	t.Setenv("REQUEST_TIMEOUT_MS", "1500")
	t.Setenv("SPREADSHEET_ID", "sheet-1")
	t.Setenv("VOICE_FOLDER_ID", "folder-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validate error: %v", err)
	}

	bc := cfg.Backend(nil)
	if bc.Endpoint != "https://script.example.com/exec" {
		t.Errorf("unexpected endpoint %q", bc.Endpoint)
	}
	if bc.Timeout != 1500*time.Millisecond {
		t.Errorf("unexpected timeout %s", bc.Timeout)
	}
	if bc.SpreadsheetID != "sheet-1" || bc.VoiceFolderID != "folder-1" {
		t.Errorf("opaque ids not forwarded: %+v", bc)
	}
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"https", Config{BackendURL: "https://x.example.com/exec"}, true},
		{"http", Config{BackendURL: "http://localhost:8080/exec"}, true},
		{"no scheme", Config{BackendURL: "x.example.com/exec"}, false},
		{"ftp", Config{BackendURL: "ftp://x.example.com"}, false},
		{"negative timeout", Config{BackendURL: "https://x.example.com", RequestTimeoutMS: -1}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_UnreadableEnvFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// sin .env: defaults
	if _, err := Load(); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}

	// .env existe pero no se puede leer
	if err := os.Mkdir(".env", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unreadable .env")
	}
}
