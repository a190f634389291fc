// config_test.go - Unit Tests fuer Environment-Konfiguration
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestHost(t *testing.T) {
	tests := []struct {
		name, value, expected string
	}{
		{"Leer", "", "127.0.0.1:11535"},
		{"Nur Port", ":1234", ":1234"},
		{"IP mit Port", "10.0.0.1:80", "10.0.0.1:80"},
		{"Nur IP", "10.0.0.1", "10.0.0.1:11535"},
		{"http Scheme", "http://example.com", "example.com:80"},
		{"https Scheme", "https://example.com", "example.com:443"},
		{"Invalider Port", "127.0.0.1:99999", "127.0.0.1:11535"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BPE_HOST", tt.value)
			if got := Host().Host; got != tt.expected {
				t.Errorf("Host() = %q, erwartet %q", got, tt.expected)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
	}
	for value, expected := range tests {
		t.Run(value, func(t *testing.T) {
			t.Setenv("BPE_DEBUG", value)
			if got := LogLevel(); got != expected {
				t.Errorf("LogLevel() = %v, erwartet %v", got, expected)
			}
		})
	}
}

func TestUintDefault(t *testing.T) {
	t.Setenv("BPE_MAX_LENGTH", "keine-zahl")
	if got := MaxLength(); got != 512 {
		t.Errorf("MaxLength() = %d, erwartet 512", got)
	}

	t.Setenv("BPE_MAX_LENGTH", "128")
	if got := MaxLength(); got != 128 {
		t.Errorf("MaxLength() = %d, erwartet 128", got)
	}
}

func TestNumWorkers(t *testing.T) {
	t.Setenv("BPE_NUM_WORKERS", "3")
	if got := NumWorkers(); got != 3 {
		t.Errorf("NumWorkers() = %d, erwartet 3", got)
	}

	t.Setenv("BPE_NUM_WORKERS", "")
	if got := NumWorkers(); got < 1 {
		t.Errorf("NumWorkers() = %d, erwartet >= 1", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BPE_MODELS=from-dotenv\nBPE_DB=from-dotenv.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// bereits gesetzte Variablen gewinnen
	t.Setenv("BPE_DB", "explicit.db")
	t.Setenv("BPE_MODELS", "")
	os.Unsetenv("BPE_MODELS")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("BPE_MODELS") })

	if got := Models(); got != "from-dotenv" {
		t.Errorf("Models() = %q, erwartet from-dotenv", got)
	}
	if got := DB(); got != "explicit.db" {
		t.Errorf("DB() = %q, erwartet explicit.db", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "fehlt.env")); err != nil {
		t.Errorf("fehlende Datei sollte ignoriert werden: %v", err)
	}
}

func TestAsMapComplete(t *testing.T) {
	for name, v := range AsMap() {
		if v.Name != name {
			t.Errorf("AsMap()[%q].Name = %q", name, v.Name)
		}
		if v.Description == "" {
			t.Errorf("AsMap()[%q] ohne Beschreibung", name)
		}
	}
}
