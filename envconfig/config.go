// config.go - Haupt-Konfigurationsfunktionen fuer bpe
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (BPE_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (BPE_ORIGINS)
// - Models: Gibt das Artefakt-Verzeichnis zurueck (BPE_MODELS)
// - DB: Gibt den Pfad der Count-Datenbank zurueck (BPE_DB)
// - LogLevel: Gibt Log-Level zurueck (BPE_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_features.go: Tokenizer- und Trainings-Variablen
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via BPE_HOST
// Default: http://127.0.0.1:11535
func Host() *url.URL {
	defaultPort := "11535"

	s := strings.TrimSpace(Var("BPE_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins zurueck
// Konfigurierbar via BPE_ORIGINS (komma-separiert)
// Enthaelt Standard-Origins fuer localhost
func AllowedOrigins() (origins []string) {
	if s := Var("BPE_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	return origins
}

// Models gibt das Verzeichnis zurueck, in dem Tokenizer-Artefakte liegen
// Konfigurierbar via BPE_MODELS
// Default: model
func Models() string {
	if s := Var("BPE_MODELS"); s != "" {
		return s
	}
	return "model"
}

// DB gibt den Pfad der SQLite-Datenbank fuer Wort-Zaehlungen zurueck
// Konfigurierbar via BPE_DB
// Default: counts.db
func DB() string {
	if s := Var("BPE_DB"); s != "" {
		return s
	}
	return "counts.db"
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via BPE_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("BPE_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// LoadDotEnv laedt eine .env Datei aus dem Arbeitsverzeichnis
// Bereits gesetzte Variablen werden nicht ueberschrieben
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
