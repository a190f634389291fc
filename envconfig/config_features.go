// config_features.go - Tokenizer- und Trainings-Konfiguration
//
// Dieses Modul enthaelt:
// - Debug-Flags (Verify)
// - Pretokenizer-Auswahl
// - Parallelitaets-Einstellungen
package envconfig

import "runtime"

// =============================================================================
// Feature-Flags
// =============================================================================

var (
	// Verify prueft die inkrementellen Paar-Statistiken nach jedem Merge-Schritt
	Verify = Bool("BPE_VERIFY")

	// Pretokenizer waehlt die Segmentierung (whitespace oder gpt2)
	Pretokenizer = String("BPE_PRETOKENIZER")

	// MaxLength ist die Standard-Truncation-Laenge beim Encoden
	MaxLength = Uint("BPE_MAX_LENGTH", 512)
)

// =============================================================================
// Parallelitaets-Einstellungen
// =============================================================================

// NumWorkers gibt die Anzahl der Worker fuer das Zaehlen des Korpus zurueck
// Konfigurierbar via BPE_NUM_WORKERS
// Default: GOMAXPROCS
func NumWorkers() int {
	n := Uint("BPE_NUM_WORKERS", 0)()
	if n == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return int(n)
}
