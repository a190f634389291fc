// alphabet_test.go - Tests fuer das Byte-Alphabet
package tokenizer

import (
	"bytes"
	"strings"
	"testing"
	"unicode"
)

// TestAlphabetBijective prueft, dass alle 256 Bytes eindeutige, druckbare Symbole haben
func TestAlphabetBijective(t *testing.T) {
	seen := make(map[rune]byte, AlphabetSize)
	for b := 0; b < AlphabetSize; b++ {
		r := EncodeByte(byte(b))
		if !unicode.IsPrint(r) || r == ' ' {
			t.Errorf("EncodeByte(%#x) = %q, erwartet druckbares Symbol ohne Leerzeichen", b, r)
		}
		if prev, ok := seen[r]; ok {
			t.Fatalf("EncodeByte(%#x) = %q, bereits belegt von %#x", b, r, prev)
		}
		seen[r] = byte(b)

		got, ok := DecodeSymbol(string(r))
		if !ok || len(got) != 1 || got[0] != byte(b) {
			t.Errorf("DecodeSymbol(%q) = %v, %v, erwartet [%#x]", r, got, ok, b)
		}
	}
}

func TestSpaceMarker(t *testing.T) {
	if got := EncodeByte(' '); got != SpaceMarker {
		t.Errorf("EncodeByte(' ') = %q, erwartet %q", got, SpaceMarker)
	}
}

// TestAlphabetRoundTrip prueft decode(encode(b)) == b fuer beliebige Bytes
func TestAlphabetRoundTrip(t *testing.T) {
	all := make([]byte, AlphabetSize)
	for i := range all {
		all[i] = byte(i)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"leer", nil},
		{"ascii", []byte("hello world")},
		{"utf8", []byte("Здраво свете, čćžšđ")},
		{"ungueltiges utf8", []byte{0xff, 0xfe, 0x00, 'a', 0xc3}},
		{"alle bytes", all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := EncodeBytes(string(tt.input))
			if strings.ContainsRune(encoded, ' ') {
				t.Errorf("EncodeBytes(%q) enthaelt ein Leerzeichen", tt.input)
			}
			got, ok := DecodeSymbol(encoded)
			if !ok {
				t.Fatalf("DecodeSymbol(%q) meldet unbekanntes Symbol", encoded)
			}
			if !bytes.Equal(got, tt.input) && len(got)+len(tt.input) > 0 {
				t.Errorf("Round-Trip = %v, erwartet %v", got, tt.input)
			}
		})
	}
}

func TestDecodeSymbolRejectsForeignRunes(t *testing.T) {
	// druckbares ASCII ist Teil des Alphabets
	if got, ok := DecodeSymbol("<unk>"); !ok || string(got) != "<unk>" {
		t.Errorf("DecodeSymbol(\"<unk>\") = %q, %v", got, ok)
	}
	if _, ok := DecodeSymbol("a世"); ok {
		t.Error("DecodeSymbol mit CJK-Zeichen erwartet !ok")
	}
}

func TestAlphabetSymbols(t *testing.T) {
	symbols := AlphabetSymbols()
	if len(symbols) != AlphabetSize {
		t.Fatalf("len(AlphabetSymbols()) = %d, erwartet %d", len(symbols), AlphabetSize)
	}
	if symbols['a'] != "a" || symbols[' '] != "Ġ" || symbols['\n'] != "Ċ" {
		t.Errorf("unerwartete Symbole: a=%q space=%q newline=%q", symbols['a'], symbols[' '], symbols['\n'])
	}
	for b, s := range symbols {
		if !isAlphabetSymbol(s) {
			t.Errorf("isAlphabetSymbol(%q) fuer Byte %#x = false", s, b)
		}
	}
}
