// alphabet.go - Byte-Alphabet (GPT-2 byte-level Kodierung)
//
// Enthält:
// - EncodeByte: Byte zu druckbarem Symbol
// - DecodeSymbol: Symbol-String zurück zu Bytes
// - AlphabetSymbols: alle 256 Basis-Symbole in Byte-Reihenfolge
//
// Siehe auch: pretokenizer.go für die Segmentierung vor der Kodierung

package tokenizer

import "strings"

// AlphabetSize is the number of base symbols. Base symbol ids equal their byte value.
const AlphabetSize = 256

// SpaceMarker is the symbol for the space byte. A word that follows a space
// carries it as its first symbol.
const SpaceMarker = 'Ġ'

// Precomputed GPT-2 byte-level encoding table
// Maps byte values to their encoded rune equivalents
var (
	byteToRune [AlphabetSize]rune
	runeToByte map[rune]byte
)

func init() {
	runeToByte = make(map[rune]byte, AlphabetSize)
	for b := 0; b < AlphabetSize; b++ {
		r := rune(b)
		switch {
		case r == 0x00ad:
			r = 0x0143
		case r <= 0x0020:
			r = r + 0x0100
		case r >= 0x007f && r <= 0x00a0:
			r = r + 0x00a2
		}
		byteToRune[b] = r
		runeToByte[r] = byte(b)
	}
}

// EncodeByte maps a byte to its printable alphabet symbol.
func EncodeByte(b byte) rune {
	return byteToRune[b]
}

// EncodeBytes maps every byte of s to its alphabet symbol.
func EncodeBytes(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		sb.WriteRune(byteToRune[s[i]])
	}
	return sb.String()
}

// DecodeSymbol maps a symbol string back to the bytes it stands for.
// It reports false if s contains a rune outside the alphabet.
func DecodeSymbol(s string) ([]byte, bool) {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		b, ok := runeToByte[r]
		if !ok {
			return out, false
		}
		out = append(out, b)
	}
	return out, true
}

// AlphabetSymbols returns the 256 base symbols indexed by byte value.
func AlphabetSymbols() []string {
	symbols := make([]string, AlphabetSize)
	for b, r := range byteToRune {
		symbols[b] = string(r)
	}
	return symbols
}

// isAlphabetSymbol reports whether s is exactly one base symbol.
func isAlphabetSymbol(s string) bool {
	rs := []rune(s)
	if len(rs) != 1 {
		return false
	}
	_, ok := runeToByte[rs[0]]
	return ok
}
