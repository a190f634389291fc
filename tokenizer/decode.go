// decode.go - Token-IDs zu Text dekodieren
//
// Enthält:
// - Decode: Konvertiert Token-IDs zurück zu Bytes/Text
// - DecodeTokens: Symbol-Strings zurück zum Original-Text

package tokenizer

import (
	"strings"
)

// Decode converts token ids back to text. Special tokens are written
// verbatim unless skipSpecial is set; ids outside the vocabulary are skipped.
func (v *Vocabulary) Decode(ids []int32, skipSpecial bool) string {
	var sb strings.Builder

	for _, id := range ids {
		token, ok := v.IDToToken(id)
		if !ok {
			continue
		}

		if v.IsSpecial(id) {
			if !skipSpecial {
				sb.WriteString(token)
			}
			continue
		}

		writeSymbol(&sb, token)
	}

	return sb.String()
}

// DecodeTokens joins token values and maps them back to the bytes they
// stand for.
func DecodeTokens(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		writeSymbol(&sb, tok.Value)
	}
	return sb.String()
}

// writeSymbol writes the bytes behind an alphabet symbol string. Runes
// outside the alphabet are written as they are.
func writeSymbol(sb *strings.Builder, token string) {
	for _, r := range token {
		if b, ok := runeToByte[r]; ok {
			sb.WriteByte(b)
			continue
		}
		sb.WriteRune(r)
	}
}
