// vocabulary.go - Vokabular und Merge-Tabelle
//
// Enthält:
// - Vocabulary: dichte ID-Vergabe (Alphabet, Merges nach Rang, Special Tokens)
// - MergeRule: Paar -> neues Symbol mit Rang
// - Accessoren: VocabSize, IDToToken, TokenToID
// - AddSpecialTokens, ReserveIDs, ReserveUnknown

package tokenizer

import (
	"fmt"
	"slices"
)

// DefaultUnknownToken is reserved at load time when the vocabulary has none.
const DefaultUnknownToken = "<unk>"

// MergeRule merges the symbols Left and Right into Result. Lower Rank is
// applied first.
type MergeRule struct {
	Rank   int
	Left   int32
	Right  int32
	Result int32
}

// Vocabulary holds the tokenizer vocabulary and merges. It is built by the
// trainer or by Load and must not be modified once it is shared.
type Vocabulary struct {
	Values  []string
	Reverse map[string]int32
	Merges  map[string]int // "left right" -> rank

	rules    []MergeRule
	specials []string
	special  map[string]int32

	// UNK is the id used for symbols missing from Values, or -1
	UNK int32

	opts Options
}

// newVocabulary returns a vocabulary holding only the byte alphabet.
func newVocabulary(opts Options) *Vocabulary {
	v := &Vocabulary{
		Values:  AlphabetSymbols(),
		Reverse: make(map[string]int32, AlphabetSize),
		Merges:  make(map[string]int),
		special: make(map[string]int32),
		UNK:     -1,
		opts:    opts,
	}
	for id, s := range v.Values {
		v.Reverse[s] = int32(id)
	}
	return v
}

// VocabSize returns the vocabulary size
func (v *Vocabulary) VocabSize() int {
	return len(v.Values)
}

// IDToToken returns the token string for id.
func (v *Vocabulary) IDToToken(id int32) (string, bool) {
	if id < 0 || int(id) >= len(v.Values) {
		return "", false
	}
	return v.Values[id], true
}

// TokenToID returns the id of a token string.
func (v *Vocabulary) TokenToID(token string) (int32, bool) {
	id, ok := v.Reverse[token]
	return id, ok
}

// MergeRules returns the merge table in rank order.
func (v *Vocabulary) MergeRules() []MergeRule {
	return slices.Clone(v.rules)
}

// SpecialTokens returns the special tokens in the order they were added.
func (v *Vocabulary) SpecialTokens() []string {
	return slices.Clone(v.specials)
}

// IsSpecial reports whether id belongs to a special token.
func (v *Vocabulary) IsSpecial(id int32) bool {
	tok, ok := v.IDToToken(id)
	if !ok {
		return false
	}
	sid, ok := v.special[tok]
	return ok && sid == id
}

// Options returns the pretokenizer options the vocabulary was trained with.
func (v *Vocabulary) Options() Options {
	return v.opts
}

// addMerge records the next merge rule. A merge whose product already exists
// reuses that symbol; created reports whether the vocabulary grew.
func (v *Vocabulary) addMerge(left, right int32) (rule MergeRule, created bool) {
	ls, rs := v.Values[left], v.Values[right]
	merged := ls + rs

	id, exists := v.Reverse[merged]
	if !exists {
		id = int32(len(v.Values))
		v.Values = append(v.Values, merged)
		v.Reverse[merged] = id
	}

	rule = MergeRule{Rank: len(v.rules), Left: left, Right: right, Result: id}
	v.rules = append(v.rules, rule)
	v.Merges[ls+" "+rs] = rule.Rank
	return rule, !exists
}

// AddSpecialTokens appends tokens after the trained vocabulary and returns
// their ids. Tokens already present keep their id.
func (v *Vocabulary) AddSpecialTokens(tokens ...string) []int32 {
	ids := make([]int32, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if id, ok := v.special[tok]; ok {
			ids = append(ids, id)
			continue
		}

		id, ok := v.Reverse[tok]
		if !ok {
			id = int32(len(v.Values))
			v.Values = append(v.Values, tok)
			v.Reverse[tok] = id
		}
		v.special[tok] = id
		v.specials = append(v.specials, tok)
		ids = append(ids, id)
	}
	return ids
}

// ReserveIDs appends n placeholder special tokens and returns their ids.
func (v *Vocabulary) ReserveIDs(n int) []int32 {
	tokens := make([]string, 0, n)
	for i := len(v.specials); len(tokens) < n; i++ {
		tok := fmt.Sprintf("<|reserved_%d|>", i)
		if _, ok := v.Reverse[tok]; ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return v.AddSpecialTokens(tokens...)
}

// ReserveUnknown makes token the unknown token, appending it if needed.
func (v *Vocabulary) ReserveUnknown(token string) int32 {
	if token == "" {
		token = DefaultUnknownToken
	}
	v.UNK = v.AddSpecialTokens(token)[0]
	return v.UNK
}
