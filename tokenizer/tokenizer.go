// Package tokenizer implements a byte-level BPE tokenizer: corpus counting,
// merge training, the vocab.json/merges.txt artifact and encoding.
//
// Every byte has a base symbol, so any input can be encoded. A Tokenizer is
// immutable after construction and safe for concurrent use.
package tokenizer

// Tokenizer pairs a vocabulary with the pretokenizer it was trained with.
type Tokenizer struct {
	vocab *Vocabulary
	pre   *Pretokenizer
}

// New returns a tokenizer for v. Special tokens of v are split out of the
// input before segmentation.
func New(v *Vocabulary) (*Tokenizer, error) {
	pre, err := NewPretokenizer(v.Options(), v.SpecialTokens())
	if err != nil {
		return nil, err
	}
	return &Tokenizer{vocab: v, pre: pre}, nil
}

// Open loads the artifact at path and returns a tokenizer for it.
func Open(path string) (*Tokenizer, error) {
	v, err := Load(path, LoadOptions{})
	if err != nil {
		return nil, err
	}
	return New(v)
}

// Tokenize encodes text. Offsets are byte ranges into text after
// normalization.
func (t *Tokenizer) Tokenize(text string) []Token {
	prepared, shift := t.pre.Prepare(text)

	var pieces []piece
	offset := 0
	for _, p := range t.pre.Split(prepared) {
		pieces = append(pieces, piece{Piece: p, offset: offset - shift})
		offset += len(p.Text)
	}

	tokens := t.vocab.encodePieces(pieces, len(prepared))
	if shift > 0 {
		for i := range tokens {
			tokens[i].Offset[0] = max(tokens[i].Offset[0], 0)
			tokens[i].Offset[1] = max(tokens[i].Offset[1], 0)
		}
	}
	return tokens
}

// Encode returns the token ids of text.
func (t *Tokenizer) Encode(text string) []int32 {
	tokens := t.Tokenize(text)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids
}

// Decode converts ids back to text.
func (t *Tokenizer) Decode(ids []int32, skipSpecial bool) string {
	return t.vocab.Decode(ids, skipSpecial)
}

func (t *Tokenizer) VocabSize() int {
	return t.vocab.VocabSize()
}

func (t *Tokenizer) IDToToken(id int32) (string, bool) {
	return t.vocab.IDToToken(id)
}

func (t *Tokenizer) TokenToID(token string) (int32, bool) {
	return t.vocab.TokenToID(token)
}

// Vocabulary returns the underlying vocabulary. It must not be modified.
func (t *Tokenizer) Vocabulary() *Vocabulary {
	return t.vocab
}

// Pretokenizer returns the pretokenizer used for counting and encoding.
func (t *Tokenizer) Pretokenizer() *Pretokenizer {
	return t.pre
}
