// Package processor wraps tokenizer output with special tokens, truncation
// and padding. It only uses the tokenizer through the Model interface.
package processor

import (
	"fmt"
	"log/slog"

	"github.com/7blacky7/bytebpe/tokenizer"
)

// Model is the part of a tokenizer the processor needs.
type Model interface {
	Tokenize(text string) []tokenizer.Token
	VocabSize() int
	TokenToID(token string) (int32, bool)
	IDToToken(id int32) (string, bool)
}

// Config selects the post-processing steps. Nil fields are disabled.
type Config struct {
	PostProcessor *Template
	Truncation    *Truncation
	Padding       *Padding
}

// Processor applies a fixed Config to a Model. It is safe for concurrent use.
type Processor struct {
	model Model
	cfg   Config

	// ids of the template's special tokens
	specials map[string]int32
}

// New checks cfg against the model's vocabulary.
func New(model Model, cfg Config) (*Processor, error) {
	p := &Processor{model: model, specials: make(map[string]int32)}

	if t := cfg.PostProcessor; t != nil {
		for _, pieces := range [][]Piece{t.Single, t.Pair} {
			for _, piece := range pieces {
				if piece.Sequence != "" {
					continue
				}
				id, ok := model.TokenToID(piece.Token)
				if !ok {
					return nil, fmt.Errorf("template token %q is not in the vocabulary", piece.Token)
				}
				p.specials[piece.Token] = id
			}
		}
	}

	if t := cfg.Truncation; t != nil {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if cfg.PostProcessor != nil && t.MaxLength < cfg.PostProcessor.Added(false) {
			return nil, fmt.Errorf("%w: max length %d leaves no room for the template", ErrSequenceTooShort, t.MaxLength)
		}
	}

	if pad := cfg.Padding; pad != nil {
		if err := pad.validate(); err != nil {
			return nil, err
		}
		resolved := *pad
		if resolved.PadToken != "" {
			id, ok := model.TokenToID(resolved.PadToken)
			if !ok {
				return nil, fmt.Errorf("pad token %q is not in the vocabulary", resolved.PadToken)
			}
			resolved.PadID = id
		} else if tok, ok := model.IDToToken(resolved.PadID); ok {
			resolved.PadToken = tok
		}
		cfg.Padding = &resolved
	}

	p.cfg = cfg
	slog.Debug("processor configured", "template", cfg.PostProcessor != nil, "truncation", cfg.Truncation != nil, "padding", cfg.Padding != nil)
	return p, nil
}

// Model returns the wrapped model.
func (p *Processor) Model() Model {
	return p.model
}

// Config returns the configuration with resolved pad token.
func (p *Processor) Config() Config {
	return p.cfg
}

// Encode encodes one sequence.
func (p *Processor) Encode(text string, addSpecialTokens bool) (*Encoding, error) {
	return p.encode(text, nil, addSpecialTokens)
}

// EncodePair encodes a sequence pair.
func (p *Processor) EncodePair(a, b string, addSpecialTokens bool) (*Encoding, error) {
	return p.encode(a, &b, addSpecialTokens)
}

// EncodeBatch encodes every text. With padding enabled and Padding.Length
// zero, all encodings are padded to the longest one.
func (p *Processor) EncodeBatch(texts []string, addSpecialTokens bool) ([]*Encoding, error) {
	out := make([]*Encoding, len(texts))
	longest := 0
	for i, text := range texts {
		e, err := p.encodeUnpadded(text, nil, addSpecialTokens)
		if err != nil {
			return nil, err
		}
		out[i] = e
		longest = max(longest, e.Len())
	}

	if pad := p.cfg.Padding; pad != nil {
		length := pad.target(longest)
		for _, e := range out {
			pad.pad(e, length)
		}
	}
	return out, nil
}

func (p *Processor) encode(a string, b *string, addSpecialTokens bool) (*Encoding, error) {
	e, err := p.encodeUnpadded(a, b, addSpecialTokens)
	if err != nil {
		return nil, err
	}
	if pad := p.cfg.Padding; pad != nil {
		pad.pad(e, pad.target(e.Len()))
	}
	return e, nil
}

func (p *Processor) encodeUnpadded(a string, b *string, addSpecialTokens bool) (*Encoding, error) {
	encA := fromTokens(p.model.Tokenize(a), 0)
	var encB *Encoding
	if b != nil {
		e := fromTokens(p.model.Tokenize(*b), 1)
		encB = &e
	}

	tmpl := p.cfg.PostProcessor
	if !addSpecialTokens {
		tmpl = nil
	}

	if t := p.cfg.Truncation; t != nil {
		added := 0
		if tmpl != nil {
			added = tmpl.Added(b != nil)
		}
		var err error
		encA, encB, err = t.truncatePair(encA, encB, added)
		if err != nil {
			return nil, err
		}
	}

	out := p.apply(tmpl, encA, encB)
	for _, w := range encA.Overflowing {
		out.Overflowing = append(out.Overflowing, p.apply(tmpl, w, encB))
	}
	if encB != nil {
		for _, w := range encB.Overflowing {
			out.Overflowing = append(out.Overflowing, p.apply(tmpl, encA, &w))
		}
	}
	return &out, nil
}

// apply joins a and b with the template's special tokens. Without a
// template the sequences are concatenated.
func (p *Processor) apply(tmpl *Template, a Encoding, b *Encoding) Encoding {
	n := a.Len()
	if b != nil {
		n += b.Len()
	}
	if tmpl != nil {
		n += tmpl.Added(b != nil)
	}

	out := newEncoding(n)
	if tmpl == nil {
		out.appendSequence(a, 0)
		if b != nil {
			out.appendSequence(*b, 1)
		}
		return out
	}

	pieces := tmpl.Single
	if b != nil {
		pieces = tmpl.Pair
	}
	for _, piece := range pieces {
		switch piece.Sequence {
		case SequenceA:
			out.appendSequence(a, piece.TypeID)
		case SequenceB:
			out.appendSequence(*b, piece.TypeID)
		default:
			out.appendSpecial(p.specials[piece.Token], piece.Token, piece.TypeID)
		}
	}
	return out
}

// VocabSize returns the size of the model's vocabulary.
func (p *Processor) VocabSize() int {
	return p.model.VocabSize()
}
