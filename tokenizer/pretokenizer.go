// pretokenizer.go - Segmentierung von Text in Wörter
//
// Enthält:
// - WhitespaceSegmenter: Standard-Regel (Leerzeichen als Präfix des Folgeworts)
// - RegexSegmenter: GPT-2 Muster über regexp2 (mit Lookahead)
// - Pretokenizer: Normalisierung, Präfix-Leerzeichen, Special-Token-Split
//
// Training und Encoding benutzen denselben Pretokenizer, sonst greifen Merges nicht.

package tokenizer

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"
)

// GPT2Pattern is the GPT-2 pretokenizer pattern. It needs lookahead support.
const GPT2Pattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

const (
	PretokenizerWhitespace = "whitespace"
	PretokenizerGPT2       = "gpt2"
)

// Options selects the segmentation policy. Training and encoding must agree,
// so Options is persisted next to the vocabulary.
type Options struct {
	Pretokenizer   string `json:"pretokenizer,omitempty"`
	AddPrefixSpace bool   `json:"add_prefix_space,omitempty"`
	Normalization  string `json:"normalization,omitempty"`
}

// Segmenter splits text into word segments. Concatenating the segments must
// reproduce the input exactly.
type Segmenter interface {
	Segment(s string) []string
}

// WhitespaceSegmenter splits on whitespace. A single space directly before a
// word stays attached to it; any other whitespace becomes its own segment.
type WhitespaceSegmenter struct{}

func (WhitespaceSegmenter) Segment(s string) []string {
	var out []string
	for i := 0; i < len(s); {
		j := skipFunc(s, i, unicode.IsSpace)
		if j == len(s) {
			out = append(out, s[i:j])
			break
		}

		k := skipFunc(s, j, func(r rune) bool { return !unicode.IsSpace(r) })

		start := j
		if j > i && s[j-1] == ' ' {
			start = j - 1
		}
		if start > i {
			out = append(out, s[i:start])
		}
		out = append(out, s[start:k])
		i = k
	}
	return out
}

// skipFunc returns the byte offset of the first rune at or after i that does
// not satisfy f. Invalid bytes decode as utf8.RuneError, which is not a space.
func skipFunc(s string, i int, f func(rune) bool) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !f(r) {
			break
		}
		i += size
	}
	return i
}

// RegexSegmenter splits text with a regexp2 pattern. Text between matches is
// kept as its own segment.
type RegexSegmenter struct {
	re *regexp2.Regexp
}

func NewRegexSegmenter(pattern string) (*RegexSegmenter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pretokenizer regex %q: %w", pattern, err)
	}
	return &RegexSegmenter{re: re}, nil
}

func (r *RegexSegmenter) Segment(s string) []string {
	if s == "" {
		return nil
	}

	// regexp2 reports rune positions; map them back to byte offsets so
	// invalid UTF-8 survives untouched.
	runes := []rune(s)
	offsets := make([]int, len(runes)+1)
	pos := 0
	for i := range runes {
		offsets[i] = pos
		_, size := utf8.DecodeRuneInString(s[pos:])
		pos += size
	}
	offsets[len(runes)] = len(s)

	var out []string
	last := 0
	m, err := r.re.FindRunesMatch(runes)
	for err == nil && m != nil {
		start, end := m.Index, m.Index+m.Length
		if start > last {
			out = append(out, s[offsets[last]:offsets[start]])
		}
		if end > start {
			out = append(out, s[offsets[start]:offsets[end]])
		}
		last = end
		m, err = r.re.FindNextMatch(m)
	}

	if last < len(runes) {
		out = append(out, s[offsets[last]:])
	}
	return out
}

// Piece is one pretokenized unit: either a word for the byte-level model or
// a special token that maps straight to its id.
type Piece struct {
	Text    string
	Special bool
}

// Pretokenizer prepares text for both counting and encoding.
type Pretokenizer struct {
	opts     Options
	seg      Segmenter
	specials []string // longest first
}

// NewPretokenizer builds a pretokenizer for opts. specials are split out
// before segmentation.
func NewPretokenizer(opts Options, specials []string) (*Pretokenizer, error) {
	p := &Pretokenizer{opts: opts}

	switch opts.Pretokenizer {
	case "", PretokenizerWhitespace:
		p.seg = WhitespaceSegmenter{}
	case PretokenizerGPT2:
		seg, err := NewRegexSegmenter(GPT2Pattern)
		if err != nil {
			return nil, err
		}
		p.seg = seg
	default:
		return nil, fmt.Errorf("unknown pretokenizer %q", opts.Pretokenizer)
	}

	switch opts.Normalization {
	case "", "nfc", "nfkc":
	default:
		return nil, fmt.Errorf("unknown normalization %q", opts.Normalization)
	}

	for _, s := range specials {
		if s != "" {
			p.specials = append(p.specials, s)
		}
	}
	sort.SliceStable(p.specials, func(i, j int) bool {
		return len(p.specials[i]) > len(p.specials[j])
	})

	return p, nil
}

// Options returns the options p was built with.
func (p *Pretokenizer) Options() Options {
	return p.opts
}

// Prepare normalizes s and applies the prefix space. shift is the number of
// bytes added in front of the input.
func (p *Pretokenizer) Prepare(s string) (prepared string, shift int) {
	switch p.opts.Normalization {
	case "nfc":
		s = norm.NFC.String(s)
	case "nfkc":
		s = norm.NFKC.String(s)
	}

	if p.opts.AddPrefixSpace && s != "" {
		if r, _ := utf8.DecodeRuneInString(s); !unicode.IsSpace(r) && !p.startsWithSpecial(s) {
			return " " + s, 1
		}
	}
	return s, 0
}

func (p *Pretokenizer) startsWithSpecial(s string) bool {
	for _, tok := range p.specials {
		if strings.HasPrefix(s, tok) {
			return true
		}
	}
	return false
}

// Split pretokenizes already prepared text. Concatenating the piece texts
// reproduces s.
func (p *Pretokenizer) Split(s string) []Piece {
	var pieces []Piece
	for _, part := range p.splitBySpecialTokens(s) {
		if part.Special {
			pieces = append(pieces, part)
			continue
		}
		for _, word := range p.seg.Segment(part.Text) {
			pieces = append(pieces, Piece{Text: word})
		}
	}
	return pieces
}

// splitBySpecialTokens splits text into parts, keeping special tokens as separate elements
func (p *Pretokenizer) splitBySpecialTokens(s string) []Piece {
	if len(p.specials) == 0 {
		if s == "" {
			return nil
		}
		return []Piece{{Text: s}}
	}

	var result []Piece
	remaining := s

	for len(remaining) > 0 {
		found := false
		for _, tok := range p.specials {
			if strings.HasPrefix(remaining, tok) {
				result = append(result, Piece{Text: tok, Special: true})
				remaining = remaining[len(tok):]
				found = true
				break
			}
		}
		if !found {
			// Find next special token position
			nextPos := len(remaining)
			for _, tok := range p.specials {
				if idx := strings.Index(remaining, tok); idx != -1 && idx < nextPos {
					nextPos = idx
				}
			}
			if nextPos > 0 {
				result = append(result, Piece{Text: remaining[:nextPos]})
			}
			remaining = remaining[nextPos:]
		}
	}

	return result
}
