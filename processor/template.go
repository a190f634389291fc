// template.go - Post-Processing Templates
//
// Enthält:
// - Template: Stücke für einzelne Sequenzen und Paare
// - BertProcessing, RobertaProcessing: feste Templates
// - ParseTemplate: "<s> $A </s>" Syntax mit optionaler Type-ID (":1")

package processor

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SequenceA = "A"
	SequenceB = "B"
)

// Piece is one element of a template: either a sequence placeholder or a
// special token.
type Piece struct {
	// Sequence is SequenceA or SequenceB for a placeholder, empty for a
	// special token.
	Sequence string
	Token    string
	TypeID   int
}

func (p Piece) String() string {
	s := p.Token
	if p.Sequence != "" {
		s = "$" + p.Sequence
	}
	if p.TypeID != 0 || p.Sequence == SequenceB {
		s += ":" + strconv.Itoa(p.TypeID)
	}
	return s
}

// Template wraps encoded sequences with special tokens.
type Template struct {
	Single []Piece
	Pair   []Piece
}

func special(tok string, typeID int) Piece {
	return Piece{Token: tok, TypeID: typeID}
}

func sequence(seq string, typeID int) Piece {
	return Piece{Sequence: seq, TypeID: typeID}
}

// BertProcessing returns the template "cls $A sep" and "cls $A sep $B:1 sep:1".
func BertProcessing(sep, cls string) *Template {
	return &Template{
		Single: []Piece{special(cls, 0), sequence(SequenceA, 0), special(sep, 0)},
		Pair: []Piece{
			special(cls, 0), sequence(SequenceA, 0), special(sep, 0),
			sequence(SequenceB, 1), special(sep, 1),
		},
	}
}

// RobertaProcessing returns the template "cls $A sep" and "cls $A sep sep $B sep".
func RobertaProcessing(sep, cls string) *Template {
	return &Template{
		Single: []Piece{special(cls, 0), sequence(SequenceA, 0), special(sep, 0)},
		Pair: []Piece{
			special(cls, 0), sequence(SequenceA, 0), special(sep, 0),
			special(sep, 0), sequence(SequenceB, 0), special(sep, 0),
		},
	}
}

// ParseTemplate parses templates like "<s> $A </s>" and
// "<s> $A </s> $B:1 </s>:1". $B defaults to type id 1. An empty pair
// template repeats single, with type id 1 for the second half.
func ParseTemplate(single, pair string) (*Template, error) {
	s, err := parsePieces(single)
	if err != nil {
		return nil, fmt.Errorf("single template: %w", err)
	}
	if countSequence(s, SequenceA) != 1 || countSequence(s, SequenceB) != 0 {
		return nil, fmt.Errorf("single template %q must contain $A exactly once and no $B", single)
	}

	t := &Template{Single: s}
	if pair == "" {
		t.Pair = append(t.Pair, s...)
		for _, p := range s {
			if p.Sequence == SequenceA {
				p.Sequence = SequenceB
			}
			p.TypeID = 1
			t.Pair = append(t.Pair, p)
		}
		return t, nil
	}

	p, err := parsePieces(pair)
	if err != nil {
		return nil, fmt.Errorf("pair template: %w", err)
	}
	if countSequence(p, SequenceA) != 1 || countSequence(p, SequenceB) != 1 {
		return nil, fmt.Errorf("pair template %q must contain $A and $B exactly once", pair)
	}
	t.Pair = p
	return t, nil
}

func parsePieces(s string) ([]Piece, error) {
	var pieces []Piece
	for _, field := range strings.Fields(s) {
		name, typ, hasType := strings.Cut(field, ":")
		typeID := 0
		if hasType {
			n, err := strconv.Atoi(typ)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid type id in %q", field)
			}
			typeID = n
		}

		switch name {
		case "$", "$A", "$0":
			pieces = append(pieces, sequence(SequenceA, typeID))
		case "$B", "$1":
			if !hasType {
				typeID = 1
			}
			pieces = append(pieces, sequence(SequenceB, typeID))
		case "":
			return nil, fmt.Errorf("empty piece in %q", field)
		default:
			pieces = append(pieces, special(name, typeID))
		}
	}
	return pieces, nil
}

func countSequence(pieces []Piece, seq string) int {
	var n int
	for _, p := range pieces {
		if p.Sequence == seq {
			n++
		}
	}
	return n
}

// Added returns the number of special tokens the template adds.
func (t *Template) Added(pair bool) int {
	pieces := t.Single
	if pair {
		pieces = t.Pair
	}
	return len(pieces) - countSequence(pieces, SequenceA) - countSequence(pieces, SequenceB)
}

func (t *Template) String() string {
	join := func(pieces []Piece) string {
		parts := make([]string, len(pieces))
		for i, p := range pieces {
			parts[i] = p.String()
		}
		return strings.Join(parts, " ")
	}
	return join(t.Single) + " | " + join(t.Pair)
}
