package processor

import "fmt"

// Padding extends encodings to a fixed length.
type Padding struct {
	// Length is the padded length. Zero pads every encoding of a batch to
	// the longest one.
	Length int

	// PadToMultipleOf rounds the padded length up to a multiple of it.
	PadToMultipleOf int

	PadID     int32
	PadToken  string
	PadTypeID int
	Direction Direction
}

func (p *Padding) validate() error {
	if p.Length < 0 || p.PadToMultipleOf < 0 {
		return fmt.Errorf("invalid padding length %d (multiple of %d)", p.Length, p.PadToMultipleOf)
	}
	switch p.Direction {
	case "", Right, Left:
	default:
		return fmt.Errorf("unknown padding direction %q", p.Direction)
	}
	return nil
}

func (p *Padding) target(n int) int {
	if p.Length > n {
		n = p.Length
	}
	if m := p.PadToMultipleOf; m > 0 && n%m != 0 {
		n += m - n%m
	}
	return n
}

// pad extends e and its overflow windows to length. Encodings already at
// least that long are left alone.
func (p *Padding) pad(e *Encoding, length int) {
	for i := range e.Overflowing {
		p.pad(&e.Overflowing[i], length)
	}

	n := length - e.Len()
	if n <= 0 {
		return
	}

	ids := make([]int32, n)
	tokens := make([]string, n)
	offsets := make([][2]int, n)
	typeIDs := make([]int, n)
	ones := make([]int, n)
	zeros := make([]int, n)
	for i := range n {
		ids[i] = p.PadID
		tokens[i] = p.PadToken
		typeIDs[i] = p.PadTypeID
		ones[i] = 1
	}

	if p.Direction == Left {
		e.IDs = append(ids, e.IDs...)
		e.Tokens = append(tokens, e.Tokens...)
		e.Offsets = append(offsets, e.Offsets...)
		e.TypeIDs = append(typeIDs, e.TypeIDs...)
		e.SpecialTokensMask = append(ones, e.SpecialTokensMask...)
		e.AttentionMask = append(zeros, e.AttentionMask...)
		return
	}

	e.IDs = append(e.IDs, ids...)
	e.Tokens = append(e.Tokens, tokens...)
	e.Offsets = append(e.Offsets, offsets...)
	e.TypeIDs = append(e.TypeIDs, typeIDs...)
	e.SpecialTokensMask = append(e.SpecialTokensMask, ones...)
	e.AttentionMask = append(e.AttentionMask, zeros...)
}
