package processor

import "github.com/7blacky7/bytebpe/tokenizer"

// Encoding is the output of a Processor for one input (or input pair).
type Encoding struct {
	IDs               []int32    `json:"ids"`
	Tokens            []string   `json:"tokens"`
	Offsets           [][2]int   `json:"offsets"`
	TypeIDs           []int      `json:"type_ids"`
	SpecialTokensMask []int      `json:"special_tokens_mask"`
	AttentionMask     []int      `json:"attention_mask"`
	Overflowing       []Encoding `json:"overflowing,omitempty"`
}

// Len returns the number of tokens.
func (e *Encoding) Len() int {
	return len(e.IDs)
}

func fromTokens(tokens []tokenizer.Token, typeID int) Encoding {
	e := Encoding{
		IDs:               make([]int32, len(tokens)),
		Tokens:            make([]string, len(tokens)),
		Offsets:           make([][2]int, len(tokens)),
		TypeIDs:           make([]int, len(tokens)),
		SpecialTokensMask: make([]int, len(tokens)),
		AttentionMask:     make([]int, len(tokens)),
	}
	for i, tok := range tokens {
		e.IDs[i] = tok.ID
		e.Tokens[i] = tok.Value
		e.Offsets[i] = tok.Offset
		e.TypeIDs[i] = typeID
		e.AttentionMask[i] = 1
	}
	return e
}

func newEncoding(n int) Encoding {
	return Encoding{
		IDs:               make([]int32, 0, n),
		Tokens:            make([]string, 0, n),
		Offsets:           make([][2]int, 0, n),
		TypeIDs:           make([]int, 0, n),
		SpecialTokensMask: make([]int, 0, n),
		AttentionMask:     make([]int, 0, n),
	}
}

// slice returns the tokens [start, end) without overflow windows.
func (e *Encoding) slice(start, end int) Encoding {
	return Encoding{
		IDs:               e.IDs[start:end:end],
		Tokens:            e.Tokens[start:end:end],
		Offsets:           e.Offsets[start:end:end],
		TypeIDs:           e.TypeIDs[start:end:end],
		SpecialTokensMask: e.SpecialTokensMask[start:end:end],
		AttentionMask:     e.AttentionMask[start:end:end],
	}
}

func (e *Encoding) appendSpecial(id int32, token string, typeID int) {
	e.IDs = append(e.IDs, id)
	e.Tokens = append(e.Tokens, token)
	e.Offsets = append(e.Offsets, [2]int{0, 0})
	e.TypeIDs = append(e.TypeIDs, typeID)
	e.SpecialTokensMask = append(e.SpecialTokensMask, 1)
	e.AttentionMask = append(e.AttentionMask, 1)
}

func (e *Encoding) appendSequence(seq Encoding, typeID int) {
	e.IDs = append(e.IDs, seq.IDs...)
	e.Tokens = append(e.Tokens, seq.Tokens...)
	e.Offsets = append(e.Offsets, seq.Offsets...)
	for range seq.IDs {
		e.TypeIDs = append(e.TypeIDs, typeID)
	}
	e.SpecialTokensMask = append(e.SpecialTokensMask, seq.SpecialTokensMask...)
	e.AttentionMask = append(e.AttentionMask, seq.AttentionMask...)
}
