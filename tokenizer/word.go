package tokenizer

// pair is two adjacent symbol ids.
type pair struct {
	left, right int32
}

// pairDelta is a change to a pair's occurrence count within one word.
type pairDelta struct {
	p     pair
	delta int
}

// word is one distinct corpus word during training.
type word struct {
	symbols []int32
	freq    int
}

func newWord(s string, freq int) word {
	symbols := make([]int32, len(s))
	for i := 0; i < len(s); i++ {
		symbols[i] = int32(s[i])
	}
	return word{symbols: symbols, freq: freq}
}

// merge replaces every non-overlapping left-to-right occurrence of
// (left, right) with merged and returns the pair count changes at the merge
// boundaries. Changes to (left, right) itself may be reported; the caller
// drops that pair afterwards.
func (w *word) merge(left, right, merged int32) []pairDelta {
	var deltas []pairDelta
	syms := w.symbols
	out := make([]int32, 0, len(syms))

	for i := 0; i < len(syms); {
		if i+1 < len(syms) && syms[i] == left && syms[i+1] == right {
			if len(out) > 0 {
				prev := out[len(out)-1]
				deltas = append(deltas,
					pairDelta{pair{prev, left}, -1},
					pairDelta{pair{prev, merged}, 1},
				)
			}
			if i+2 < len(syms) {
				next := syms[i+2]
				deltas = append(deltas,
					pairDelta{pair{right, next}, -1},
					pairDelta{pair{merged, next}, 1},
				)
			}
			out = append(out, merged)
			i += 2
			continue
		}

		out = append(out, syms[i])
		i++
	}

	w.symbols = out
	return deltas
}
