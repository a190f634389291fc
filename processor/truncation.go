// truncation.go - Kürzen von Sequenzen auf eine Maximallänge
//
// Enthält:
// - Truncation: MaxLength, Stride, Strategie, Richtung
// - truncatePair: verteilt das Budget auf eine oder zwei Sequenzen
// - truncate: schneidet ganze Tokens ab und sammelt Overflow-Fenster
//
// Es wird immer an Token-Grenzen geschnitten, nie innerhalb eines Symbols.

package processor

import (
	"errors"
	"fmt"
)

type Strategy string

const (
	LongestFirst Strategy = "longest_first"
	OnlyFirst    Strategy = "only_first"
	OnlySecond   Strategy = "only_second"
)

type Direction string

const (
	Right Direction = "right"
	Left  Direction = "left"
)

var ErrSequenceTooShort = errors.New("sequence too short to truncate")

// Truncation limits the length of an encoding, special tokens included.
type Truncation struct {
	MaxLength int
	// Stride is the number of tokens each overflow window repeats from the
	// previous one.
	Stride    int
	Strategy  Strategy
	Direction Direction
}

func (t *Truncation) validate() error {
	if t.MaxLength <= 0 {
		return fmt.Errorf("truncation max length must be positive, got %d", t.MaxLength)
	}
	if t.Stride < 0 {
		return fmt.Errorf("truncation stride must not be negative, got %d", t.Stride)
	}
	switch t.Strategy {
	case "", LongestFirst, OnlyFirst, OnlySecond:
	default:
		return fmt.Errorf("unknown truncation strategy %q", t.Strategy)
	}
	switch t.Direction {
	case "", Right, Left:
	default:
		return fmt.Errorf("unknown truncation direction %q", t.Direction)
	}
	return nil
}

// truncatePair shortens a (and b, if present) so that together with added
// special tokens they fit MaxLength.
func (t *Truncation) truncatePair(a Encoding, b *Encoding, added int) (Encoding, *Encoding, error) {
	total := a.Len() + added
	if b != nil {
		total += b.Len()
	}
	if total <= t.MaxLength {
		return a, b, nil
	}

	target := t.MaxLength - added
	if target < 0 {
		return a, b, fmt.Errorf("%w: max length %d is smaller than the %d special tokens added", ErrSequenceTooShort, t.MaxLength, added)
	}

	if b == nil {
		if t.Strategy == OnlySecond {
			return a, b, fmt.Errorf("%w: only_second truncation needs a pair", ErrSequenceTooShort)
		}
		a, err := t.truncate(a, target)
		return a, nil, err
	}

	n1, n2 := a.Len(), b.Len()
	var t1, t2 int
	switch t.Strategy {
	case OnlyFirst:
		t1, t2 = target-n2, n2
	case OnlySecond:
		t1, t2 = n1, target-n1
	default:
		t1, t2 = splitLongestFirst(n1, n2, target)
	}
	if t1 < 0 || t2 < 0 {
		return a, b, fmt.Errorf("%w: cannot fit %d and %d tokens into %d with %s", ErrSequenceTooShort, n1, n2, target, t.strategy())
	}

	var err error
	if a, err = t.truncate(a, t1); err != nil {
		return a, b, err
	}
	truncB, err := t.truncate(*b, t2)
	if err != nil {
		return a, b, err
	}
	return a, &truncB, nil
}

func (t *Truncation) strategy() Strategy {
	if t.Strategy == "" {
		return LongestFirst
	}
	return t.Strategy
}

// splitLongestFirst removes tokens from the longer sequence until both are
// equally long, then from both alternately.
func splitLongestFirst(n1, n2, target int) (int, int) {
	if n1+n2 <= target {
		return n1, n2
	}
	half := target / 2
	switch {
	case n1 <= half:
		return n1, target - n1
	case n2 <= target-half:
		return target - n2, n2
	default:
		return target - half, half
	}
}

// truncate keeps maxLen tokens of e. Removed tokens become overflow windows
// of at most maxLen tokens that overlap by Stride.
func (t *Truncation) truncate(e Encoding, maxLen int) (Encoding, error) {
	n := e.Len()
	if maxLen >= n {
		return e, nil
	}
	if maxLen == 0 {
		out := e.slice(0, 0)
		out.Overflowing = []Encoding{e.slice(0, n)}
		return out, nil
	}
	if t.Stride >= maxLen {
		return e, fmt.Errorf("truncation stride %d must be smaller than the kept length %d", t.Stride, maxLen)
	}

	step := maxLen - t.Stride
	var windows [][2]int
	if t.Direction == Left {
		for stop := n; ; stop -= step {
			start := max(stop-maxLen, 0)
			windows = append(windows, [2]int{start, stop})
			if start == 0 {
				break
			}
		}
	} else {
		for start := 0; ; start += step {
			stop := min(start+maxLen, n)
			windows = append(windows, [2]int{start, stop})
			if stop == n {
				break
			}
		}
	}

	out := e.slice(windows[0][0], windows[0][1])
	for _, w := range windows[1:] {
		out.Overflowing = append(out.Overflowing, e.slice(w[0], w[1]))
	}
	return out, nil
}
