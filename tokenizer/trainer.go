// trainer.go - BPE Merge-Trainer
//
// Enthält:
// - Trainer: Zielgröße, Mindesthäufigkeit, Special Tokens, Fortschritt
// - trainState: Paar-Statistiken mit Rückwärts-Index und Prioritäts-Queue
//
// Die Paar-Statistiken werden nach jedem Merge inkrementell aktualisiert,
// nur für die Wörter, die das gemergte Paar enthalten.

package tokenizer

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/emirpasic/gods/v2/queues/priorityqueue"

	"github.com/7blacky7/bytebpe/logutil"
)

// Trainer learns a merge table from word counts.
type Trainer struct {
	// VocabSize is the target size including the alphabet and special tokens.
	VocabSize int

	// MinFrequency stops training once the best pair occurs less often.
	MinFrequency int

	// SpecialTokens are appended after the trained vocabulary.
	SpecialTokens []string

	// MaxTokenLength, if positive, never merges into a symbol longer than
	// this many bytes.
	MaxTokenLength int

	// Options is stored in the vocabulary. It must match the pretokenizer
	// used to count the corpus.
	Options Options

	// Progress is called after every merge with the number of symbols
	// created so far and the number allowed.
	Progress func(created, budget int)

	// Verify recomputes all pair counts after every merge and panics on a
	// mismatch with the incremental counts.
	Verify bool
}

// Train runs the merge loop over counts. ctx is checked between merges.
func (t *Trainer) Train(ctx context.Context, counts WordCounts) (*Vocabulary, error) {
	st, err := t.train(ctx, counts)
	if err != nil {
		return nil, err
	}
	return st.vocab, nil
}

func (t *Trainer) train(ctx context.Context, counts WordCounts) (*trainState, error) {
	vocab := newVocabulary(t.Options)

	if t.VocabSize < AlphabetSize {
		slog.Warn("training without merges", "error", ErrInvalidVocabSize, "vocab_size", t.VocabSize, "alphabet", AlphabetSize)
	}

	budget := t.VocabSize - AlphabetSize
	for _, tok := range uniqueStrings(t.SpecialTokens) {
		if _, ok := vocab.Reverse[tok]; !ok {
			budget--
		}
	}

	minFreq := max(t.MinFrequency, 1)
	st := newTrainState(vocab, counts)

	start := time.Now()
	slog.Info("training started", "words", len(st.words), "pairs", len(st.counts), "vocab_size", t.VocabSize, "min_frequency", minFreq)

	for created := 0; created < budget; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best, count, ok := st.next(minFreq, t.MaxTokenLength)
		if !ok {
			break
		}

		rule, grew := vocab.addMerge(best.left, best.right)
		if grew {
			created++
		}
		st.apply(best, rule.Result)

		logutil.Trace("merge", "rank", rule.Rank, "left", vocab.Values[best.left], "right", vocab.Values[best.right], "count", count)

		if t.Verify {
			st.verify()
		}
		if t.Progress != nil {
			t.Progress(created, budget)
		}
	}

	vocab.AddSpecialTokens(t.SpecialTokens...)
	if id, ok := vocab.special[DefaultUnknownToken]; ok {
		vocab.UNK = id
	}

	slog.Info("training finished", "merges", len(vocab.rules), "vocab_size", vocab.VocabSize(), "duration", time.Since(start))
	return st, nil
}

// pairEntry is a queued pair with the count it had when it was queued.
type pairEntry struct {
	p     pair
	count int
}

// byCount orders entries by count, highest first, then by the smaller pair.
func byCount(a, b pairEntry) int {
	if c := cmp.Compare(b.count, a.count); c != 0 {
		return c
	}
	if c := cmp.Compare(a.p.left, b.p.left); c != 0 {
		return c
	}
	return cmp.Compare(a.p.right, b.p.right)
}

type trainState struct {
	vocab *Vocabulary
	words []word
	keys  []string

	counts map[pair]int
	where  map[pair]map[int]struct{}

	// queue holds at least one entry with the current count of every live
	// pair; entries whose count is outdated are dropped when dequeued.
	queue *priorityqueue.Queue[pairEntry]
}

func newTrainState(vocab *Vocabulary, counts WordCounts) *trainState {
	st := &trainState{
		vocab:  vocab,
		keys:   counts.Sorted(),
		counts: make(map[pair]int),
		where:  make(map[pair]map[int]struct{}),
		queue:  priorityqueue.NewWith[pairEntry](byCount),
	}

	st.words = make([]word, len(st.keys))
	for i, k := range st.keys {
		st.words[i] = newWord(k, counts[k])
		w := st.words[i]
		for j := 0; j+1 < len(w.symbols); j++ {
			p := pair{w.symbols[j], w.symbols[j+1]}
			st.counts[p] += w.freq
			st.index(p, i)
		}
	}

	for p, c := range st.counts {
		st.queue.Enqueue(pairEntry{p, c})
	}
	return st
}

func (st *trainState) index(p pair, wi int) {
	ws, ok := st.where[p]
	if !ok {
		ws = make(map[int]struct{})
		st.where[p] = ws
	}
	ws[wi] = struct{}{}
}

// next returns the most frequent pair that may be merged.
func (st *trainState) next(minFreq, maxLen int) (pair, int, bool) {
	for {
		e, ok := st.queue.Dequeue()
		if !ok {
			return pair{}, 0, false
		}

		current := st.counts[e.p]
		if current <= 0 || current != e.count {
			continue
		}
		if current < minFreq {
			return pair{}, 0, false
		}
		if maxLen > 0 && st.mergedLen(e.p) > maxLen {
			continue
		}
		return e.p, current, true
	}
}

// mergedLen is the byte length of the symbol p would produce. Every
// alphabet rune stands for one byte.
func (st *trainState) mergedLen(p pair) int {
	return utf8.RuneCountInString(st.vocab.Values[p.left]) + utf8.RuneCountInString(st.vocab.Values[p.right])
}

// apply merges p into merged in every word that contains it and updates
// the pair statistics from the reported boundary changes.
func (st *trainState) apply(p pair, merged int32) {
	touched := make(map[pair]struct{})

	for wi := range st.where[p] {
		w := &st.words[wi]
		for _, d := range w.merge(p.left, p.right, merged) {
			st.counts[d.p] += d.delta * w.freq
			touched[d.p] = struct{}{}
			if d.delta > 0 {
				st.index(d.p, wi)
			}
		}
	}

	delete(st.counts, p)
	delete(st.where, p)

	for tp := range touched {
		if tp == p {
			continue
		}
		switch c := st.counts[tp]; {
		case c > 0:
			st.queue.Enqueue(pairEntry{tp, c})
		case c == 0:
			delete(st.counts, tp)
			delete(st.where, tp)
		}
	}
}

// verify recomputes the pair counts from scratch.
func (st *trainState) verify() {
	fresh := make(map[pair]int, len(st.counts))
	for _, w := range st.words {
		for j := 0; j+1 < len(w.symbols); j++ {
			fresh[pair{w.symbols[j], w.symbols[j+1]}] += w.freq
		}
	}

	if len(fresh) != len(st.counts) {
		panic(fmt.Sprintf("pair statistics out of sync: %d pairs tracked, %d present", len(st.counts), len(fresh)))
	}
	for p, c := range fresh {
		if st.counts[p] != c {
			panic(fmt.Sprintf("pair statistics out of sync for (%d, %d): tracked %d, present %d", p.left, p.right, st.counts[p], c))
		}
	}
}

// forms returns the final symbol strings of every training word.
func (st *trainState) forms() map[string][]string {
	out := make(map[string][]string, len(st.words))
	for i, w := range st.words {
		syms := make([]string, len(w.symbols))
		for j, id := range w.symbols {
			syms[j] = st.vocab.Values[id]
		}
		out[st.keys[i]] = syms
	}
	return out
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
