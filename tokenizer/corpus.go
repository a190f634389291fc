// corpus.go - Korpus-Vorverarbeitung (Wort-Häufigkeiten)
//
// Enthält:
// - WordCounts: Multimenge aus Wort-Spannen und Häufigkeiten
// - CountReaders, CountFiles: paralleles Zählen über Zeilen-Batches (errgroup)
// - JSONL-Unterstützung: ein String-Feld pro Zeile (jsonparser)
//
// Siehe auch: trainer.go für den Merge-Trainer

package tokenizer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync/atomic"

	"github.com/buger/jsonparser"
	"golang.org/x/sync/errgroup"
)

const defaultBatchLines = 1024

// WordCounts maps a raw word span (including its leading space marker byte)
// to the number of times it occurs in the corpus.
type WordCounts map[string]int

// Add pretokenizes text and counts its words. Special tokens are not counted.
func (c WordCounts) Add(p *Pretokenizer, text string) {
	prepared, _ := p.Prepare(text)
	for _, piece := range p.Split(prepared) {
		if piece.Special || piece.Text == "" {
			continue
		}
		c[piece.Text]++
	}
}

// Merge adds the counts of other into c.
func (c WordCounts) Merge(other WordCounts) {
	for word, n := range other {
		c[word] += n
	}
}

// Total returns the number of word occurrences.
func (c WordCounts) Total() int {
	var total int
	for _, n := range c {
		total += n
	}
	return total
}

// Sorted returns the distinct words in byte order.
func (c WordCounts) Sorted() []string {
	words := make([]string, 0, len(c))
	for w := range c {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// CountText counts the words of a single text.
func CountText(p *Pretokenizer, text string) WordCounts {
	c := make(WordCounts)
	c.Add(p, text)
	return c
}

// CountOptions controls CountReaders.
type CountOptions struct {
	// Workers is the number of counting goroutines. Values below 1 mean 1.
	Workers int

	// BatchLines is the number of lines handed to a worker at once.
	BatchLines int

	// JSONField, if set, treats every line as a JSON object and counts only
	// the string value of this field. Lines without it are skipped.
	JSONField string
}

// CountReaders counts newline-delimited text from readers. Lines are read by
// one producer and counted by opts.Workers workers, each into its own map;
// the partial maps are summed once all workers are done.
func CountReaders(ctx context.Context, p *Pretokenizer, readers []io.Reader, opts CountOptions) (WordCounts, error) {
	workers := max(opts.Workers, 1)
	batchLines := opts.BatchLines
	if batchLines <= 0 {
		batchLines = defaultBatchLines
	}

	g, ctx := errgroup.WithContext(ctx)
	batches := make(chan []string, workers)

	g.Go(func() error {
		defer close(batches)

		send := func(lines []string) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case batches <- lines:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, r := range readers {
			br := bufio.NewReaderSize(r, 1<<20)
			lines := make([]string, 0, batchLines)
			for {
				line, err := br.ReadString('\n')
				if line != "" {
					lines = append(lines, line)
					if len(lines) == batchLines {
						if err := send(lines); err != nil {
							return err
						}
						lines = make([]string, 0, batchLines)
					}
				}
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("read corpus: %w", err)
				}
			}
			if len(lines) > 0 {
				if err := send(lines); err != nil {
					return err
				}
			}
		}
		return nil
	})

	var skipped atomic.Int64
	partials := make([]WordCounts, workers)
	for i := range workers {
		g.Go(func() error {
			counts := make(WordCounts)
			for lines := range batches {
				for _, line := range lines {
					text := line
					if opts.JSONField != "" {
						v, err := jsonparser.GetString([]byte(line), opts.JSONField)
						if err != nil {
							skipped.Add(1)
							continue
						}
						text = v
					}
					counts.Add(p, text)
				}
			}
			partials[i] = counts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := skipped.Load(); n > 0 {
		slog.Warn("skipped corpus lines without json field", "field", opts.JSONField, "lines", n)
	}

	merged := make(WordCounts)
	for _, c := range partials {
		merged.Merge(c)
	}
	return merged, nil
}

// CountFiles opens every path and counts it with CountReaders.
func CountFiles(ctx context.Context, p *Pretokenizer, paths []string, opts CountOptions) (WordCounts, error) {
	readers := make([]io.Reader, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open corpus: %w", err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	slog.Debug("counting corpus", "files", len(paths), "workers", max(opts.Workers, 1))
	return CountReaders(ctx, p, readers, opts)
}
