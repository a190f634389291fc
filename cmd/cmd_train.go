// cmd_train.go - Training eines BPE-Tokenizers
// Hauptfunktionen: TrainHandler, newTrainCmd
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/store"
	"github.com/7blacky7/bytebpe/tokenizer"
)

// TrainHandler - Zaehlt das Korpus, trainiert die Merges und speichert das Artefakt
func TrainHandler(cmd *cobra.Command, args []string) error {
	vocabSize, _ := cmd.Flags().GetInt("vocab-size")
	minFrequency, _ := cmd.Flags().GetInt("min-frequency")
	specialList, _ := cmd.Flags().GetString("special-tokens")
	out, _ := cmd.Flags().GetString("out")
	prefix, _ := cmd.Flags().GetString("prefix")
	maxTokenLength, _ := cmd.Flags().GetInt("max-token-length")
	verify, _ := cmd.Flags().GetBool("verify")
	dbPath, _ := cmd.Flags().GetString("db")
	corpus, _ := cmd.Flags().GetString("counts")

	if len(args) == 0 && corpus == "" {
		return errors.New("no corpus given: pass files or --counts NAME")
	}
	if dbPath == "" && corpus != "" {
		dbPath = envconfig.DB()
	}

	opts, err := pretokenizerOptions(cmd)
	if err != nil {
		return err
	}
	specials := splitList(specialList)

	// Ctrl+C bricht Zaehlen und Training zwischen zwei Merges ab
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if dbPath != "" {
		st = &store.Store{DBPath: dbPath}
		defer st.Close()
	}

	counts, err := loadCorpus(ctx, cmd, st, corpus, args, opts, specials)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "counted %d distinct words (%d total)\n", len(counts), counts.Total())

	run := &store.Run{
		Corpus:       corpus,
		VocabSize:    vocabSize,
		MinFrequency: minFrequency,
		Pretokenizer: opts.Pretokenizer,
		Output:       out,
	}
	if st != nil {
		if err := st.StartRun(run); err != nil {
			return err
		}
	}

	progress := newProgressLine(cmd.ErrOrStderr(), "merging")
	trainer := tokenizer.Trainer{
		VocabSize:      vocabSize,
		MinFrequency:   minFrequency,
		SpecialTokens:  specials,
		MaxTokenLength: maxTokenLength,
		Options:        opts,
		Progress:       progress.Update,
		Verify:         verify,
	}

	vocab, err := trainer.Train(ctx, counts)
	progress.Stop()
	if err == nil {
		err = vocab.Save(out, prefix)
	}

	if st != nil {
		if vocab != nil {
			run.Merges = len(vocab.MergeRules())
			run.FinalVocabSize = vocab.VocabSize()
		}
		if ferr := st.FinishRun(run, err); ferr != nil {
			slog.Error("could not record training run", "id", run.ID, "error", ferr)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "trained %d merges, vocabulary size %d, saved to %s\n", len(vocab.MergeRules()), vocab.VocabSize(), out)
	return nil
}

// loadCorpus - Zaehlt die Dateien oder laedt gespeicherte Zaehlungen. Mit
// Dateien und --counts werden die neuen Zaehlungen unter dem Namen gespeichert.
func loadCorpus(ctx context.Context, cmd *cobra.Command, st *store.Store, corpus string, files []string, opts tokenizer.Options, specials []string) (tokenizer.WordCounts, error) {
	if len(files) == 0 {
		counts, err := st.LoadCounts(corpus)
		if err != nil {
			return nil, err
		}
		slog.Info("loaded stored counts", "corpus", corpus, "words", len(counts))
		return counts, nil
	}

	pre, err := tokenizer.NewPretokenizer(opts, specials)
	if err != nil {
		return nil, err
	}
	copts, err := countOptions(cmd)
	if err != nil {
		return nil, err
	}

	counts, err := tokenizer.CountFiles(ctx, pre, files, copts)
	if err != nil {
		return nil, err
	}

	if st != nil && corpus != "" {
		if err := st.SaveCounts(corpus, counts, false); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// newTrainCmd - Erstellt den train Command
func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [FILE...]",
		Short: "Train a byte-level BPE tokenizer",
		Long: `Train a byte-level BPE tokenizer on text files (one document per line,
or JSONL with --json-field) or on counts stored with 'bpe count'.

Writes vocab.json, merges.txt and tokenizer_config.json to --out.`,
		RunE: TrainHandler,
	}

	cmd.Flags().Int("vocab-size", 52000, "Target vocabulary size including the 256 byte symbols and special tokens")
	cmd.Flags().Int("min-frequency", 2, "Stop once the most frequent pair occurs less often")
	cmd.Flags().String("special-tokens", defaultSpecialTokens, "Comma separated special tokens appended to the vocabulary")
	cmd.Flags().StringP("out", "o", envconfig.Models(), "Output directory")
	cmd.Flags().String("prefix", "", "File name prefix, e.g. 'serbian' writes serbian-vocab.json")
	cmd.Flags().Int("max-token-length", 0, "Never create tokens longer than this many bytes (0 = unlimited)")
	cmd.Flags().Bool("verify", envconfig.Verify(), "Recompute pair statistics after every merge")
	cmd.Flags().String("db", "", "SQLite database for stored counts and the run log")
	cmd.Flags().String("counts", "", "Name of stored counts to train on (or to store the counted files under)")
	addPretokenizerFlags(cmd)

	return cmd
}
