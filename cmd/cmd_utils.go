// cmd_utils.go - Gemeinsame Hilfsfunktionen der Commands
// Hauptfunktionen: Flag-Gruppen (Pretokenizer, Processor), loadTokenizer,
// checkServerHeartbeat, Fortschrittsanzeige
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/bytebpe/api"
	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/processor"
	"github.com/7blacky7/bytebpe/tokenizer"
)

// defaultSpecialTokens entspricht dem RoBERTa-Satz
const defaultSpecialTokens = "<s>,<pad>,</s>,<unk>,<mask>"

// splitList - Zerlegt eine komma-separierte Liste, leere Eintraege entfallen
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// addPretokenizerFlags - Flags fuer die Segmentierung des Korpus
func addPretokenizerFlags(cmd *cobra.Command) {
	pre := envconfig.Pretokenizer()
	if pre == "" {
		pre = tokenizer.PretokenizerWhitespace
	}
	cmd.Flags().String("pretokenizer", pre, "Segmentation policy: whitespace or gpt2")
	cmd.Flags().Bool("add-prefix-space", false, "Treat the start of every line like a word after a space")
	cmd.Flags().String("normalization", "", "Unicode normal form applied before segmentation (nfc, nfkc)")
	cmd.Flags().String("json-field", "", "Read JSONL input and count only this string field")
	cmd.Flags().Int("workers", envconfig.NumWorkers(), "Number of counting workers")
}

// pretokenizerOptions - Liest die Pretokenizer-Flags
func pretokenizerOptions(cmd *cobra.Command) (tokenizer.Options, error) {
	var opts tokenizer.Options
	var err error
	if opts.Pretokenizer, err = cmd.Flags().GetString("pretokenizer"); err != nil {
		return opts, err
	}
	if opts.AddPrefixSpace, err = cmd.Flags().GetBool("add-prefix-space"); err != nil {
		return opts, err
	}
	if opts.Normalization, err = cmd.Flags().GetString("normalization"); err != nil {
		return opts, err
	}
	return opts, nil
}

// countOptions - Liest Worker und JSON-Feld fuer das Zaehlen
func countOptions(cmd *cobra.Command) (tokenizer.CountOptions, error) {
	var opts tokenizer.CountOptions
	var err error
	if opts.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
		return opts, err
	}
	if opts.JSONField, err = cmd.Flags().GetString("json-field"); err != nil {
		return opts, err
	}
	return opts, nil
}

// addModelFlag - Flag fuer das Artefakt-Verzeichnis
func addModelFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", envconfig.Models(), "Directory or vocab.json of a trained tokenizer")
}

// loadTokenizer - Laedt das Artefakt aus --model
func loadTokenizer(cmd *cobra.Command) (*tokenizer.Tokenizer, error) {
	path, err := cmd.Flags().GetString("model")
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	slog.Debug("tokenizer loaded", "path", path, "vocab_size", tok.VocabSize())
	return tok, nil
}

// addProcessorFlags - Flags fuer Template, Truncation und Padding
func addProcessorFlags(cmd *cobra.Command) {
	cmd.Flags().String("template", "bert", "Post-processing template: bert, roberta or none")
	cmd.Flags().String("cls", "<s>", "Token inserted before each sequence")
	cmd.Flags().String("sep", "</s>", "Token inserted after each sequence")
	cmd.Flags().Int("max-length", int(envconfig.MaxLength()), "Truncate encodings to this many tokens (0 disables)")
	cmd.Flags().Int("stride", 0, "Tokens repeated between overflow windows")
	cmd.Flags().String("truncation", string(processor.LongestFirst), "Truncation strategy: longest_first, only_first or only_second")
	cmd.Flags().Bool("pad", false, "Pad encodings to max length (or the longest in a batch)")
	cmd.Flags().String("pad-token", "<pad>", "Token used for padding")
}

// processorConfig - Baut die Processor-Konfiguration aus den Flags
func processorConfig(cmd *cobra.Command) (processor.Config, error) {
	var cfg processor.Config

	tmpl, _ := cmd.Flags().GetString("template")
	cls, _ := cmd.Flags().GetString("cls")
	sep, _ := cmd.Flags().GetString("sep")
	switch tmpl {
	case "bert":
		cfg.PostProcessor = processor.BertProcessing(sep, cls)
	case "roberta":
		cfg.PostProcessor = processor.RobertaProcessing(sep, cls)
	case "none", "":
	default:
		return cfg, fmt.Errorf("unknown template %q", tmpl)
	}

	maxLength, _ := cmd.Flags().GetInt("max-length")
	if maxLength > 0 {
		stride, _ := cmd.Flags().GetInt("stride")
		strategy, _ := cmd.Flags().GetString("truncation")
		cfg.Truncation = &processor.Truncation{
			MaxLength: maxLength,
			Stride:    stride,
			Strategy:  processor.Strategy(strategy),
		}
	}

	if pad, _ := cmd.Flags().GetBool("pad"); pad {
		padToken, _ := cmd.Flags().GetString("pad-token")
		cfg.Padding = &processor.Padding{Length: maxLength, PadToken: padToken}
	}
	return cfg, nil
}

// checkServerHeartbeat - Prueft ob ein bpe-Server erreichbar ist
func checkServerHeartbeat(cmd *cobra.Command, _ []string) error {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return err
	}
	if err := client.Heartbeat(cmd.Context()); err != nil {
		if strings.Contains(err.Error(), " refused") {
			return fmt.Errorf("bpe server not responding at %s, start it with 'bpe serve'", envconfig.Host())
		}
		return err
	}
	return nil
}

// progressLine - Einzeilige Fortschrittsanzeige, nur auf Terminals
type progressLine struct {
	w       io.Writer
	label   string
	percent int
	active  bool
}

func newProgressLine(w io.Writer, label string) *progressLine {
	p := &progressLine{w: w, label: label, percent: -1}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.active = true
	}
	return p
}

// Update schreibt nur bei einer Aenderung des Prozentwerts neu
func (p *progressLine) Update(done, total int) {
	if !p.active || total <= 0 {
		return
	}
	percent := done * 100 / total
	if percent == p.percent {
		return
	}
	p.percent = percent
	fmt.Fprintf(p.w, "\r%s %d/%d (%d%%)", p.label, done, total, percent)
}

// Stop beendet die Zeile
func (p *progressLine) Stop() {
	if p.active && p.percent >= 0 {
		fmt.Fprintln(p.w)
	}
}
