// cmd_inspect.go - Anzeige von Vokabular und Merge-Tabelle
// Hauptfunktionen: InspectHandler, lookupToken, suggestTokens
package cmd

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/tokenizer"
)

// maximale Anzeigebreite eines Tokens in Tabellen
const tokenWidth = 32

func displayToken(s string) string {
	return runewidth.Truncate(s, tokenWidth, "…")
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// InspectHandler - Zeigt Kenndaten des Vokabulars oder sucht Tokens
func InspectHandler(cmd *cobra.Command, args []string) error {
	tok, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}
	vocab := tok.Vocabulary()
	w := cmd.OutOrStdout()

	if len(args) > 0 {
		table := newTable(w, []string{"QUERY", "TOKEN", "ID", "NOTE"})
		for _, arg := range args {
			table.Append(lookupToken(vocab, arg))
		}
		table.Render()
		return nil
	}

	opts := vocab.Options()
	pre := opts.Pretokenizer
	if pre == "" {
		pre = tokenizer.PretokenizerWhitespace
	}
	unk := "-"
	if s, ok := vocab.IDToToken(vocab.UNK); ok {
		unk = s
	}

	table := newTable(w, []string{"PROPERTY", "VALUE"})
	table.AppendBulk([][]string{
		{"vocab size", strconv.Itoa(vocab.VocabSize())},
		{"merges", strconv.Itoa(len(vocab.MergeRules()))},
		{"special tokens", strings.Join(vocab.SpecialTokens(), " ")},
		{"unknown token", unk},
		{"pretokenizer", pre},
		{"add prefix space", strconv.FormatBool(opts.AddPrefixSpace)},
	})
	if opts.Normalization != "" {
		table.Append([]string{"normalization", opts.Normalization})
	}
	table.Render()

	n, _ := cmd.Flags().GetInt("merges")
	if n <= 0 {
		return nil
	}

	rules := vocab.MergeRules()
	rules = rules[:min(n, len(rules))]

	fmt.Fprintln(w)
	table = newTable(w, []string{"RANK", "LEFT", "RIGHT", "RESULT", "ID"})
	for _, r := range rules {
		table.Append([]string{
			strconv.Itoa(r.Rank),
			displayToken(vocab.Values[r.Left]),
			displayToken(vocab.Values[r.Right]),
			displayToken(vocab.Values[r.Result]),
			strconv.Itoa(int(r.Result)),
		})
	}
	table.Render()
	return nil
}

// lookupToken - Sucht q als Token, als ID oder in Alphabet-Schreibweise
// (" the" findet "Ġthe")
func lookupToken(vocab *tokenizer.Vocabulary, q string) []string {
	if id, ok := vocab.TokenToID(q); ok {
		return []string{q, displayToken(q), strconv.Itoa(int(id)), specialNote(vocab, id)}
	}

	if n, err := strconv.ParseInt(q, 10, 32); err == nil {
		if s, ok := vocab.IDToToken(int32(n)); ok {
			return []string{q, displayToken(s), q, specialNote(vocab, int32(n))}
		}
		return []string{q, "-", "-", "id out of range"}
	}

	if enc := tokenizer.EncodeBytes(q); enc != q {
		if id, ok := vocab.TokenToID(enc); ok {
			return []string{q, displayToken(enc), strconv.Itoa(int(id)), specialNote(vocab, id)}
		}
	}

	note := "not found"
	if s := suggestTokens(vocab, q, 3); len(s) > 0 {
		note += ", did you mean " + strings.Join(s, ", ")
	}
	return []string{q, "-", "-", note}
}

func specialNote(vocab *tokenizer.Vocabulary, id int32) string {
	if vocab.IsSpecial(id) {
		return "special"
	}
	return ""
}

// suggestTokens - Die n naechsten Tokens nach Levenshtein-Distanz
func suggestTokens(vocab *tokenizer.Vocabulary, q string, n int) []string {
	type candidate struct {
		token string
		dist  int
	}

	target := tokenizer.EncodeBytes(q)
	limit := max(len([]rune(target))/2, 1)

	var candidates []candidate
	for _, s := range vocab.Values {
		if d := levenshtein.ComputeDistance(target, s); d <= limit {
			candidates = append(candidates, candidate{s, d})
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.dist, b.dist)
	})

	var out []string
	for _, c := range candidates[:min(n, len(candidates))] {
		out = append(out, strconv.Quote(c.token))
	}
	return out
}

// newInspectCmd - Erstellt den inspect Command
func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [TOKEN|ID...]",
		Short: "Show vocabulary details or look up tokens",
		RunE:  InspectHandler,
	}

	addModelFlag(cmd)
	cmd.Flags().Int("merges", 0, "Also list the first N merge rules")

	return cmd
}
