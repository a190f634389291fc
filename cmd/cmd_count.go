// cmd_count.go - Wort-Zaehlungen in der SQLite-Datenbank
// Hauptfunktionen: CountHandler, CorporaHandler, newCountCmd, newCorporaCmd
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/store"
	"github.com/7blacky7/bytebpe/tokenizer"
)

// CountHandler - Zaehlt Dateien und speichert die Zaehlungen unter --name
func CountHandler(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	dbPath, _ := cmd.Flags().GetString("db")
	appendCounts, _ := cmd.Flags().GetBool("append")
	specialList, _ := cmd.Flags().GetString("special-tokens")

	if name == "" {
		return errors.New("--name is required")
	}

	opts, err := pretokenizerOptions(cmd)
	if err != nil {
		return err
	}
	pre, err := tokenizer.NewPretokenizer(opts, splitList(specialList))
	if err != nil {
		return err
	}
	copts, err := countOptions(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	counts, err := tokenizer.CountFiles(ctx, pre, args, copts)
	if err != nil {
		return err
	}

	st := &store.Store{DBPath: dbPath}
	defer st.Close()

	if err := st.SaveCounts(name, counts, appendCounts); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "stored %d distinct words (%d total) as %q in %s\n", len(counts), counts.Total(), name, dbPath)
	return nil
}

// CorporaHandler - Listet gespeicherte Korpora oder loescht eines mit --delete
func CorporaHandler(cmd *cobra.Command, _ []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	del, _ := cmd.Flags().GetString("delete")

	st := &store.Store{DBPath: dbPath}
	defer st.Close()

	if del != "" {
		if err := st.DeleteCounts(del); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", del)
		return nil
	}

	corpora, err := st.Corpora()
	if err != nil {
		return err
	}

	var data [][]string
	for _, c := range corpora {
		data = append(data, []string{
			c.Name,
			strconv.Itoa(c.Words),
			strconv.Itoa(c.Total),
			c.UpdatedAt.Local().Format(time.DateTime),
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "WORDS", "TOTAL", "UPDATED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// newCountCmd - Erstellt den count Command
func newCountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count FILE...",
		Short: "Count words of a corpus and store them for later training",
		Args:  cobra.MinimumNArgs(1),
		RunE:  CountHandler,
	}

	cmd.Flags().String("name", "", "Name the counts are stored under")
	cmd.Flags().String("db", envconfig.DB(), "SQLite database")
	cmd.Flags().Bool("append", false, "Add to existing counts instead of replacing them")
	cmd.Flags().String("special-tokens", defaultSpecialTokens, "Comma separated special tokens excluded from counting")
	addPretokenizerFlags(cmd)

	return cmd
}

// newCorporaCmd - Erstellt den corpora Command
func newCorporaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpora",
		Short: "List stored word counts",
		Args:  cobra.ExactArgs(0),
		RunE:  CorporaHandler,
	}

	cmd.Flags().String("db", envconfig.DB(), "SQLite database")
	cmd.Flags().String("delete", "", "Delete the named counts")

	return cmd
}
