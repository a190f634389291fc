// cmd_runs.go - Protokoll der Trainingslaeufe
// Hauptfunktionen: RunsHandler, newRunsCmd
package cmd

import (
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/store"
)

// RunsHandler - Listet aufgezeichnete Trainingslaeufe, neueste zuerst
func RunsHandler(cmd *cobra.Command, _ []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	st := &store.Store{DBPath: dbPath}
	defer st.Close()

	runs, err := st.Runs()
	if err != nil {
		return err
	}

	var data [][]string
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}

		status := string(r.Status)
		if r.Error != "" {
			status += ": " + r.Error
		}

		corpus := r.Corpus
		if corpus == "" {
			corpus = "-"
		}

		data = append(data, []string{
			r.ID[:8],
			corpus,
			strconv.Itoa(r.VocabSize),
			strconv.Itoa(r.Merges),
			strconv.Itoa(r.FinalVocabSize),
			r.Output,
			r.StartedAt.Local().Format(time.DateTime),
			duration,
			status,
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "CORPUS", "TARGET", "MERGES", "VOCAB", "OUTPUT", "STARTED", "DURATION", "STATUS"})
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

// newRunsCmd - Erstellt den runs Command
func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		Args:  cobra.ExactArgs(0),
		RunE:  RunsHandler,
	}

	cmd.Flags().String("db", envconfig.DB(), "SQLite database")

	return cmd
}
