// cmd.go - Haupt-CLI fuer bpe
// Hauptfunktionen: NewCLI, appendEnvDocs
//
// Die einzelnen Commands sind ausgelagert:
// - cmd_train.go: train
// - cmd_count.go: count, corpora
// - cmd_encode.go: encode, decode
// - cmd_inspect.go: inspect
// - cmd_serve.go: serve, version
// - cmd_runs.go: runs
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/logutil"
)

// appendEnvDocs - Fuegt Environment-Variablen zur Hilfe hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "bpe",
		Short:         "Byte-level BPE tokenizer trainer and encoder",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := envconfig.LoadDotEnv(); err != nil {
				return fmt.Errorf("load .env: %w", err)
			}
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	trainCmd := newTrainCmd()
	countCmd := newCountCmd()
	corporaCmd := newCorporaCmd()
	encodeCmd := newEncodeCmd()
	decodeCmd := newDecodeCmd()
	inspectCmd := newInspectCmd()
	serveCmd := newServeCmd()
	runsCmd := newRunsCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()

	for _, cmd := range []*cobra.Command{
		trainCmd,
		countCmd,
		corporaCmd,
		encodeCmd,
		decodeCmd,
		inspectCmd,
		serveCmd,
		runsCmd,
	} {
		switch cmd {
		case trainCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["BPE_DEBUG"],
				envVars["BPE_DB"],
				envVars["BPE_NUM_WORKERS"],
				envVars["BPE_PRETOKENIZER"],
				envVars["BPE_VERIFY"],
			})
		case countCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["BPE_DB"],
				envVars["BPE_NUM_WORKERS"],
				envVars["BPE_PRETOKENIZER"],
			})
		case corporaCmd, runsCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["BPE_DB"]})
		case encodeCmd, decodeCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["BPE_HOST"],
				envVars["BPE_MODELS"],
				envVars["BPE_MAX_LENGTH"],
			})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["BPE_DEBUG"],
				envVars["BPE_HOST"],
				envVars["BPE_MODELS"],
				envVars["BPE_ORIGINS"],
				envVars["BPE_MAX_LENGTH"],
			})
		default:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["BPE_MODELS"]})
		}
	}

	rootCmd.AddCommand(
		trainCmd,
		countCmd,
		corporaCmd,
		encodeCmd,
		decodeCmd,
		inspectCmd,
		serveCmd,
		runsCmd,
	)

	return rootCmd
}
