// cmd_serve.go - Server-Start und Versionsanzeige
// Hauptfunktionen: RunServer, versionHandler, newServeCmd
package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/api"
	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/processor"
	"github.com/7blacky7/bytebpe/server"
	"github.com/7blacky7/bytebpe/version"
)

// RunServer - Laedt den Tokenizer und startet den HTTP-Server
func RunServer(cmd *cobra.Command, _ []string) error {
	tok, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}
	cfg, err := processorConfig(cmd)
	if err != nil {
		return err
	}
	proc, err := processor.New(tok, cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		return err
	}

	err = server.Serve(ln, tok, proc)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// versionHandler - Zeigt Client- und Server-Version
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Println("Warning: could not connect to a running bpe server")
	}

	if serverVersion != "" {
		fmt.Printf("bpe server version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Printf("Warning: client version is %s\n", version.Version)
	}
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve a trained tokenizer over HTTP",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}

	addModelFlag(cmd)
	addProcessorFlags(cmd)

	return cmd
}
