// routes_serve.go - Server-Start und Lifecycle-Management
// Enthaelt: Serve() - startet den HTTP-Server bis SIGINT/SIGTERM

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/logutil"
	"github.com/7blacky7/bytebpe/processor"
	"github.com/7blacky7/bytebpe/tokenizer"
	"github.com/7blacky7/bytebpe/version"
)

// Serve startet den HTTP-Server auf ln mit dem geladenen Tokenizer
func Serve(ln net.Listener, tok *tokenizer.Tokenizer, proc *processor.Processor) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	s := NewServer(tok, proc)
	s.addr = ln.Addr()

	h, err := s.GenerateRoutes()
	if err != nil {
		return err
	}

	ctx, done := context.WithCancel(context.Background())
	defer done()

	slog.Info(fmt.Sprintf("Listening on %s (version %s)", ln.Addr(), version.Version),
		"vocab_size", tok.VocabSize(), "merges", len(tok.Vocabulary().MergeRules()))
	srvr := &http.Server{Handler: h}

	// auf ctrl+c warten
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		srvr.Close()
		done()
	}()

	err = srvr.Serve(ln)
	// Wurde der Server vom Signal-Handler geschlossen, auf ctx warten,
	// sonst den Fehler direkt zurueckgeben
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-ctx.Done()
	return nil
}
