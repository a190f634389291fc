// Package server - HTTP-Router und Handler fuer den bpe Tokenizer-Dienst
// Beinhaltet: Server-Struct, Router-Registrierung, Tokenize/Detokenize/Vocab/Lookup
package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/7blacky7/bytebpe/api"
	"github.com/7blacky7/bytebpe/envconfig"
	"github.com/7blacky7/bytebpe/processor"
	"github.com/7blacky7/bytebpe/tokenizer"
	"github.com/7blacky7/bytebpe/version"
)

var mode string = gin.DebugMode

// Server haelt den geladenen Tokenizer und den Processor fuer alle Handler
type Server struct {
	addr net.Addr
	tok  *tokenizer.Tokenizer
	proc *processor.Processor
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// NewServer erstellt einen Server; proc muss auf tok aufbauen
func NewServer(tok *tokenizer.Tokenizer, proc *processor.Processor) *Server {
	return &Server{tok: tok, proc: proc}
}

// GenerateRoutes registriert alle Routen mit CORS und Host-Pruefung
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		allowedHostsMiddleware(s.addr),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "bpe is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "bpe is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Tokenizer
	r.POST("/api/tokenize", s.TokenizeHandler)
	r.POST("/api/detokenize", s.DetokenizeHandler)
	r.GET("/api/vocab", s.VocabHandler)
	r.POST("/api/lookup", s.LookupHandler)

	return r, nil
}

// bindJSON liest den Request-Body; bei Fehlern ist die Antwort bereits geschrieben
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	switch {
	case errors.Is(err, io.EOF):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
		return false
	case err != nil:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// TokenizeHandler kodiert Text (optional als Paar) mit Template, Truncation und Padding
func (s *Server) TokenizeHandler(c *gin.Context) {
	var req api.TokenizeRequest
	if !bindJSON(c, &req) {
		return
	}

	addSpecial := true
	if req.AddSpecialTokens != nil {
		addSpecial = *req.AddSpecialTokens
	}

	var enc *processor.Encoding
	var err error
	if req.Pair != nil {
		enc, err = s.proc.EncodePair(req.Text, *req.Pair, addSpecial)
	} else {
		enc, err = s.proc.Encode(req.Text, addSpecial)
	}
	if err != nil {
		switch {
		case errors.Is(err, processor.ErrSequenceTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("tokenize failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, api.TokenizeResponse{
		Tokens:            enc.Tokens,
		IDs:               enc.IDs,
		Offsets:           enc.Offsets,
		TypeIDs:           enc.TypeIDs,
		SpecialTokensMask: enc.SpecialTokensMask,
		AttentionMask:     enc.AttentionMask,
	})
}

// DetokenizeHandler dekodiert Token-IDs zu Text
func (s *Server) DetokenizeHandler(c *gin.Context) {
	var req api.DetokenizeRequest
	if !bindJSON(c, &req) {
		return
	}

	c.JSON(http.StatusOK, api.DetokenizeResponse{Text: s.tok.Decode(req.IDs, req.SkipSpecialTokens)})
}

// VocabHandler liefert Groesse, Merge-Anzahl und Special Tokens
func (s *Server) VocabHandler(c *gin.Context) {
	vocab := s.tok.Vocabulary()

	resp := api.VocabResponse{
		VocabSize:     vocab.VocabSize(),
		Merges:        len(vocab.MergeRules()),
		SpecialTokens: vocab.SpecialTokens(),
	}
	if unk, ok := vocab.IDToToken(vocab.UNK); ok {
		resp.UnknownToken = unk
	}
	c.JSON(http.StatusOK, resp)
}

// LookupHandler loest ein Token zu seiner ID auf oder umgekehrt
func (s *Server) LookupHandler(c *gin.Context) {
	var req api.LookupRequest
	if !bindJSON(c, &req) {
		return
	}

	var resp api.LookupResponse
	switch {
	case req.Token != nil:
		id, ok := s.tok.TokenToID(*req.Token)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
			return
		}
		resp = api.LookupResponse{Token: *req.Token, ID: id}
	case req.ID != nil:
		tok, ok := s.tok.IDToToken(*req.ID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "id out of range"})
			return
		}
		resp = api.LookupResponse{Token: tok, ID: *req.ID}
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token or id is required"})
		return
	}

	resp.Special = s.tok.Vocabulary().IsSpecial(resp.ID)
	c.JSON(http.StatusOK, resp)
}
