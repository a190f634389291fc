// Package api - API-Methoden des Clients.
// Dieses Modul enthaelt Tokenize, Detokenize, Vocab, Lookup, Heartbeat und Version.

package api

import (
	"context"
	"net/http"
)

// Tokenize encodes text (and an optional pair) with the server's processor.
func (c *Client) Tokenize(ctx context.Context, req *TokenizeRequest) (*TokenizeResponse, error) {
	var resp TokenizeResponse
	if err := c.do(ctx, http.MethodPost, "/api/tokenize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detokenize decodes token ids back to text.
func (c *Client) Detokenize(ctx context.Context, req *DetokenizeRequest) (*DetokenizeResponse, error) {
	var resp DetokenizeResponse
	if err := c.do(ctx, http.MethodPost, "/api/detokenize", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Vocab returns vocabulary size, merge count and special tokens.
func (c *Client) Vocab(ctx context.Context) (*VocabResponse, error) {
	var resp VocabResponse
	if err := c.do(ctx, http.MethodGet, "/api/vocab", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Lookup resolves a token to its id or an id to its token. A miss is
// returned as a [StatusError] with status 404.
func (c *Client) Lookup(ctx context.Context, req *LookupRequest) (*LookupResponse, error) {
	var resp LookupResponse
	if err := c.do(ctx, http.MethodPost, "/api/lookup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Heartbeat checks if the server has started and is responsive; if yes, it
// returns nil, otherwise an error.
func (c *Client) Heartbeat(ctx context.Context) error {
	if err := c.do(ctx, http.MethodHead, "/", nil, nil); err != nil {
		return err
	}
	return nil
}

// Version returns the bpe server version as a string.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version struct {
		Version string `json:"version"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &version); err != nil {
		return "", err
	}

	return version.Version, nil
}
