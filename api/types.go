// types.go - Request- und Response-Typen der bpe API
// Enthaelt: StatusError, Tokenize*, Detokenize*, VocabResponse, Lookup*
package api

import "fmt"

// StatusError is an error with an HTTP status code and message.
type StatusError struct {
	StatusCode   int
	Status       string
	ErrorMessage string `json:"error"`
}

func (e StatusError) Error() string {
	switch {
	case e.Status != "" && e.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", e.Status, e.ErrorMessage)
	case e.Status != "":
		return e.Status
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		// this should not happen
		return "something went wrong, please see the bpe server logs for details"
	}
}

// TokenizeRequest is the request passed to [Client.Tokenize].
type TokenizeRequest struct {
	Text string `json:"text"`

	// Pair is an optional second sequence.
	Pair *string `json:"pair,omitempty"`

	// AddSpecialTokens applies the server's template. Defaults to true.
	AddSpecialTokens *bool `json:"add_special_tokens,omitempty"`
}

// TokenizeResponse is the response returned by [Client.Tokenize].
type TokenizeResponse struct {
	Tokens            []string `json:"tokens"`
	IDs               []int32  `json:"ids"`
	Offsets           [][2]int `json:"offsets"`
	TypeIDs           []int    `json:"type_ids,omitempty"`
	SpecialTokensMask []int    `json:"special_tokens_mask,omitempty"`
	AttentionMask     []int    `json:"attention_mask"`
}

// DetokenizeRequest is the request passed to [Client.Detokenize].
type DetokenizeRequest struct {
	IDs               []int32 `json:"ids"`
	SkipSpecialTokens bool    `json:"skip_special_tokens,omitempty"`
}

// DetokenizeResponse is the response returned by [Client.Detokenize].
type DetokenizeResponse struct {
	Text string `json:"text"`
}

// VocabResponse is the response returned by [Client.Vocab].
type VocabResponse struct {
	VocabSize     int      `json:"vocab_size"`
	Merges        int      `json:"merges"`
	SpecialTokens []string `json:"special_tokens"`
	UnknownToken  string   `json:"unknown_token,omitempty"`
}

// LookupRequest asks for either a token or an id. When both are set the
// token wins.
type LookupRequest struct {
	Token *string `json:"token,omitempty"`
	ID    *int32  `json:"id,omitempty"`
}

// LookupResponse is the response returned by [Client.Lookup].
type LookupResponse struct {
	Token   string `json:"token"`
	ID      int32  `json:"id"`
	Special bool   `json:"special,omitempty"`
}
