// cmd_encode.go - Encode und Decode mit einem trainierten Tokenizer
// Hauptfunktionen: EncodeHandler, DecodeHandler, newEncodeCmd, newDecodeCmd
//
// Mit --remote wird ein laufender 'bpe serve' ueber den API-Client genutzt.
package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/7blacky7/bytebpe/api"
	"github.com/7blacky7/bytebpe/processor"
)

// readTexts - Argumente oder, ohne Argumente, Zeilen von stdin
func readTexts(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var texts []string
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		texts = append(texts, scanner.Text())
	}
	return texts, scanner.Err()
}

// encodingOutput - Gemeinsame Ausgabeform fuer lokale und entfernte Encodings
type encodingOutput struct {
	Tokens []string
	IDs    []int32
}

func printEncoding(w io.Writer, e encodingOutput, idsOnly bool) {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = strconv.FormatInt(int64(id), 10)
	}

	if idsOnly {
		fmt.Fprintln(w, strings.Join(ids, " "))
		return
	}
	fmt.Fprintf(w, "tokens: %s\n", strings.Join(e.Tokens, " "))
	fmt.Fprintf(w, "ids:    %s\n", strings.Join(ids, " "))
}

// EncodeHandler - Kodiert Texte mit Template, Truncation und Padding
func EncodeHandler(cmd *cobra.Command, args []string) error {
	idsOnly, _ := cmd.Flags().GetBool("ids")
	asJSON, _ := cmd.Flags().GetBool("json")
	remote, _ := cmd.Flags().GetBool("remote")
	noSpecial, _ := cmd.Flags().GetBool("no-special")
	pair, _ := cmd.Flags().GetString("pair")

	texts, err := readTexts(cmd, args)
	if err != nil {
		return err
	}
	if pair != "" && len(texts) != 1 {
		return errors.New("--pair needs exactly one text")
	}

	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if remote {
		if err := checkServerHeartbeat(cmd, nil); err != nil {
			return err
		}
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}

		add := !noSpecial
		for _, text := range texts {
			req := &api.TokenizeRequest{Text: text, AddSpecialTokens: &add}
			if pair != "" {
				req.Pair = &pair
			}
			resp, err := client.Tokenize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				if err := enc.Encode(resp); err != nil {
					return err
				}
				continue
			}
			printEncoding(w, encodingOutput{Tokens: resp.Tokens, IDs: resp.IDs}, idsOnly)
		}
		return nil
	}

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

	var encodings []*processor.Encoding
	if pair != "" {
		e, err := proc.EncodePair(texts[0], pair, !noSpecial)
		if err != nil {
			return err
		}
		encodings = append(encodings, e)
	} else if encodings, err = proc.EncodeBatch(texts, !noSpecial); err != nil {
		return err
	}

	for _, e := range encodings {
		if asJSON {
			if err := enc.Encode(e); err != nil {
				return err
			}
			continue
		}
		printEncoding(w, encodingOutput{Tokens: e.Tokens, IDs: e.IDs}, idsOnly)
		if n := len(e.Overflowing); n > 0 && !idsOnly {
			fmt.Fprintf(w, "(%d overflow windows)\n", n)
		}
	}
	return nil
}

// parseIDs - Liest Token-IDs aus Argumenten; Kommas sind als Trenner erlaubt
func parseIDs(args []string) ([]int32, error) {
	var ids []int32
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			n, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid token id %q", field)
			}
			ids = append(ids, int32(n))
		}
	}
	return ids, nil
}

// DecodeHandler - Dekodiert Token-IDs zu Text
func DecodeHandler(cmd *cobra.Command, args []string) error {
	skip, _ := cmd.Flags().GetBool("skip-special")
	remote, _ := cmd.Flags().GetBool("remote")

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	var text string
	if remote {
		if err := checkServerHeartbeat(cmd, nil); err != nil {
			return err
		}
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return err
		}
		resp, err := client.Detokenize(cmd.Context(), &api.DetokenizeRequest{IDs: ids, SkipSpecialTokens: skip})
		if err != nil {
			return err
		}
		text = resp.Text
	} else {
		tok, err := loadTokenizer(cmd)
		if err != nil {
			return err
		}
		text = tok.Decode(ids, skip)
	}

	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// newEncodeCmd - Erstellt den encode Command
func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [TEXT...]",
		Short: "Encode text (arguments or stdin lines) to tokens",
		RunE:  EncodeHandler,
	}

	addModelFlag(cmd)
	addProcessorFlags(cmd)
	cmd.Flags().String("pair", "", "Second sequence, encoded as a pair with the text")
	cmd.Flags().Bool("no-special", false, "Do not add the template's special tokens")
	cmd.Flags().Bool("ids", false, "Print only token ids")
	cmd.Flags().Bool("json", false, "Print the full encoding as JSON")
	cmd.Flags().Bool("remote", false, "Use a running bpe server (BPE_HOST)")

	return cmd
}

// newDecodeCmd - Erstellt den decode Command
func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode ID...",
		Short: "Decode token ids to text",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DecodeHandler,
	}

	addModelFlag(cmd)
	cmd.Flags().Bool("skip-special", false, "Leave out special tokens")
	cmd.Flags().Bool("remote", false, "Use a running bpe server (BPE_HOST)")

	return cmd
}
