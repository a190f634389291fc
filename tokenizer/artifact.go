// artifact.go - Speichern und Laden (vocab.json + merges.txt)
//
// Enthält:
// - Save: schreibt vocab.json (nach ID sortiert), merges.txt, tokenizer_config.json
// - Load, LoadFiles: lesen und validieren das Artefakt
//
// Beschädigte Artefakte werden vor dem ersten Encode abgelehnt (ErrCorruptArtifact).

package tokenizer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	vocabFile   = "vocab.json"
	mergesFile  = "merges.txt"
	configFile  = "tokenizer_config.json"
	mergesMagic = "#version: 0.2"
)

// artifactConfig is the content of tokenizer_config.json.
type artifactConfig struct {
	Options
	UnknownToken  string   `json:"unk_token,omitempty"`
	SpecialTokens []string `json:"special_tokens,omitempty"`
}

func artifactName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "-" + name
}

// Save writes the vocabulary to dir. A non-empty prefix names the files
// "<prefix>-vocab.json", "<prefix>-merges.txt" and so on.
func (v *Vocabulary) Save(dir, prefix string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	om := orderedmap.New[string, int32]()
	for id, tok := range v.Values {
		om.Set(tok, int32(id))
	}
	var vocabData bytes.Buffer
	enc := json.NewEncoder(&vocabData)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(om); err != nil {
		return fmt.Errorf("failed to encode vocab: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, artifactName(prefix, vocabFile)), vocabData.Bytes(), 0o644); err != nil {
		return err
	}

	var merges bytes.Buffer
	merges.WriteString(mergesMagic + "\n")
	for _, rule := range v.rules {
		merges.WriteString(v.Values[rule.Left])
		merges.WriteByte(' ')
		merges.WriteString(v.Values[rule.Right])
		merges.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(dir, artifactName(prefix, mergesFile)), merges.Bytes(), 0o644); err != nil {
		return err
	}

	cfg := artifactConfig{Options: v.opts, SpecialTokens: v.specials}
	if v.UNK >= 0 {
		cfg.UnknownToken = v.Values[v.UNK]
	}
	cfgData, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, artifactName(prefix, configFile)), cfgData, 0o644)
}

// LoadOptions controls Load.
type LoadOptions struct {
	// UnknownToken is reserved if the artifact does not name one.
	// Defaults to DefaultUnknownToken.
	UnknownToken string
}

// Load loads a vocabulary from a path which can be:
// - A directory containing vocab.json + merges.txt (or one prefixed pair)
// - A vocab.json file with merges.txt beside it
func Load(path string, opts LoadOptions) (*Vocabulary, error) {
	vocabPath, err := resolveVocabPath(path)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(vocabPath, vocabFile)
	return loadFiles(vocabPath, base+mergesFile, base+configFile, opts)
}

// LoadFiles loads a vocabulary from explicit vocab.json and merges.txt paths.
func LoadFiles(vocabPath, mergesPath string, opts LoadOptions) (*Vocabulary, error) {
	return loadFiles(vocabPath, mergesPath, strings.TrimSuffix(vocabPath, vocabFile)+configFile, opts)
}

func resolveVocabPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		if !strings.HasSuffix(path, vocabFile) {
			return "", fmt.Errorf("%s: expected a %s file", path, vocabFile)
		}
		return path, nil
	}

	if p := filepath.Join(path, vocabFile); fileExists(p) {
		return p, nil
	}

	matches, err := filepath.Glob(filepath.Join(path, "*-"+vocabFile))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s: found %d vocabularies, pass one %s explicitly", path, len(matches), vocabFile)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func loadFiles(vocabPath, mergesPath, configPath string, opts LoadOptions) (*Vocabulary, error) {
	vocabData, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab: %w", err)
	}

	om := orderedmap.New[string, int32]()
	if err := json.Unmarshal(vocabData, om); err != nil {
		return nil, fmt.Errorf("failed to parse vocab: %w", err)
	}

	v := &Vocabulary{
		Values:  make([]string, om.Len()),
		Reverse: make(map[string]int32, om.Len()),
		Merges:  make(map[string]int),
		special: make(map[string]int32),
		UNK:     -1,
	}

	seen := make([]bool, om.Len())
	for p := om.Oldest(); p != nil; p = p.Next() {
		id := p.Value
		if id < 0 || int(id) >= len(v.Values) {
			return nil, fmt.Errorf("%w: %s: id %d of %q is not dense in [0, %d)", ErrCorruptArtifact, vocabPath, id, p.Key, len(v.Values))
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s: id %d assigned twice", ErrCorruptArtifact, vocabPath, id)
		}
		seen[id] = true
		v.Values[id] = p.Key
		v.Reverse[p.Key] = id
	}

	var cfg artifactConfig
	switch data, err := os.ReadFile(configPath); {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse tokenizer config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	v.opts = cfg.Options

	// specials and the unknown token must exist before merges resolve ids
	v.AddSpecialTokens(cfg.SpecialTokens...)
	unk := opts.UnknownToken
	if cfg.UnknownToken != "" {
		unk = cfg.UnknownToken
	}
	v.ReserveUnknown(unk)

	if err := v.loadMerges(mergesPath); err != nil {
		return nil, err
	}

	return v, nil
}

// loadMerges reads merges.txt. Each side of a merge must be an alphabet
// symbol or the product of an earlier merge.
func (v *Vocabulary) loadMerges(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read merges: %w", err)
	}
	defer f.Close()

	defined := make(map[string]struct{}, AlphabetSize)
	for _, s := range AlphabetSymbols() {
		defined[s] = struct{}{}
	}

	lookup := func(s string) int32 {
		if id, ok := v.Reverse[s]; ok {
			return id
		}
		return v.UNK
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || (lineNo == 1 && strings.HasPrefix(line, "#version")) {
			continue
		}

		left, right, ok := strings.Cut(line, " ")
		if !ok || left == "" || right == "" || strings.Contains(right, " ") {
			return fmt.Errorf("%w: %s:%d: malformed merge %q", ErrCorruptArtifact, path, lineNo, line)
		}

		rank := len(v.rules)
		for _, side := range []string{left, right} {
			if _, ok := defined[side]; !ok {
				return fmt.Errorf("%w: %s:%d: merge rank %d uses %q before it is defined", ErrCorruptArtifact, path, lineNo, rank, side)
			}
		}

		merged := left + right
		defined[merged] = struct{}{}

		key := left + " " + right
		if _, dup := v.Merges[key]; dup {
			return fmt.Errorf("%w: %s:%d: duplicate merge %q", ErrCorruptArtifact, path, lineNo, key)
		}
		v.Merges[key] = rank
		v.rules = append(v.rules, MergeRule{
			Rank:   rank,
			Left:   lookup(left),
			Right:  lookup(right),
			Result: lookup(merged),
		})
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read merges: %w", err)
	}
	return nil
}
