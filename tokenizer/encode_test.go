// encode_test.go - Tests fuer Encoder, Decoder und Tokenizer
package tokenizer

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newFixtureTokenizer(t *testing.T, opts Options, specials ...string) *Tokenizer {
	t.Helper()
	trainer := Trainer{VocabSize: AlphabetSize + 2 + len(specials), SpecialTokens: specials, Options: opts}
	v, err := trainer.Train(t.Context(), fixtureCounts())
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	tok, err := New(v)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	return tok
}

func TestEncodeWord(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{})

	got := tok.Vocabulary().EncodeWord("newest")
	want := []Token{
		{ID: 'n', Value: "n", Offset: [2]int{0, 1}},
		{ID: 'e', Value: "e", Offset: [2]int{1, 2}},
		{ID: 'w', Value: "w", Offset: [2]int{2, 3}},
		{ID: 257, Value: "est", Offset: [2]int{3, 6}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EncodeWord mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{}, "<s>", "</s>")

	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{"leer", "", nil},
		{
			name:  "unbekanntes byte",
			input: "\x00",
			want:  []Token{{ID: 0, Value: "Ā", Offset: [2]int{0, 1}}},
		},
		{
			name:  "leerzeichen marker",
			input: "a test",
			want: []Token{
				{ID: 'a', Value: "a", Offset: [2]int{0, 1}},
				{ID: ' ', Value: "Ġ", Offset: [2]int{1, 2}},
				{ID: 't', Value: "t", Offset: [2]int{2, 3}},
				{ID: 257, Value: "est", Offset: [2]int{3, 6}},
			},
		},
		{
			name:  "special tokens",
			input: "<s>test</s>",
			want: []Token{
				{ID: 258, Value: "<s>", Offset: [2]int{0, 3}},
				{ID: 't', Value: "t", Offset: [2]int{3, 4}},
				{ID: 257, Value: "est", Offset: [2]int{4, 7}},
				{ID: 259, Value: "</s>", Offset: [2]int{7, 11}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Tokenize(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizePrefixSpaceOffsets(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{AddPrefixSpace: true})

	got := tok.Tokenize("es")
	want := []Token{
		{ID: ' ', Value: "Ġ", Offset: [2]int{0, 0}},
		{ID: 256, Value: "es", Offset: [2]int{0, 2}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

// TestRankPriority prueft, dass ein frueherer Merge Vorrang vor einem weiter links liegenden hat
func TestRankPriority(t *testing.T) {
	v := newVocabulary(Options{})
	bc, _ := v.addMerge('b', 'c')
	v.addMerge('a', 'b')

	var got []string
	for _, tok := range v.EncodeWord("abc") {
		got = append(got, tok.Value)
	}
	if diff := cmp.Diff([]string{"a", "bc"}, got); diff != "" {
		t.Errorf("EncodeWord(abc) mismatch (-want +got):\n%s", diff)
	}

	// rang 2 baut auf rang 0 auf
	v.addMerge('a', bc.Result)
	got = got[:0]
	for _, tok := range v.EncodeWord("abcab") {
		got = append(got, tok.Value)
	}
	if diff := cmp.Diff([]string{"abc", "ab"}, got); diff != "" {
		t.Errorf("EncodeWord(abcab) mismatch (-want +got):\n%s", diff)
	}
}

// TestEncodeIdempotent prueft, dass die dekodierten Tokens wieder dieselben IDs ergeben
func TestEncodeIdempotent(t *testing.T) {
	p := newTestPretokenizer(t)
	trainer := Trainer{VocabSize: 400, SpecialTokens: []string{"<s>", "<unk>"}}
	v, err := trainer.Train(t.Context(), CountText(p, sampleText))
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	tok, err := New(v)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}

	inputs := []string{
		"the quick brown fox",
		"<s>lazy dogs  jump\n\tover  ",
		"unseen wörds ✓ \xff\xfe",
		"Здраво, тест!",
	}
	for _, in := range inputs {
		tokens := tok.Tokenize(in)
		if got := DecodeTokens(tokens); got != in {
			t.Errorf("DecodeTokens(Tokenize(%q)) = %q", in, got)
		}
		if got := tok.Decode(tok.Encode(in), false); got != in {
			t.Errorf("Decode(Encode(%q)) = %q", in, got)
		}
		for _, tk := range tokens {
			if got := in[tk.Offset[0]:tk.Offset[1]]; got != DecodeTokens([]Token{tk}) {
				t.Errorf("Offset %v von %q zeigt auf %q", tk.Offset, tk.Value, got)
			}
		}

		again := tok.Encode(DecodeTokens(tokens))
		if diff := cmp.Diff(tok.Encode(in), again); diff != "" {
			t.Errorf("erneutes Encode(%q) mismatch (-first +second):\n%s", in, diff)
		}
	}
}

func TestDecode(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{}, "<s>", "</s>")
	ids := []int32{258, 'n', 'e', 'w', 257, 9999, -1, 259}

	if got, want := tok.Decode(ids, false), "<s>newest</s>"; got != want {
		t.Errorf("Decode = %q, erwartet %q", got, want)
	}
	if got, want := tok.Decode(ids, true), "newest"; got != want {
		t.Errorf("Decode(skipSpecial) = %q, erwartet %q", got, want)
	}
}

// TestEncodeParallel prueft, dass grosse Inputs (parallel) dasselbe Ergebnis liefern
func TestEncodeParallel(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{})

	var lines []string
	for i := range 400 {
		lines = append(lines, strings.Repeat("newest widest lower ", i%7+1)+"\n")
	}
	text := strings.Join(lines, "")
	if len(text) < parallelThreshold {
		t.Fatalf("Testtext zu kurz: %d", len(text))
	}

	var want []int32
	for _, line := range lines {
		want = append(want, tok.Encode(line)...)
	}
	if diff := cmp.Diff(want, tok.Encode(text)); diff != "" {
		t.Errorf("paralleles Encode mismatch (-want +got):\n%s", diff)
	}

	tokens := tok.Tokenize(text)
	if last := tokens[len(tokens)-1]; last.Offset[1] != len(text) {
		t.Errorf("letzter Offset = %v, erwartet Ende %d", last.Offset, len(text))
	}
}

func TestEncodeConcurrent(t *testing.T) {
	tok := newFixtureTokenizer(t, Options{Pretokenizer: PretokenizerGPT2})
	want := tok.Encode("newest and widest")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				if got := tok.Encode("newest and widest"); !cmp.Equal(want, got) {
					t.Errorf("Encode = %v, erwartet %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

// TestEncodeMissingProduct prueft den UNK-Fallback fuer ein unvollstaendiges Vokabular
func TestEncodeMissingProduct(t *testing.T) {
	dir := t.TempDir()
	if err := newVocabulary(Options{}).Save(dir, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// "es" fehlt in vocab.json
	if err := os.WriteFile(filepath.Join(dir, mergesFile), []byte("#version: 0.2\ne s\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tok, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	unk := tok.Vocabulary().UNK

	got := tok.Tokenize("nest")
	want := []Token{
		{ID: 'n', Value: "n", Offset: [2]int{0, 1}},
		{ID: unk, Value: "es", Offset: [2]int{1, 3}},
		{ID: 't', Value: "t", Offset: [2]int{3, 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}

	// ohne UNK werden die Basis-Bytes ausgegeben
	v := newVocabulary(Options{})
	v.addMerge('e', 's')
	delete(v.Reverse, "es")
	var ids []int32
	for _, tk := range v.EncodeWord("nest") {
		ids = append(ids, tk.ID)
	}
	if diff := cmp.Diff([]int32{'n', 'e', 's', 't'}, ids); diff != "" {
		t.Errorf("Byte-Fallback mismatch (-want +got):\n%s", diff)
	}
}
