// processor_test.go - Tests fuer Template, Truncation und Padding
package processor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/7blacky7/bytebpe/tokenizer"
)

const (
	idS    = 258
	idPad  = 259
	idEndS = 260
)

// newTestModel trainiert das Referenz-Korpus mit zwei Merges ("es", "est")
func newTestModel(t *testing.T) *tokenizer.Tokenizer {
	t.Helper()
	trainer := tokenizer.Trainer{
		VocabSize:     tokenizer.AlphabetSize + 2 + 5,
		SpecialTokens: []string{"<s>", "<pad>", "</s>", "<unk>", "<mask>"},
	}
	v, err := trainer.Train(t.Context(), tokenizer.WordCounts{"low": 5, "lower": 2, "newest": 6, "widest": 3})
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	tok, err := tokenizer.New(v)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	return tok
}

func newTestProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := New(newTestModel(t), cfg)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	return p
}

func TestBertSingle(t *testing.T) {
	p := newTestProcessor(t, Config{PostProcessor: BertProcessing("</s>", "<s>")})

	got, err := p.Encode("newest", true)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	want := &Encoding{
		IDs:               []int32{idS, 'n', 'e', 'w', 257, idEndS},
		Tokens:            []string{"<s>", "n", "e", "w", "est", "</s>"},
		Offsets:           [][2]int{{0, 0}, {0, 1}, {1, 2}, {2, 3}, {3, 6}, {0, 0}},
		TypeIDs:           []int{0, 0, 0, 0, 0, 0},
		SpecialTokensMask: []int{1, 0, 0, 0, 0, 1},
		AttentionMask:     []int{1, 1, 1, 1, 1, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Encode mismatch (-want +got):\n%s", diff)
	}

	plain, err := p.Encode("newest", false)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	if diff := cmp.Diff([]int32{'n', 'e', 'w', 257}, plain.IDs); diff != "" {
		t.Errorf("Encode ohne Special Tokens mismatch (-want +got):\n%s", diff)
	}

	empty, err := p.Encode("", true)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	if diff := cmp.Diff([]int32{idS, idEndS}, empty.IDs); diff != "" {
		t.Errorf("leerer Input mismatch (-want +got):\n%s", diff)
	}
}

func TestTemplatesPair(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     *Template
		wantIDs  []int32
		wantType []int
	}{
		{
			name:     "bert",
			tmpl:     BertProcessing("</s>", "<s>"),
			wantIDs:  []int32{idS, 'l', 'o', 'w', idEndS, 'n', 'e', 'w', 257, idEndS},
			wantType: []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1},
		},
		{
			name:     "roberta",
			tmpl:     RobertaProcessing("</s>", "<s>"),
			wantIDs:  []int32{idS, 'l', 'o', 'w', idEndS, idEndS, 'n', 'e', 'w', 257, idEndS},
			wantType: []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:     "ohne template",
			tmpl:     nil,
			wantIDs:  []int32{'l', 'o', 'w', 'n', 'e', 'w', 257},
			wantType: []int{0, 0, 0, 1, 1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor(t, Config{PostProcessor: tt.tmpl})
			got, err := p.EncodePair("low", "newest", true)
			if err != nil {
				t.Fatalf("Unerwarteter Fehler: %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, got.IDs); diff != "" {
				t.Errorf("IDs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantType, got.TypeIDs); diff != "" {
				t.Errorf("TypeIDs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// "newest widest" ergibt 9 Tokens: n e w est Ġ w i d est
func TestTruncationSingle(t *testing.T) {
	tests := []struct {
		name         string
		trunc        Truncation
		wantIDs      []int32
		wantOverflow [][]int32
	}{
		{
			name:    "rechts",
			trunc:   Truncation{MaxLength: 5},
			wantIDs: []int32{idS, 'n', 'e', 'w', idEndS},
			wantOverflow: [][]int32{
				{idS, 257, ' ', 'w', idEndS},
				{idS, 'i', 'd', 257, idEndS},
			},
		},
		{
			name:    "rechts mit stride",
			trunc:   Truncation{MaxLength: 5, Stride: 1},
			wantIDs: []int32{idS, 'n', 'e', 'w', idEndS},
			wantOverflow: [][]int32{
				{idS, 'w', 257, ' ', idEndS},
				{idS, ' ', 'w', 'i', idEndS},
				{idS, 'i', 'd', 257, idEndS},
			},
		},
		{
			name:    "links",
			trunc:   Truncation{MaxLength: 5, Direction: Left},
			wantIDs: []int32{idS, 'i', 'd', 257, idEndS},
			wantOverflow: [][]int32{
				{idS, 257, ' ', 'w', idEndS},
				{idS, 'n', 'e', 'w', idEndS},
			},
		},
		{
			name:    "passt",
			trunc:   Truncation{MaxLength: 11},
			wantIDs: []int32{idS, 'n', 'e', 'w', 257, ' ', 'w', 'i', 'd', 257, idEndS},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trunc := tt.trunc
			p := newTestProcessor(t, Config{PostProcessor: BertProcessing("</s>", "<s>"), Truncation: &trunc})
			got, err := p.Encode("newest widest", true)
			if err != nil {
				t.Fatalf("Unerwarteter Fehler: %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, got.IDs); diff != "" {
				t.Errorf("IDs mismatch (-want +got):\n%s", diff)
			}

			var overflow [][]int32
			for _, o := range got.Overflowing {
				overflow = append(overflow, o.IDs)
			}
			if diff := cmp.Diff(tt.wantOverflow, overflow); diff != "" {
				t.Errorf("Overflowing mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTruncationPair(t *testing.T) {
	tests := []struct {
		name    string
		trunc   Truncation
		wantIDs []int32
		wantErr error
	}{
		{
			name:    "longest first",
			trunc:   Truncation{MaxLength: 10},
			wantIDs: []int32{idS, 'n', 'e', 'w', 257, idEndS, 'l', 'o', 'w', idEndS},
		},
		{
			name:    "only first",
			trunc:   Truncation{MaxLength: 8, Strategy: OnlyFirst},
			wantIDs: []int32{idS, 'n', 'e', idEndS, 'l', 'o', 'w', idEndS},
		},
		{
			name:    "only second zu kurz",
			trunc:   Truncation{MaxLength: 8, Strategy: OnlySecond},
			wantErr: ErrSequenceTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trunc := tt.trunc
			p := newTestProcessor(t, Config{PostProcessor: BertProcessing("</s>", "<s>"), Truncation: &trunc})
			got, err := p.EncodePair("newest widest", "low", true)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, erwartet %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unerwarteter Fehler: %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, got.IDs); diff != "" {
				t.Errorf("IDs mismatch (-want +got):\n%s", diff)
			}
			if got.Len() > trunc.MaxLength {
				t.Errorf("Len() = %d, erwartet hoechstens %d", got.Len(), trunc.MaxLength)
			}
		})
	}
}

func TestSplitLongestFirst(t *testing.T) {
	tests := []struct {
		n1, n2, target int
		want1, want2   int
	}{
		{10, 3, 8, 5, 3},
		{3, 10, 8, 3, 5},
		{10, 10, 8, 4, 4},
		{10, 10, 7, 4, 3},
		{2, 2, 8, 2, 2},
	}
	for _, tt := range tests {
		got1, got2 := splitLongestFirst(tt.n1, tt.n2, tt.target)
		if got1 != tt.want1 || got2 != tt.want2 {
			t.Errorf("splitLongestFirst(%d, %d, %d) = %d, %d, erwartet %d, %d", tt.n1, tt.n2, tt.target, got1, got2, tt.want1, tt.want2)
		}
	}
}

func TestPadding(t *testing.T) {
	tests := []struct {
		name      string
		pad       Padding
		wantIDs   []int32
		wantMask  []int
		wantTypes []int
	}{
		{
			name:      "rechts",
			pad:       Padding{Length: 8, PadToken: "<pad>"},
			wantIDs:   []int32{idS, 'l', 'o', 'w', idEndS, idPad, idPad, idPad},
			wantMask:  []int{1, 1, 1, 1, 1, 0, 0, 0},
			wantTypes: []int{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:      "links mit type id",
			pad:       Padding{Length: 7, PadID: idPad, PadTypeID: 3, Direction: Left},
			wantIDs:   []int32{idPad, idPad, idS, 'l', 'o', 'w', idEndS},
			wantMask:  []int{0, 0, 1, 1, 1, 1, 1},
			wantTypes: []int{3, 3, 0, 0, 0, 0, 0},
		},
		{
			name:      "vielfaches",
			pad:       Padding{PadToken: "<pad>", PadToMultipleOf: 4},
			wantIDs:   []int32{idS, 'l', 'o', 'w', idEndS, idPad, idPad, idPad},
			wantMask:  []int{1, 1, 1, 1, 1, 0, 0, 0},
			wantTypes: []int{0, 0, 0, 0, 0, 0, 0, 0},
		},
		{
			name:      "schon lang genug",
			pad:       Padding{Length: 3, PadToken: "<pad>"},
			wantIDs:   []int32{idS, 'l', 'o', 'w', idEndS},
			wantMask:  []int{1, 1, 1, 1, 1},
			wantTypes: []int{0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := tt.pad
			p := newTestProcessor(t, Config{PostProcessor: BertProcessing("</s>", "<s>"), Padding: &pad})
			got, err := p.Encode("low", true)
			if err != nil {
				t.Fatalf("Unerwarteter Fehler: %v", err)
			}
			if diff := cmp.Diff(tt.wantIDs, got.IDs); diff != "" {
				t.Errorf("IDs mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMask, got.AttentionMask); diff != "" {
				t.Errorf("AttentionMask mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantTypes, got.TypeIDs); diff != "" {
				t.Errorf("TypeIDs mismatch (-want +got):\n%s", diff)
			}
			for i, id := range got.IDs {
				if id == idPad && got.Tokens[i] != "<pad>" {
					t.Errorf("Token[%d] = %q, erwartet <pad>", i, got.Tokens[i])
				}
			}
		})
	}
}

func TestEncodeBatchPadsToLongest(t *testing.T) {
	p := newTestProcessor(t, Config{Padding: &Padding{PadToken: "<pad>"}})

	got, err := p.EncodeBatch([]string{"low", "newest widest", ""}, true)
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	for i, e := range got {
		if e.Len() != 9 {
			t.Errorf("Encoding %d hat Laenge %d, erwartet 9", i, e.Len())
		}
	}
	if diff := cmp.Diff([]int{1, 1, 1, 0, 0, 0, 0, 0, 0}, got[0].AttentionMask); diff != "" {
		t.Errorf("AttentionMask mismatch (-want +got):\n%s", diff)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unbekanntes template token", Config{PostProcessor: BertProcessing("[SEP]", "[CLS]")}},
		{"unbekanntes pad token", Config{Padding: &Padding{PadToken: "[PAD]"}}},
		{"max length zu klein", Config{PostProcessor: BertProcessing("</s>", "<s>"), Truncation: &Truncation{MaxLength: 1}}},
		{"max length null", Config{Truncation: &Truncation{}}},
		{"negativer stride", Config{Truncation: &Truncation{MaxLength: 4, Stride: -1}}},
		{"unbekannte strategie", Config{Truncation: &Truncation{MaxLength: 4, Strategy: "middle"}}},
		{"unbekannte richtung", Config{Padding: &Padding{Direction: "up"}}},
	}

	model := newTestModel(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(model, tt.cfg); err == nil {
				t.Error("erwartet Fehler")
			}
		})
	}
}

func TestStrideTooLarge(t *testing.T) {
	p := newTestProcessor(t, Config{Truncation: &Truncation{MaxLength: 3, Stride: 3}})
	if _, err := p.Encode("newest widest", false); err == nil {
		t.Error("erwartet Fehler fuer stride >= max length")
	}
}
