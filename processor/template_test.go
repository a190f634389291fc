package processor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTemplate(t *testing.T) {
	tmpl, err := ParseTemplate("<s> $A </s>", "<s> $A </s> </s> $B </s>")
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}

	wantPair := []Piece{
		{Token: "<s>"}, {Sequence: SequenceA}, {Token: "</s>"},
		{Token: "</s>"}, {Sequence: SequenceB, TypeID: 1}, {Token: "</s>"},
	}
	if diff := cmp.Diff(wantPair, tmpl.Pair); diff != "" {
		t.Errorf("Pair mismatch (-want +got):\n%s", diff)
	}
	if tmpl.Added(false) != 2 || tmpl.Added(true) != 4 {
		t.Errorf("Added = %d, %d, erwartet 2, 4", tmpl.Added(false), tmpl.Added(true))
	}
	if got, want := tmpl.String(), "<s> $A </s> | <s> $A </s> </s> $B:1 </s>"; got != want {
		t.Errorf("String() = %q, erwartet %q", got, want)
	}
}

func TestParseTemplateDefaultPair(t *testing.T) {
	tmpl, err := ParseTemplate("[CLS] $A:0 [SEP]", "")
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	want := []Piece{
		{Token: "[CLS]"}, {Sequence: SequenceA}, {Token: "[SEP]"},
		{Token: "[CLS]", TypeID: 1}, {Sequence: SequenceB, TypeID: 1}, {Token: "[SEP]", TypeID: 1},
	}
	if diff := cmp.Diff(want, tmpl.Pair); diff != "" {
		t.Errorf("Pair mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTemplateErrors(t *testing.T) {
	tests := []struct {
		name         string
		single, pair string
	}{
		{"kein $A", "<s> </s>", ""},
		{"doppeltes $A", "$A $A", ""},
		{"$B in single", "$A $B", ""},
		{"pair ohne $B", "$A", "<s> $A </s>"},
		{"ungueltige type id", "$A:x", ""},
		{"negative type id", "<s>:-1 $A", ""},
		{"leeres stueck", ":1 $A", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTemplate(tt.single, tt.pair); err == nil {
				t.Errorf("ParseTemplate(%q, %q) erwartet Fehler", tt.single, tt.pair)
			}
		})
	}
}

func TestBertProcessingMatchesParsed(t *testing.T) {
	parsed, err := ParseTemplate("<s> $A </s>", "<s> $A </s> $B:1 </s>:1")
	if err != nil {
		t.Fatalf("Unerwarteter Fehler: %v", err)
	}
	if diff := cmp.Diff(parsed, BertProcessing("</s>", "<s>")); diff != "" {
		t.Errorf("BertProcessing mismatch (-parsed +bert):\n%s", diff)
	}
}
