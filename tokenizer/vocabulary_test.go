package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddMergeReusesProduct(t *testing.T) {
	v := newVocabulary(Options{})

	ab, created := v.addMerge('a', 'b')
	if !created || ab.Result != 256 || ab.Rank != 0 {
		t.Fatalf("addMerge(a, b) = %+v, %v", ab, created)
	}
	abc, _ := v.addMerge(ab.Result, 'c')
	bc, _ := v.addMerge('b', 'c')

	// "a" + "bc" ergibt dasselbe Symbol wie "ab" + "c"
	again, created := v.addMerge('a', bc.Result)
	if created {
		t.Error("addMerge(a, bc) erwartet Wiederverwendung")
	}
	if again.Result != abc.Result || again.Rank != 3 {
		t.Errorf("addMerge(a, bc) = %+v, erwartet Result %d Rank 3", again, abc.Result)
	}
	if v.VocabSize() != AlphabetSize+3 {
		t.Errorf("VocabSize() = %d, erwartet %d", v.VocabSize(), AlphabetSize+3)
	}
	if rank := v.Merges["a bc"]; rank != 3 {
		t.Errorf(`Merges["a bc"] = %d, erwartet 3`, rank)
	}
}

func TestReserveIDs(t *testing.T) {
	v := newVocabulary(Options{})
	v.AddSpecialTokens("<s>")

	ids := v.ReserveIDs(2)
	if diff := cmp.Diff([]int32{257, 258}, ids); diff != "" {
		t.Errorf("ReserveIDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"<s>", "<|reserved_1|>", "<|reserved_2|>"}, v.SpecialTokens()); diff != "" {
		t.Errorf("SpecialTokens mismatch (-want +got):\n%s", diff)
	}

	if id := v.ReserveUnknown(""); id != 259 || v.UNK != 259 {
		t.Errorf("ReserveUnknown = %d (UNK %d), erwartet 259", id, v.UNK)
	}
	if id := v.ReserveUnknown(DefaultUnknownToken); id != 259 {
		t.Errorf("zweites ReserveUnknown = %d, erwartet 259", id)
	}
}

func TestAccessors(t *testing.T) {
	v := newVocabulary(Options{})

	if tok, ok := v.IDToToken('a'); !ok || tok != "a" {
		t.Errorf("IDToToken('a') = %q, %v", tok, ok)
	}
	for _, id := range []int32{-1, AlphabetSize} {
		if _, ok := v.IDToToken(id); ok {
			t.Errorf("IDToToken(%d) erwartet !ok", id)
		}
	}
	if id, ok := v.TokenToID("Ġ"); !ok || id != ' ' {
		t.Errorf("TokenToID(Ġ) = %d, %v", id, ok)
	}
	if _, ok := v.TokenToID("missing"); ok {
		t.Error("TokenToID(missing) erwartet !ok")
	}
}
