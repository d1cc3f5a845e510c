//go:build !integration

package matching

import (
	"math"
	"testing"
)

func TestAccordWeightLadder(t *testing.T) {
	want := []float64{1.0, 0.8, 0.6, 0.4, 0.2, 0.1, 0.1, 0.1}
	for pos, w := range want {
		if got := accordWeight(pos); math.Abs(got-w) > 1e-9 {
			t.Errorf("accordWeight(%d) = %v, want %v", pos, got, w)
		}
	}
}

func TestVectorize_PreservesWeightsAndSharesIndices(t *testing.T) {
	voc := NewAccordVocabulary()

	profile := ItemProfileFromAccords(7, []string{"citrus", "woody", "amber"})
	vec := voc.Vectorize(profile)

	if len(vec) != 3 {
		t.Fatalf("vector support = %d, want 3", len(vec))
	}
	if w := vec[voc.GetOrCreate("citrus")]; w != 1.0 {
		t.Errorf("citrus weight = %v, want 1.0", w)
	}
	if w := vec[voc.GetOrCreate("woody")]; w != 0.8 {
		t.Errorf("woody weight = %v, want 0.8", w)
	}
	if w := vec[voc.GetOrCreate("amber")]; w != 0.6 {
		t.Errorf("amber weight = %v, want 0.6", w)
	}

	// a second item reusing an accord must land on the same index
	other := voc.Vectorize(ItemProfileFromAccords(8, []string{"citrus"}))
	if _, ok := other[voc.GetOrCreate("citrus")]; !ok {
		t.Error("shared accord mapped to a different index")
	}
}

func TestVectorize_DuplicateAccordKeepsOneEntry(t *testing.T) {
	voc := NewAccordVocabulary()
	vec := voc.Vectorize(ItemProfileFromAccords(1, []string{"citrus", "Citrus"}))
	if len(vec) != 1 {
		t.Errorf("duplicate accord produced %d entries, want 1", len(vec))
	}
}
