//go:build !integration

package matching

import (
	"math"
	"math/rand"
	"testing"
)

func newTestItem(voc *AccordVocabulary, id uint64, gender string, accords []string, fb FeedbackSignal) *ItemVector {
	return &ItemVector{
		PerfumeID: id,
		Gender:    gender,
		Vector:    voc.Vectorize(ItemProfileFromAccords(id, accords)),
		Feedback:  fb,
	}
}

func TestScore_DisjointSupportHasZeroSimilarity(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(Config{Alpha: 1}) // isolate the similarity term

	pref, gate := voc.VectorizePreference(SurveyAnswers{
		Gender:        "unisex",
		AccordRatings: map[string]float64{"citrus": 5},
	})
	item := newTestItem(voc, 1, "unisex", []string{"woody", "amber"}, FeedbackSignal{})

	score, ok := scorer.Score(pref, gate, item, item.Feedback)
	if !ok {
		t.Fatal("item unexpectedly gated out")
	}
	if score != 0 {
		t.Errorf("score = %v, want 0 for disjoint accord support", score)
	}
}

func TestScore_ExactBlend(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())

	// citrus +1.0, woody +0.5 before normalization; L1 gives 2/3 and 1/3
	pref := SparseVector{
		voc.GetOrCreate("citrus"): 2.0 / 3.0,
		voc.GetOrCreate("woody"):  1.0 / 3.0,
	}

	item := newTestItem(voc, 1, "unisex", []string{"citrus", "woody"}, FeedbackSignal{})

	score, ok := scorer.Score(pref, GateUnisex, item, item.Feedback)
	if !ok {
		t.Fatal("item unexpectedly gated out")
	}

	similarity := 2.0/3.0*1.0 + 1.0/3.0*0.8
	want := 0.8*similarity + 0.2*neutralBoost
	if math.Abs(score-want) > 1e-6 {
		t.Errorf("score = %v, want %v", score, want)
	}
}

func TestScore_RankingWithNeutralBoost(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())

	citrus := voc.GetOrCreate("citrus")
	woody := voc.GetOrCreate("woody")

	// selections citrus 1.0, woody 0.5; L1 normalization gives 2/3 and 1/3
	pref := SparseVector{citrus: 2.0 / 3.0, woody: 1.0 / 3.0}

	itemA := &ItemVector{PerfumeID: 1, Gender: "unisex", Vector: SparseVector{citrus: 0.8}}
	itemB := &ItemVector{PerfumeID: 2, Gender: "unisex", Vector: SparseVector{woody: 0.5, citrus: 0.2}}

	scoreA, okA := scorer.Score(pref, GateUnisex, itemA, FeedbackSignal{})
	scoreB, okB := scorer.Score(pref, GateUnisex, itemB, FeedbackSignal{})
	if !okA || !okB {
		t.Fatal("unisex items gated out")
	}

	wantA := 0.8*(2.0/3.0*0.8) + 0.2*neutralBoost
	wantB := 0.8*(2.0/3.0*0.2+1.0/3.0*0.5) + 0.2*neutralBoost
	if math.Abs(scoreA-wantA) > 1e-6 {
		t.Errorf("score(A) = %v, want %v", scoreA, wantA)
	}
	if math.Abs(scoreB-wantB) > 1e-6 {
		t.Errorf("score(B) = %v, want %v", scoreB, wantB)
	}
	if scoreA <= scoreB {
		t.Errorf("expected A (%v) to outrank B (%v)", scoreA, scoreB)
	}
}

func TestScore_GateExcludesBeforeScoring(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())

	pref, gate := voc.VectorizePreference(SurveyAnswers{
		Gender:        "male",
		AccordRatings: map[string]float64{"citrus": 5},
	})

	female := newTestItem(voc, 1, "female", []string{"citrus"}, FeedbackSignal{})
	if _, ok := scorer.Score(pref, gate, female, female.Feedback); ok {
		t.Error("female perfume admitted through male gate")
	}

	unisex := newTestItem(voc, 2, "unisex", []string{"citrus"}, FeedbackSignal{})
	if _, ok := scorer.Score(pref, gate, unisex, unisex.Feedback); !ok {
		t.Error("unisex perfume rejected by male gate")
	}
}

func TestScore_WellRatedBeatsColdAtEqualSimilarity(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())

	pref, gate := voc.VectorizePreference(SurveyAnswers{
		Gender:        "unisex",
		AccordRatings: map[string]float64{"citrus": 5},
	})

	popular := newTestItem(voc, 1, "unisex", []string{"citrus"}, FeedbackSignal{RatingCount: 500, RatingMean: 4.5})
	cold := newTestItem(voc, 2, "unisex", []string{"citrus"}, FeedbackSignal{})

	popScore, _ := scorer.Score(pref, gate, popular, popular.Feedback)
	coldScore, _ := scorer.Score(pref, gate, cold, cold.Feedback)

	if popScore <= coldScore {
		t.Errorf("popular score %v not above cold score %v", popScore, coldScore)
	}
}

func TestScore_PoorlyRatedFallsBelowNeutral(t *testing.T) {
	scorer := NewScorer(DefaultConfig())

	bad := scorer.boost(FeedbackSignal{RatingCount: 100, RatingMean: 1})
	if bad >= neutralBoost {
		t.Errorf("boost for mean-1 item = %v, want below neutral %v", bad, neutralBoost)
	}
	if bad != 0 {
		t.Errorf("boost for mean-1 item = %v, want 0", bad)
	}
}

func TestScore_BoundsOverRandomInputs(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())
	rng := rand.New(rand.NewSource(42))

	accordPool := []string{"citrus", "woody", "amber", "musk", "floral", "spicy", "green", "aquatic"}

	for i := 0; i < 1000; i++ {
		ratings := make(map[string]float64)
		for _, name := range accordPool {
			if rng.Float64() < 0.5 {
				ratings[name] = float64(rng.Intn(6))
			}
		}
		pref, gate := voc.VectorizePreference(SurveyAnswers{Gender: "unisex", AccordRatings: ratings})

		n := 1 + rng.Intn(len(accordPool))
		item := newTestItem(voc, uint64(i), "unisex", accordPool[:n], FeedbackSignal{
			RatingCount: rng.Intn(1000),
			RatingMean:  1 + 4*rng.Float64(),
		})

		score, ok := scorer.Score(pref, gate, item, item.Feedback)
		if !ok {
			t.Fatalf("iteration %d: unisex item gated out", i)
		}
		if score < 0 || score > 1 {
			t.Fatalf("iteration %d: score %v outside [0,1]", i, score)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	voc := NewAccordVocabulary()
	scorer := NewScorer(DefaultConfig())

	pref, gate := voc.VectorizePreference(SurveyAnswers{
		Gender:        "female",
		AccordRatings: map[string]float64{"citrus": 5, "woody": 1, "amber": 3},
	})
	item := newTestItem(voc, 1, "unisex", []string{"citrus", "amber", "musk"}, FeedbackSignal{RatingCount: 12, RatingMean: 3.7})

	first, _ := scorer.Score(pref, gate, item, item.Feedback)
	for i := 0; i < 10; i++ {
		again, _ := scorer.Score(pref, gate, item, item.Feedback)
		if again != first {
			t.Fatalf("score drifted between identical runs: %v then %v", first, again)
		}
	}
}
