package matching

import "math"

// FeedbackSignal is the per-perfume rating aggregate consumed by the scorer.
type FeedbackSignal struct {
	RatingCount int
	RatingMean  float64 // 1-5 scale
}

type Scorer struct {
	alpha       float64
	saturationK float64
}

func NewScorer(cfg Config) *Scorer {
	cfg = cfg.withDefaults()
	return &Scorer{
		alpha:       cfg.Alpha,
		saturationK: cfg.SaturationK,
	}
}

// Score computes the final match value in [0,1] for one perfume, or
// ok=false when the gate excludes it. Scores are independently
// interpretable; no cross-item renormalization happens here.
func (s *Scorer) Score(pref SparseVector, gate Gate, item *ItemVector, fb FeedbackSignal) (float64, bool) {
	if !gate.Admits(item.Gender) {
		return 0, false
	}

	similarity := dotSparse(pref, item.Vector)
	boost := s.boost(fb)

	raw := s.alpha*similarity + (1-s.alpha)*boost
	return clamp01(raw), true
}

// dotSparse is the weighted dot product restricted to the shared accord
// support. Accords absent on either side contribute zero, so disjoint
// vectors score exactly 0.
func dotSparse(a, b SparseVector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	sum := 0.0
	for idx, w := range a {
		if other, ok := b[idx]; ok {
			sum += w * other
		}
	}
	return sum
}

// boost is a monotone, saturating function of the rating aggregate, bounded
// in [0,1]. Perfumes with zero ratings get the neutral midpoint so
// cold-start items are neither promoted nor suppressed.
func (s *Scorer) boost(fb FeedbackSignal) float64 {
	if fb.RatingCount <= 0 {
		return neutralBoost
	}

	meanNorm := clamp01((fb.RatingMean - 1) / 4)
	count := float64(fb.RatingCount)
	saturation := math.Log1p(count) / math.Log1p(count+s.saturationK)

	return meanNorm * saturation
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
