package matching

import "math"

// Gate is the hard demographic filter extracted from the survey. It is not
// part of the similarity vector; ineligible perfumes are excluded outright
// before scoring.
type Gate string

const (
	GateMale   Gate = "male"
	GateFemale Gate = "female"
	GateUnisex Gate = "unisex"
)

// Admits reports whether a perfume with the given gender passes the gate.
// Male and female preferences also admit unisex perfumes; a unisex
// preference admits only unisex ones. Perfumes without a gender are treated
// as unisex.
func (g Gate) Admits(perfumeGender string) bool {
	if perfumeGender == "" {
		perfumeGender = string(GateUnisex)
	}

	switch g {
	case GateMale, GateFemale:
		return perfumeGender == string(g) || perfumeGender == string(GateUnisex)
	case GateUnisex:
		return perfumeGender == string(GateUnisex)
	default:
		return false
	}
}

// SurveyAnswers is the parsed survey payload: the gating gender answer plus
// per-accord ratings on a 0-5 scale (-1 means "I don't know").
type SurveyAnswers struct {
	Gender        string
	AccordRatings map[string]float64
}

const (
	ratingUnknown = -1.0
	ratingMax     = 5.0
	ratingCenter  = 2.5
)

// ParseSurveyAnswers validates a raw survey payload. The gender answer is
// required; accord ratings must be numeric and within [0,5] or -1.
// Any violation yields a ValidationError and nothing is persisted.
func ParseSurveyAnswers(data map[string]any) (SurveyAnswers, error) {
	if data == nil {
		return SurveyAnswers{}, newValidationError("empty survey payload")
	}

	genderRaw, ok := data["gender"]
	if !ok {
		return SurveyAnswers{}, newValidationError("missing gender answer")
	}
	gender, ok := genderRaw.(string)
	if !ok {
		return SurveyAnswers{}, newValidationError("gender answer must be a string")
	}
	gender = normalizeAccord(gender)
	switch Gate(gender) {
	case GateMale, GateFemale, GateUnisex:
	default:
		return SurveyAnswers{}, newValidationError("unknown gender %q", gender)
	}

	ratings := make(map[string]float64)
	for key, raw := range data {
		if key == "gender" {
			continue
		}

		val, ok := toFloat(raw)
		if !ok {
			return SurveyAnswers{}, newValidationError("rating for %q is not numeric", key)
		}
		if val != ratingUnknown && (val < 0 || val > ratingMax) {
			return SurveyAnswers{}, newValidationError("rating %v for %q out of range", val, key)
		}
		ratings[normalizeAccord(key)] = val
	}

	return SurveyAnswers{Gender: gender, AccordRatings: ratings}, nil
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// VectorizePreference maps survey answers into the shared accord space.
// Each rating contributes (r-2.5)/2.5, "I don't know" contributes nothing,
// contributions to the same accord are summed, and the result is
// L1-normalized so preference strength is comparable across users.
func (voc *AccordVocabulary) VectorizePreference(answers SurveyAnswers) (SparseVector, Gate) {
	vec := make(SparseVector)
	for name, rating := range answers.AccordRatings {
		if rating == ratingUnknown {
			continue
		}

		contribution := (rating - ratingCenter) / ratingCenter
		if contribution == 0 {
			continue
		}
		vec[voc.GetOrCreate(name)] += contribution
	}

	normalizeL1(vec)
	return vec, Gate(answers.Gender)
}

// normalizeL1 scales the vector so the sum of absolute weights is 1.
// An all-zero vector is left empty (degenerate survey, not an error).
func normalizeL1(vec SparseVector) {
	var sum float64
	for _, w := range vec {
		sum += math.Abs(w)
	}
	if sum == 0 {
		return
	}
	for idx, w := range vec {
		vec[idx] = w / sum
	}
}
