package matching

// WeightedAccord is one (accord, weight) pair of an item profile,
// weight within [0,1].
type WeightedAccord struct {
	Name   string
	Weight float64
}

// ItemProfile is a perfume's ordered weighted accord list as read from the
// catalog. Owned by catalog management; read-only here.
type ItemProfile struct {
	PerfumeID uint64
	Accords   []WeightedAccord
}

// accordWeight maps predominance position to weight: the first five accords
// get 1.0, 0.8, 0.6, 0.4, 0.2 and everything after 0.1.
func accordWeight(position int) float64 {
	if position < 5 {
		return 1.0 - 0.2*float64(position)
	}
	return 0.1
}

// ItemProfileFromAccords builds a profile from accord names ordered by
// predominance, deriving weights from position.
func ItemProfileFromAccords(perfumeID uint64, accords []string) ItemProfile {
	weighted := make([]WeightedAccord, 0, len(accords))
	for i, name := range accords {
		weighted = append(weighted, WeightedAccord{
			Name:   name,
			Weight: accordWeight(i),
		})
	}
	return ItemProfile{PerfumeID: perfumeID, Accords: weighted}
}

// Vectorize maps an item profile into the shared accord space, preserving
// the given weights unmodified. Unknown accords grow the vocabulary; that is
// the only mutation this path performs.
func (v *AccordVocabulary) Vectorize(profile ItemProfile) SparseVector {
	vec := make(SparseVector, len(profile.Accords))
	for _, wa := range profile.Accords {
		idx := v.GetOrCreate(wa.Name)
		vec[idx] = wa.Weight
	}
	return vec
}
