package grading

// Combinator reduces candidate fast results from independent grading
// passes into one. It must be commutative: the passes race and finish in
// any order.
type Combinator func(candidates []*FastResult) *FastResult

// MaxBand selects the candidate with the highest band score, carrying that
// candidate's criterion scores and notes wholesale. One noisy
// low-confidence pass is thereby ignored rather than averaged in.
func MaxBand(candidates []*FastResult) *FastResult {
	var best *FastResult
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if best == nil || c.BandScore > best.BandScore {
			best = c
		}
	}
	return best
}
