package reconcile

// Dedup filters candidates against the reference index.
// A candidate whose key is already indexed is counted as skipped for its source and
// dropped; otherwise its key is added to the index and the candidate is accepted.
// Duplicates within the same batch are therefore dropped too.
func Dedup(candidates []Candidate, index KeySet, stats *Stats) []Candidate {
	accepted := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if index.Has(key) {
			stats.Skipped[c.Source]++
			continue
		}
		index.Add(key)
		accepted = append(accepted, c)
	}
	return accepted
}
