package evaluator

import "sort"

// jaroWinkler scores the similarity of a and b in [0, 1], matching the
// algorithm the original implementation calls through the `strsim` crate
// at its NoSuchField suggestion site. No Go library in the
// reference corpus provides this (spec §8 invariant 9 wants Jaro-Winkler
// specifically, not an arbitrary string-distance metric), so it is
// transcribed here from the standard definition rather than approximated
// with something stdlib already offers.
func jaroWinkler(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	j := jaro(ar, br)
	if j <= 0 {
		return j
	}
	prefix := 0
	for prefix < 4 && prefix < len(ar) && prefix < len(br) && ar[prefix] == br[prefix] {
		prefix++
	}
	return j + float64(prefix)*0.1*(1-j)
}

func jaro(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	matchDist := max(len(a), len(b))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}
	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))

	matches := 0
	for i := range a {
		lo := i - matchDist
		if lo < 0 {
			lo = 0
		}
		hi := i + matchDist + 1
		if hi > len(b) {
			hi = len(b)
		}
		for j := lo; j < hi; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range a {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions)/2)/m) / 3
}

// suggestFields returns names from candidates whose Jaro-Winkler
// similarity to queried is at least 0.8, sorted by descending similarity
// (spec §8 invariant 9).
func suggestFields(queried string, candidates []string) []string {
	type scored struct {
		name string
		conf float64
	}
	var hits []scored
	for _, c := range candidates {
		conf := jaroWinkler(c, queried)
		if conf < 0.8 {
			continue
		}
		hits = append(hits, scored{c, conf})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].conf > hits[j].conf })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}
