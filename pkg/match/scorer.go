package match

// maxPrefixBonus bounds the order-sensitive adjustment for token sequences
// that begin the same way.
const maxPrefixBonus = 0.05

// Score computes a similarity score in [0,1] between a normalized query and
// a normalized alias. Identical normalized strings score 1.0. Otherwise the
// score is the Jaccard coefficient of the token sets plus a bounded bonus
// proportional to the length of the common token prefix. Empty input on
// either side scores 0.0, including against another empty input.
func Score(query, alias Normalized) float64 {
	if query.Empty() || alias.Empty() {
		return 0.0
	}
	if query.Text == alias.Text {
		return 1.0
	}

	score := jaccard(query.Tokens, alias.Tokens) + prefixBonus(query.Tokens, alias.Tokens)
	if score > 1.0 {
		score = 1.0
	}
	if score < 0.0 {
		score = 0.0
	}
	return score
}

// jaccard returns |intersection| / |union| of the two token sets.
func jaccard(a, b []string) float64 {
	seen := make(map[string]struct{}, len(a))
	for _, tok := range a {
		seen[tok] = struct{}{}
	}

	union := len(seen)
	intersection := 0
	counted := make(map[string]struct{}, len(b))
	for _, tok := range b {
		if _, dup := counted[tok]; dup {
			continue
		}
		counted[tok] = struct{}{}
		if _, ok := seen[tok]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// prefixBonus rewards token sequences that begin the same way, scaled by
// how much of the longer sequence the common prefix covers.
func prefixBonus(a, b []string) float64 {
	common := 0
	for common < len(a) && common < len(b) && a[common] == b[common] {
		common++
	}
	if common == 0 {
		return 0.0
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return maxPrefixBonus * float64(common) / float64(longer)
}
