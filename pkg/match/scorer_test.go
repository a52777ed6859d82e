package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreExactMatch(t *testing.T) {
	q := Normalize("Acme Corp")
	a := Normalize("acme-CORP!")
	assert.Equal(t, 1.0, Score(q, a))
}

func TestScoreEmptyInputs(t *testing.T) {
	empty := Normalize("")
	nonEmpty := Normalize("acme")

	// No vacuous perfect match between two empty strings.
	assert.Equal(t, 0.0, Score(empty, empty))
	assert.Equal(t, 0.0, Score(empty, nonEmpty))
	assert.Equal(t, 0.0, Score(nonEmpty, empty))
}

func TestScoreTokenOverlap(t *testing.T) {
	q := Normalize("Acme")
	a := Normalize("Acme Corporation Ltd")

	// Jaccard 1/3 plus a prefix bonus of 0.05 * 1/3.
	assert.InDelta(t, 1.0/3.0+0.05/3.0, Score(q, a), 1e-9)
}

func TestScoreNoOverlap(t *testing.T) {
	q := Normalize("Globex")
	a := Normalize("Acme Corp")
	assert.Equal(t, 0.0, Score(q, a))
}

func TestScorePrefixBonusRequiresLeadingMatch(t *testing.T) {
	q := Normalize("corp acme")
	a := Normalize("acme corp")

	// Same token set, different order: full Jaccard, no prefix bonus.
	assert.InDelta(t, 1.0, jaccard(q.Tokens, a.Tokens), 1e-9)
	assert.Equal(t, 0.0, prefixBonus(q.Tokens, a.Tokens))
}

func TestScoreBounds(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"a", "a"},
		{"acme corp", "acme corp inc"},
		{"a b c d e", "a b c d e f"},
		{"one two three", "three two one"},
		{"completely different", "tokens here"},
	}

	for _, p := range pairs {
		s := Score(Normalize(p[0]), Normalize(p[1]))
		assert.GreaterOrEqual(t, s, 0.0, "pair %v", p)
		assert.LessOrEqual(t, s, 1.0, "pair %v", p)
	}
}

func TestScoreDeterministic(t *testing.T) {
	q := Normalize("Acme Holdings International")
	a := Normalize("Acme International Holdings Group")

	first := Score(q, a)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Score(q, a))
	}
}

func TestJaccardDuplicateTokens(t *testing.T) {
	// Duplicate tokens count once in both intersection and union.
	s := jaccard([]string{"acme", "acme"}, []string{"acme"})
	assert.Equal(t, 1.0, s)
}
