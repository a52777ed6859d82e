package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantText   string
		wantTokens []string
	}{
		{
			name:       "lowercases",
			input:      "Acme Corp",
			wantText:   "acme corp",
			wantTokens: []string{"acme", "corp"},
		},
		{
			name:       "strips diacritics",
			input:      "Müller Café",
			wantText:   "muller cafe",
			wantTokens: []string{"muller", "cafe"},
		},
		{
			name:       "collapses punctuation runs",
			input:      "Acme--Corp,   Inc.",
			wantText:   "acme corp inc",
			wantTokens: []string{"acme", "corp", "inc"},
		},
		{
			name:       "trims leading and trailing separators",
			input:      "  ++Acme++  ",
			wantText:   "acme",
			wantTokens: []string{"acme"},
		},
		{
			name:       "keeps digits",
			input:      "Area 51",
			wantText:   "area 51",
			wantTokens: []string{"area", "51"},
		},
		{
			name:       "empty string",
			input:      "",
			wantText:   "",
			wantTokens: nil,
		},
		{
			name:       "only punctuation",
			input:      "!!! -- ???",
			wantText:   "",
			wantTokens: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantTokens, got.Tokens)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Acme Corp",
		"Müller & Söhne GmbH",
		"  weird---input!!  ",
		"réseau Férré de FRANCE",
		"already normalized text",
		"数字 Mixed スクリプト 123",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once.Text)
		assert.Equal(t, once.Text, twice.Text, "input %q", input)
		assert.Equal(t, once.Tokens, twice.Tokens, "input %q", input)
	}
}

func TestNormalizeTokenOrderPreserved(t *testing.T) {
	got := Normalize("Zeta Alpha Mu")
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, got.Tokens)
}

func TestNormalizedEmpty(t *testing.T) {
	assert.True(t, Normalize("").Empty())
	assert.True(t, Normalize("---").Empty())
	assert.False(t, Normalize("a").Empty())
}
