package match

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	acmeID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	globexID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

func buildTestIndex() *Index {
	entities := []EntityRef{
		{ID: acmeID, Name: "Acme Corp", Type: "company"},
		{ID: globexID, Name: "Globex Corporation", Type: "company"},
	}
	rows := []AliasRow{
		{Value: "Acme", EntityID: acmeID},
		{Value: "ACME Inc.", EntityID: acmeID},
		{Value: "Globex", EntityID: globexID},
	}
	return BuildIndex(entities, rows)
}

func TestBuildIndexDisplayNameIsAlias(t *testing.T) {
	idx := buildTestIndex()

	ids := idx.LookupExact("acme corp")
	require.Len(t, ids, 1)
	assert.Equal(t, acmeID, ids[0])
}

func TestLookupExact(t *testing.T) {
	idx := buildTestIndex()

	assert.Len(t, idx.LookupExact("acme inc"), 1)
	assert.Empty(t, idx.LookupExact("unknown"))
	assert.Empty(t, idx.LookupExact(""))
}

func TestLookupCandidatesTokenUnion(t *testing.T) {
	idx := buildTestIndex()

	// "corp" only appears in Acme's display name; "globex" only in Globex.
	candidates := idx.LookupCandidates([]string{"corp", "globex"}, "")
	assert.Len(t, candidates, 2)

	candidates = idx.LookupCandidates([]string{"acme"}, "")
	assert.Len(t, candidates, 1)

	candidates = idx.LookupCandidates([]string{"nothing", "matches"}, "")
	assert.Empty(t, candidates)
}

func TestLookupCandidatesTypeFilter(t *testing.T) {
	entities := []EntityRef{
		{ID: acmeID, Name: "Acme Corp", Type: "company"},
		{ID: globexID, Name: "Acme River", Type: "place"},
	}
	idx := BuildIndex(entities, nil)

	all := idx.LookupCandidates([]string{"acme"}, "")
	assert.Len(t, all, 2)

	companies := idx.LookupCandidates([]string{"acme"}, "company")
	require.Len(t, companies, 1)
	_, ok := companies[acmeID]
	assert.True(t, ok)
}

func TestBuildIndexSkipsUnindexableRows(t *testing.T) {
	entities := []EntityRef{{ID: acmeID, Name: "Acme"}}
	rows := []AliasRow{
		{Value: "!!!", EntityID: acmeID},                // normalizes to nothing
		{Value: "Orphan Alias", EntityID: uuid.New()},   // unknown entity
		{Value: "acme", EntityID: acmeID},               // duplicate of display name
	}
	idx := BuildIndex(entities, rows)

	assert.Equal(t, 1, idx.EntityCount())
	assert.Len(t, idx.Aliases(acmeID), 1)
	assert.Empty(t, idx.LookupCandidates([]string{"orphan"}, ""))
}

func TestIndexEntityLookup(t *testing.T) {
	idx := buildTestIndex()

	ref, ok := idx.Entity(acmeID)
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", ref.Name)

	_, ok = idx.Entity(uuid.New())
	assert.False(t, ok)
}
