package match

import (
	"github.com/google/uuid"
)

// EntityRef is the entity metadata the index keeps for scoring and ranking.
type EntityRef struct {
	ID   uuid.UUID
	Name string
	Type string
}

// AliasRow is one snapshot row used to build an Index: raw alias text plus
// the entity carrying it.
type AliasRow struct {
	Value    string
	EntityID uuid.UUID
}

// Index is a per-dataset lookup over normalized aliases, built once from a
// storage snapshot and never mutated afterwards. It is safe to share
// read-only across concurrent matchers; updates to underlying alias data
// take effect only in the next snapshot build.
type Index struct {
	exact    map[string]map[uuid.UUID]struct{}
	byToken  map[string]map[uuid.UUID]struct{}
	aliases  map[uuid.UUID][]Normalized
	entities map[uuid.UUID]EntityRef
}

// BuildIndex constructs an Index from snapshot rows. Each entity's display
// name counts as one of its aliases. Aliases that normalize to nothing are
// skipped, as are rows referencing entities absent from the snapshot.
func BuildIndex(entities []EntityRef, rows []AliasRow) *Index {
	idx := &Index{
		exact:    make(map[string]map[uuid.UUID]struct{}),
		byToken:  make(map[string]map[uuid.UUID]struct{}),
		aliases:  make(map[uuid.UUID][]Normalized, len(entities)),
		entities: make(map[uuid.UUID]EntityRef, len(entities)),
	}

	for _, e := range entities {
		idx.entities[e.ID] = e
		idx.add(e.ID, e.Name)
	}
	for _, row := range rows {
		if _, ok := idx.entities[row.EntityID]; !ok {
			continue
		}
		idx.add(row.EntityID, row.Value)
	}

	return idx
}

func (idx *Index) add(entityID uuid.UUID, value string) {
	n := Normalize(value)
	if n.Empty() {
		return
	}

	// The same normalized form may arrive via both display name and alias
	// rows; index it once per entity.
	if _, ok := idx.exact[n.Text][entityID]; ok {
		return
	}

	if idx.exact[n.Text] == nil {
		idx.exact[n.Text] = make(map[uuid.UUID]struct{})
	}
	idx.exact[n.Text][entityID] = struct{}{}

	for _, tok := range n.Tokens {
		if idx.byToken[tok] == nil {
			idx.byToken[tok] = make(map[uuid.UUID]struct{})
		}
		idx.byToken[tok][entityID] = struct{}{}
	}

	idx.aliases[entityID] = append(idx.aliases[entityID], n)
}

// LookupExact returns the entities carrying an alias whose normalized form
// equals normText.
func (idx *Index) LookupExact(normText string) []uuid.UUID {
	set := idx.exact[normText]
	if len(set) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// LookupCandidates returns the union of entities sharing at least one
// normalized token with the query, optionally filtered by entity type.
// This bounds the candidate set so scoring need not touch every entity in
// the dataset.
func (idx *Index) LookupCandidates(tokens []string, typeFilter string) map[uuid.UUID]struct{} {
	candidates := make(map[uuid.UUID]struct{})
	for _, tok := range tokens {
		for id := range idx.byToken[tok] {
			if typeFilter != "" {
				if ref, ok := idx.entities[id]; !ok || ref.Type != typeFilter {
					continue
				}
			}
			candidates[id] = struct{}{}
		}
	}
	return candidates
}

// Entity returns the indexed metadata for an entity.
func (idx *Index) Entity(id uuid.UUID) (EntityRef, bool) {
	ref, ok := idx.entities[id]
	return ref, ok
}

// Aliases returns the normalized aliases indexed for an entity, including
// its display name.
func (idx *Index) Aliases(id uuid.UUID) []Normalized {
	return idx.aliases[id]
}

// EntityCount returns the number of entities in the index.
func (idx *Index) EntityCount() int {
	return len(idx.entities)
}
