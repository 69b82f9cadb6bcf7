package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/duelsim/duelsim/internal/content"
)

// fakeExecutor records queries and plays back canned results.
type fakeExecutor[T any] struct {
	queries []string
	params  []map[string]any

	queryResults [][]T
	queryOneHits []*T
	err          error
}

func (f *fakeExecutor[T]) Query(_ context.Context, query string, params map[string]any) ([]T, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queryResults) == 0 {
		return nil, nil
	}
	out := f.queryResults[0]
	f.queryResults = f.queryResults[1:]
	return out, nil
}

func (f *fakeExecutor[T]) QueryOne(_ context.Context, query string, params map[string]any) (*T, error) {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.queryOneHits) == 0 {
		return nil, nil
	}
	out := f.queryOneHits[0]
	f.queryOneHits = f.queryOneHits[1:]
	return out, nil
}

func (f *fakeExecutor[T]) Execute(_ context.Context, query string, params map[string]any) error {
	f.queries = append(f.queries, query)
	f.params = append(f.params, params)
	return f.err
}

func storeWith(t *testing.T, exec *fakeExecutor[CardRecord]) *CardStore {
	t.Helper()
	client, err := NewClient[CardRecord](nil, WithExecutor[CardRecord](exec))
	require.NoError(t, err)
	return NewCardStore(client)
}

func sampleCard(name string) content.CharacterCard {
	return content.CharacterCard{
		ID:          101,
		Name:        name,
		Element:     "cryo",
		WeaponType:  "sword",
		HealthPoint: 10,
		MaxPower:    2,
		Skills: []content.SkillTemplate{
			{Name: "Strike", Type: "normal_attack", Cost: map[string]int{"none": 2}},
		},
	}
}

func TestCardStore_UpsertCreatesWhenMissing(t *testing.T) {
	recordID := surrealmodels.NewRecordID(cardTable, "abc")
	exec := &fakeExecutor[CardRecord]{
		queryOneHits: []*CardRecord{
			nil, // FindBySlug misses
			{ID: &recordID, Slug: "kaeya", Card: sampleCard("Kaeya")},
		},
	}
	store := storeWith(t, exec)

	record, err := store.Upsert(context.Background(), "kaeya", sampleCard("Kaeya"))
	require.NoError(t, err)
	assert.Equal(t, "kaeya", record.Slug)
	assert.Equal(t, "Kaeya", record.Card.Name)

	require.Len(t, exec.queries, 2)
	assert.Contains(t, exec.queries[0], "WHERE slug = $slug")
	assert.Contains(t, exec.queries[1], "CREATE")
}

func TestCardStore_UpsertUpdatesExisting(t *testing.T) {
	recordID := surrealmodels.NewRecordID(cardTable, "abc")
	existing := &CardRecord{ID: &recordID, Slug: "kaeya", Card: sampleCard("Kaeya")}
	updated := &CardRecord{ID: &recordID, Slug: "kaeya", Card: sampleCard("Kaeya v2")}
	exec := &fakeExecutor[CardRecord]{queryOneHits: []*CardRecord{existing, updated}}
	store := storeWith(t, exec)

	record, err := store.Upsert(context.Background(), "kaeya", sampleCard("Kaeya v2"))
	require.NoError(t, err)
	assert.Equal(t, "Kaeya v2", record.Card.Name)

	require.Len(t, exec.queries, 2)
	assert.Contains(t, exec.queries[1], "UPDATE")
}

func TestCardStore_UpsertRequiresSlug(t *testing.T) {
	store := storeWith(t, &fakeExecutor[CardRecord]{})

	_, err := store.Upsert(context.Background(), "", sampleCard("Kaeya"))
	assert.Error(t, err)
}

func TestCardStore_FindBySlugMissing(t *testing.T) {
	store := storeWith(t, &fakeExecutor[CardRecord]{})

	_, err := store.FindBySlug(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCardStore_FindByElement(t *testing.T) {
	exec := &fakeExecutor[CardRecord]{
		queryResults: [][]CardRecord{{
			{Slug: "diona", Card: sampleCard("Diona")},
			{Slug: "kaeya", Card: sampleCard("Kaeya")},
		}},
	}
	store := storeWith(t, exec)

	records, err := store.FindByElement(context.Background(), "cryo")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "cryo", exec.params[0]["element"])
}

func TestCardStore_DeleteMissingIsNoop(t *testing.T) {
	exec := &fakeExecutor[CardRecord]{}
	store := storeWith(t, exec)

	err := store.DeleteBySlug(context.Background(), "nobody")
	require.NoError(t, err)
	// Only the lookup ran, no DELETE.
	require.Len(t, exec.queries, 1)
}
