package codex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/script"
)

func testCodex(t *testing.T) *Service {
	t.Helper()

	cards := content.NewRegistry()
	require.NoError(t, content.NewLoader().LoadDefaults(cards))

	return NewService(Dependencies{
		Cards:   cards,
		Scripts: script.NewEngine(script.Dependencies{}),
	})
}

func TestService_List(t *testing.T) {
	s := testCodex(t)

	summaries := s.List()
	require.NotEmpty(t, summaries)

	bySlug := make(map[string]Summary, len(summaries))
	for _, summary := range summaries {
		bySlug[summary.Slug] = summary
	}

	kaeya, ok := bySlug["kaeya"]
	require.True(t, ok)
	assert.Equal(t, "cryo", kaeya.Element)
	assert.Equal(t, "sword", kaeya.WeaponType)
	assert.Equal(t, 10, kaeya.HealthPoint)
	assert.Equal(t, 3, kaeya.Skills)
}

func TestService_Get(t *testing.T) {
	s := testCodex(t)

	card, err := s.Get("Fischl")
	require.NoError(t, err)
	assert.Equal(t, "electro", card.Element)

	_, err = s.Get("Nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ValidateAcceptsShippedCards(t *testing.T) {
	s := testCodex(t)

	for _, name := range []string{"Kaeya", "Diluc", "Fischl", "Noelle"} {
		card, err := s.Get(name)
		require.NoError(t, err)
		assert.NoError(t, s.Validate(card), "card %s", name)
	}
}

func TestService_ValidateRejectsBrokenDSL(t *testing.T) {
	s := testCodex(t)

	card, err := s.Get("Kaeya")
	require.NoError(t, err)
	card.Skills[0].Effects = "effects := (("

	err = s.Validate(card)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "effects descriptor")
}

func TestService_ValidateRejectsBadCard(t *testing.T) {
	s := testCodex(t)

	card, err := s.Get("Kaeya")
	require.NoError(t, err)
	card.HealthPoint = 0

	assert.Error(t, s.Validate(card))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "kaeya", Slugify("Kaeya"))
	assert.Equal(t, "favonius-bladework-maid", Slugify("Favonius Bladework - Maid"))
	assert.Equal(t, "glacial-waltz", Slugify("Glacial Waltz"))
	assert.Equal(t, "", Slugify("---"))
}
