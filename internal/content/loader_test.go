package content

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCard(t *testing.T, fs afero.Fs, path string, card CharacterCard) {
	t.Helper()

	data, err := json.Marshal(card)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func sampleCard(t *testing.T) CharacterCard {
	t.Helper()

	reg := NewRegistry()
	require.NoError(t, NewLoader().LoadDefaults(reg))
	card, err := reg.Card("Kaeya")
	require.NoError(t, err)
	return card
}

func TestLoader_LoadDefaults(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, NewLoader().LoadDefaults(reg))

	assert.Equal(t, 4, reg.Len())
	for _, name := range []string{"Kaeya", "Diluc", "Fischl", "Noelle"} {
		_, err := reg.Card(name)
		assert.NoError(t, err, name)
	}
}

func TestLoader_LoadDirOverridesByName(t *testing.T) {
	reg := NewRegistry()
	loader := NewLoader()
	require.NoError(t, loader.LoadDefaults(reg))

	patched := sampleCard(t)
	patched.HealthPoint = 14

	fs := afero.NewMemMapFs()
	writeCard(t, fs, "content/kaeya.json", patched)
	require.NoError(t, loader.LoadDir(fs, "content", reg))

	card, err := reg.Card("Kaeya")
	require.NoError(t, err)
	assert.Equal(t, 14, card.HealthPoint)
	assert.Equal(t, 4, reg.Len())
}

func TestLoader_LoadDirSkipsNonCardFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeCard(t, fs, "content/kaeya.json", sampleCard(t))
	require.NoError(t, afero.WriteFile(fs, "content/notes.txt", []byte("wip"), 0o644))
	require.NoError(t, fs.MkdirAll("content/drafts", 0o755))

	reg := NewRegistry()
	require.NoError(t, NewLoader().LoadDir(fs, "content", reg))
	assert.Equal(t, 1, reg.Len())
}

func TestLoader_LoadDirFailsOnInvalidCard(t *testing.T) {
	broken := sampleCard(t)
	broken.HealthPoint = 0

	fs := afero.NewMemMapFs()
	writeCard(t, fs, "content/broken.json", broken)

	reg := NewRegistry()
	err := NewLoader().LoadDir(fs, "content", reg)
	require.Error(t, err)
	assert.Zero(t, reg.Len())
}

func TestLoader_LoadDirMissingDir(t *testing.T) {
	reg := NewRegistry()
	err := NewLoader().LoadDir(afero.NewMemMapFs(), "nowhere", reg)
	assert.Error(t, err)
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	t.Run("shipped card passes", func(t *testing.T) {
		assert.NoError(t, loader.Validate(sampleCard(t)))
	})

	t.Run("unknown element", func(t *testing.T) {
		card := sampleCard(t)
		card.Element = "plasma"
		var invalid *InvalidCardError
		require.ErrorAs(t, loader.Validate(card), &invalid)
		assert.Equal(t, "element", invalid.Field)
	})

	t.Run("duplicate skill names", func(t *testing.T) {
		card := sampleCard(t)
		card.Skills = append(card.Skills, card.Skills[0])
		var invalid *InvalidCardError
		require.ErrorAs(t, loader.Validate(card), &invalid)
		assert.Equal(t, "skills", invalid.Field)
	})

	t.Run("cost and free are mutually exclusive", func(t *testing.T) {
		card := sampleCard(t)
		card.Skills[0].Free = true
		var invalid *InvalidCardError
		assert.ErrorAs(t, loader.Validate(card), &invalid)

		card = sampleCard(t)
		card.Skills[0].Cost = nil
		card.Skills[0].Free = false
		assert.ErrorAs(t, loader.Validate(card), &invalid)
	})

	t.Run("unknown skill type", func(t *testing.T) {
		card := sampleCard(t)
		card.Skills[0].Type = "ultimate"
		var invalid *InvalidCardError
		assert.ErrorAs(t, loader.Validate(card), &invalid)
	})

	t.Run("unknown damage element", func(t *testing.T) {
		card := sampleCard(t)
		card.Skills[1].Damage.Element = "plasma"
		var invalid *InvalidCardError
		assert.ErrorAs(t, loader.Validate(card), &invalid)
	})
}
