package content

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"github.com/duelsim/duelsim/internal/content/cards"
	"github.com/duelsim/duelsim/internal/domain"
)

// Loader reads character card files into a Registry. Card files are JSON,
// one card per file. The loader works against afero filesystems so the
// embedded defaults, an external content directory, and in-memory test
// fixtures all go through the same path.
type Loader struct {
	validate *validator.Validate
}

// NewLoader creates a loader with a fresh validator instance.
func NewLoader() *Loader {
	return &Loader{validate: validator.New()}
}

// LoadDefaults loads the card set embedded in the binary.
func (l *Loader) LoadDefaults(reg *Registry) error {
	fs := afero.FromIOFS{FS: cards.Files}
	return l.LoadDir(fs, ".", reg)
}

// LoadDir loads every *.json card file under dir, failing on the first
// invalid card. Later loads override earlier ones by card name, which is
// how an external content directory patches the embedded defaults.
func (l *Loader) LoadDir(fs afero.Fs, dir string, reg *Registry) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return fmt.Errorf("reading card dir %s: %w", dir, err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		card, err := l.loadFile(fs, path)
		if err != nil {
			return err
		}
		reg.Put(card)
		loaded++
	}

	slog.Info("Loaded character cards", "dir", dir, "count", loaded)
	return nil
}

func (l *Loader) loadFile(fs afero.Fs, path string) (CharacterCard, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return CharacterCard{}, fmt.Errorf("reading card file %s: %w", path, err)
	}

	var card CharacterCard
	if err := json.Unmarshal(data, &card); err != nil {
		return CharacterCard{}, fmt.Errorf("parsing card file %s: %w", path, err)
	}

	if err := l.Validate(card); err != nil {
		return CharacterCard{}, fmt.Errorf("card file %s: %w", path, err)
	}
	return card, nil
}

// Validate checks a card against both the struct tags and the semantic
// rules the tags cannot express: the element and skill types must parse,
// each skill needs either a non-empty cost or the explicit free marker,
// and skill names must be unique within the card.
func (l *Loader) Validate(card CharacterCard) error {
	if err := l.validate.Struct(card); err != nil {
		return fmt.Errorf("card %s: %w", card.Name, err)
	}

	if _, ok := card.ElementType(); !ok {
		return &InvalidCardError{Card: card.Name, Field: "element", Value: card.Element}
	}

	seen := make(map[string]bool, len(card.Skills))
	for _, skill := range card.Skills {
		if seen[skill.Name] {
			return &InvalidCardError{Card: card.Name, Field: "skills", Value: "duplicate skill " + skill.Name}
		}
		seen[skill.Name] = true

		if _, ok := skill.SkillType(); !ok {
			return &InvalidCardError{Card: card.Name, Field: "skills", Value: "unknown type " + skill.Type}
		}
		if skill.Free == (len(skill.Cost) > 0) {
			// Either both set or both empty: the authored file is ambiguous
			// about whether the skill is free.
			return &InvalidCardError{Card: card.Name, Field: "skills", Value: skill.Name + " needs exactly one of cost/free"}
		}
		if _, err := skill.SkillCost(); err != nil {
			return fmt.Errorf("card %s, skill %s: %w", card.Name, skill.Name, err)
		}
		if skill.Damage != nil {
			if _, ok := domain.ParseElement(skill.Damage.Element); !ok {
				return &InvalidCardError{Card: card.Name, Field: "skills", Value: skill.Name + " damage element " + skill.Damage.Element}
			}
		}
	}
	return nil
}
