package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/modules/codex"
	"github.com/duelsim/duelsim/internal/script"
)

var cardsDir string

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Inspect and validate character cards",
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the loaded character cards",
	Long: `List the embedded character cards, plus any cards found in the
directory given with --dir.`,
	RunE: cardsListHandler,
}

var cardsValidateCmd = &cobra.Command{
	Use:   "validate <card.json>",
	Short: "Validate a card file",
	Long: `Check a card file for structural problems and broken skill
descriptors before shipping it.

Examples:
  duelsim-cli cards validate content/rosaria.json`,
	Args: cobra.ExactArgs(1),
	RunE: cardsValidateHandler,
}

func loadCatalog(dir string) (*content.Registry, error) {
	cards := content.NewRegistry()
	loader := content.NewLoader()
	if err := loader.LoadDefaults(cards); err != nil {
		return nil, fmt.Errorf("loading embedded cards: %w", err)
	}
	if dir != "" {
		if err := loader.LoadDir(afero.NewOsFs(), dir, cards); err != nil {
			return nil, fmt.Errorf("loading cards from %s: %w", dir, err)
		}
	}
	return cards, nil
}

func cardsListHandler(cmd *cobra.Command, args []string) error {
	cards, err := loadCatalog(cardsDir)
	if err != nil {
		return err
	}

	title := cases.Title(language.English)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tELEMENT\tWEAPON\tHP\tSKILLS")
	fmt.Fprintln(w, "----\t-------\t------\t--\t------")
	for _, name := range cards.Names() {
		card, err := cards.Card(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			card.Name,
			title.String(card.Element),
			title.String(card.WeaponType),
			card.HealthPoint,
			len(card.Skills))
	}
	return nil
}

func cardsValidateHandler(cmd *cobra.Command, args []string) error {
	path := args[0]

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var card content.CharacterCard
	if err := json.Unmarshal(raw, &card); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	cards, err := loadCatalog(cardsDir)
	if err != nil {
		return err
	}
	service := codex.NewService(codex.Dependencies{
		Cards:   cards,
		Scripts: script.NewEngine(script.Dependencies{}),
	})

	if err := service.Validate(card); err != nil {
		return fmt.Errorf("card %s is invalid: %w", card.Name, err)
	}

	fmt.Printf("card %s is valid (slug %s, %d skills)\n",
		card.Name, codex.Slugify(card.Name), len(card.Skills))
	return nil
}

func init() {
	rootCmd.AddCommand(cardsCmd)
	cardsCmd.AddCommand(cardsListCmd)
	cardsCmd.AddCommand(cardsValidateCmd)

	cardsCmd.PersistentFlags().StringVarP(&cardsDir, "dir", "d", "", "Additional card directory to load")
}
