package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/engine"
)

var (
	simSeed      int64
	simDeckOne   []string
	simDeckTwo   []string
	simMaxRounds int
	simDir       string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a headless match and print the round log",
	Long: `Run a match between two decks without a server. Both sides follow a
fixed policy: lead with the first character, fire the first skill every
turn, switch when the active character falls. The same seed always
produces the same match.

Examples:
  duelsim-cli simulate --seed 7
  duelsim-cli simulate --deck-one Kaeya,Diluc --deck-two Fischl,Noelle --max-rounds 20`,
	RunE: simulateHandler,
}

func simulateHandler(cmd *cobra.Command, args []string) error {
	cards, err := loadCatalog(simDir)
	if err != nil {
		return err
	}

	deckOne, err := resolveDeck(cards, simDeckOne)
	if err != nil {
		return err
	}
	deckTwo, err := resolveDeck(cards, simDeckTwo)
	if err != nil {
		return err
	}

	game, err := engine.NewGame(simSeed, deckOne, deckTwo)
	if err != nil {
		return err
	}

	players := []domain.PlayerID{domain.Player1, domain.Player2}
	for _, p := range players {
		if err := game.Submit(engine.ChangeCharacterAction{Side: p, Position: 0}); err != nil {
			return fmt.Errorf("opening pick for %s: %w", p, err)
		}
	}

	fmt.Printf("seed %d: %v vs %v\n\n", simSeed, simDeckOne, simDeckTwo)

	for game.Phase() == engine.PhasePlay && game.Round() <= simMaxRounds {
		round := game.Round()
		fmt.Printf("round %d\n", round)

		for _, p := range players {
			if game.Phase() != engine.PhasePlay {
				break
			}
			if err := takeTurn(game, p); err != nil {
				return err
			}
		}
		for _, p := range players {
			if game.Phase() != engine.PhasePlay {
				break
			}
			if err := game.Submit(engine.DeclareEndAction{Side: p}); err != nil {
				return fmt.Errorf("%s declaring end: %w", p, err)
			}
		}

		// A policy that cannot move anymore would loop forever.
		if game.Phase() == engine.PhasePlay && game.Round() == round {
			return fmt.Errorf("round %d did not advance", round)
		}
	}

	fmt.Println()
	printOutcome(game)
	return nil
}

// takeTurn fires the active character's first skill, switching first if
// the previous active character fell.
func takeTurn(game *engine.Game, p domain.PlayerID) error {
	side, err := game.Side(p)
	if err != nil {
		return err
	}

	if side.ActiveCharacter() == nil {
		pos, ok := firstAlive(side)
		if !ok {
			return nil
		}
		if err := game.Submit(engine.ChangeCharacterAction{Side: p, Position: pos}); err != nil {
			return fmt.Errorf("%s switching in: %w", p, err)
		}
		if game.Phase() != engine.PhasePlay {
			return nil
		}
	}

	active := side.ActiveCharacter()
	names := active.SkillNames()
	if len(names) == 0 {
		return nil
	}
	skill := names[0]

	if err := game.Submit(engine.UseSkillAction{Side: p, SkillName: skill}); err != nil {
		return fmt.Errorf("%s using %s: %w", p, skill, err)
	}

	enemy, err := game.Side(p.Opponent())
	if err != nil {
		return err
	}
	fmt.Printf("  %s: %s uses %s", p, active.Name, skill)
	if target := enemy.ActiveCharacter(); target != nil {
		fmt.Printf(" (%s at %d hp)", target.Name, target.HealthPoint)
	}
	fmt.Println()
	return nil
}

func firstAlive(side *engine.Side) (domain.CharPos, bool) {
	for _, ch := range side.Characters {
		if ch.Alive {
			return ch.Position, true
		}
	}
	return domain.PosNone, false
}

func resolveDeck(cards *content.Registry, names []string) ([]content.CharacterCard, error) {
	deck := make([]content.CharacterCard, 0, len(names))
	for _, name := range names {
		card, err := cards.Card(name)
		if err != nil {
			return nil, err
		}
		deck = append(deck, card)
	}
	return deck, nil
}

func printOutcome(game *engine.Game) {
	snapshot := game.Encode()
	if game.Phase() == engine.PhaseFinished {
		fmt.Printf("winner: %s after %d round(s)\n\n", snapshot.Winner, snapshot.Round)
	} else {
		fmt.Printf("no winner after %d round(s)\n\n", snapshot.Round-1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "SIDE\tCHARACTER\tHP\tPOWER\tALIVE")
	for _, side := range snapshot.Sides {
		for _, ch := range side.Characters {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%t\n",
				side.Player, ch.Name, ch.HealthPoint, ch.Power, ch.Alive)
		}
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "Deterministic seed for the match")
	simulateCmd.Flags().StringSliceVar(&simDeckOne, "deck-one", []string{"Kaeya"}, "Card names for player one")
	simulateCmd.Flags().StringSliceVar(&simDeckTwo, "deck-two", []string{"Fischl"}, "Card names for player two")
	simulateCmd.Flags().IntVar(&simMaxRounds, "max-rounds", 15, "Stop after this many rounds without a winner")
	simulateCmd.Flags().StringVarP(&simDir, "dir", "d", "", "Additional card directory to load")
}
