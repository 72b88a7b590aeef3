package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/report"
	"github.com/stattrak/demotrak/internal/storage"
)

var (
	showFocusPlayer   uint64
	showWeaponsPlayer uint64
)

var showCmd = &cobra.Command{
	Use:   "show <match-id-prefix>",
	Short: "Show stored stats for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Uint64Var(&showFocusPlayer, "player", 0, "mark this player's rows")
	showCmd.Flags().Uint64Var(&showWeaponsPlayer, "weapons", 0, "include the weapon breakdown for this player")
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return showByPrefix(db, args[0])
}

func showByPrefix(db *storage.DB, prefix string) error {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("find match: %w", err)
	}
	if match == nil {
		return fmt.Errorf("no match with prefix %q", prefix)
	}

	stats, err := db.GetPlayerMatchStats(match.MatchID)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerTable(os.Stdout, stats, showFocusPlayer)
	fmt.Println()
	report.PrintHighlightsTable(os.Stdout, stats, showFocusPlayer)
	fmt.Println()
	report.PrintFlashTable(os.Stdout, stats, showFocusPlayer)

	if showWeaponsPlayer != 0 {
		weapons, err := db.GetPlayerWeaponStats(match.MatchID, showWeaponsPlayer)
		if err != nil {
			return fmt.Errorf("query weapon stats: %w", err)
		}
		name := fmt.Sprintf("%d", showWeaponsPlayer)
		for i := range stats {
			if stats[i].PlayerID == showWeaponsPlayer {
				name = stats[i].Name
			}
		}
		fmt.Println()
		report.PrintWeaponTable(os.Stdout, name, weapons)
	}
	return nil
}
