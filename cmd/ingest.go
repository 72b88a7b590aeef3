package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/aggregator"
	"github.com/stattrak/demotrak/internal/feed"
	"github.com/stattrak/demotrak/internal/model"
	"github.com/stattrak/demotrak/internal/report"
)

var ingestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <match.json>...",
	Short: "Aggregate decoded match files and store the results",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest matches that are already stored")
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range args {
		dec, err := feed.Load(path)
		if err != nil {
			return err
		}

		exists, err := db.MatchExists(dec.MatchID)
		if err != nil {
			return fmt.Errorf("check match: %w", err)
		}
		if exists && !ingestForce {
			fmt.Fprintf(os.Stdout, "Match %s already stored, skipping %s.\n", dec.MatchID, path)
			continue
		}

		res, err := aggregator.Aggregate(dec, logger)
		if err != nil {
			return fmt.Errorf("aggregate %s: %w", path, err)
		}

		if err := db.InsertMatch(res.Summary); err != nil {
			return fmt.Errorf("store match: %w", err)
		}
		if err := db.InsertRounds(dec.MatchID, res.Rounds); err != nil {
			return fmt.Errorf("store rounds: %w", err)
		}
		stats := make([]model.PlayerMatchStat, 0, len(res.Players))
		for _, s := range res.Players {
			stats = append(stats, *s)
		}
		sort.Slice(stats, func(i, j int) bool { return stats[i].Kills > stats[j].Kills })
		if err := db.InsertPlayerMatchStats(stats); err != nil {
			return fmt.Errorf("store player stats: %w", err)
		}
		if err := db.InsertChatMessages(dec.MatchID, dec.Chat); err != nil {
			return fmt.Errorf("store chat: %w", err)
		}

		report.PrintMatchSummary(os.Stdout, res.Summary)
		report.PrintPlayerTable(os.Stdout, stats, 0)
	}
	return nil
}
