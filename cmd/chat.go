package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/report"
	"github.com/stattrak/demotrak/internal/sentiment"
)

var chatCmd = &cobra.Command{
	Use:   "chat <match-id-prefix>",
	Short: "Score a stored match's chat log",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("find match: %w", err)
	}
	if match == nil {
		return fmt.Errorf("no match with prefix %q", args[0])
	}

	messages, err := db.GetChatMessages(match.MatchID)
	if err != nil {
		return fmt.Errorf("query chat: %w", err)
	}

	sum := sentiment.AnalyzeMatch(match.MatchID, messages, newAnalyzer(cfg))
	report.PrintChatSummary(os.Stdout, sum)
	return nil
}
