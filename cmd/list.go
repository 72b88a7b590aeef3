package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("query matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("no matches stored")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}
