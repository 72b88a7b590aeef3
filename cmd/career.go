package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/report"
)

var careerJSONPath string

var careerCmd = &cobra.Command{
	Use:   "career <steamid64>",
	Short: "Rebuild and show a player's career profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runCareer,
}

func init() {
	careerCmd.Flags().StringVar(&careerJSONPath, "json", "", "also write the full profile to this JSON file")
}

func runCareer(cmd *cobra.Command, args []string) error {
	playerID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid steamid64: %w", err)
	}

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

	builder := newCareerBuilder(cfg, db, logger)
	career, err := builder.Build(cmd.Context(), playerID)
	if err != nil {
		return fmt.Errorf("build career: %w", err)
	}
	if career.TotalMatches == 0 {
		fmt.Println("no matches found")
		return nil
	}

	report.PrintCareerSummary(os.Stdout, career)
	report.PrintMapTable(os.Stdout, career.MapStats)

	if careerJSONPath != "" {
		data, err := json.MarshalIndent(career, "", "  ")
		if err != nil {
			return fmt.Errorf("encode career: %w", err)
		}
		if err := os.WriteFile(careerJSONPath, data, 0o644); err != nil {
			return fmt.Errorf("write career json: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\nProfile written to %s\n", careerJSONPath)
	}
	return nil
}
