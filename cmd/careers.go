package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/model"
	"github.com/stattrak/demotrak/internal/report"
)

var careersCmd = &cobra.Command{
	Use:   "careers",
	Short: "Rebuild career profiles for every stored player",
	Args:  cobra.NoArgs,
	RunE:  runCareers,
}

func runCareers(cmd *cobra.Command, args []string) error {
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
	careers, err := builder.BuildAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("build careers: %w", err)
	}
	if len(careers) == 0 {
		fmt.Println("no players stored")
		return nil
	}

	out := make([]*model.PlayerCareer, 0, len(careers))
	for _, c := range careers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMatches != out[j].TotalMatches {
			return out[i].TotalMatches > out[j].TotalMatches
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	report.PrintCareerIndex(os.Stdout, out)
	return nil
}
