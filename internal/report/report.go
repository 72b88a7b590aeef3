package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/stattrak/demotrak/internal/model"
	"github.com/stattrak/demotrak/internal/sentiment"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	winner := s.WinningSide.String()
	if winner == "" {
		winner = "TIE"
	}
	fmt.Fprintf(w, "\nMap: %s  |  Date: %s  |  Score: CT %d – T %d (%s)  |  Rounds: %d  |  Match: %s\n\n",
		s.Map, s.PlayedAt, s.CTScore, s.TScore, winner, s.TotalRounds, s.MatchID)
}

// PrintPlayerTable writes the main scoreboard table.
// If focusPlayerID is non-zero, that player's row is marked with ">".
func PrintPlayerTable(w io.Writer, stats []model.PlayerMatchStat, focusPlayerID uint64) {
	table := newTable(w)
	table.Header(" ", "NAME", "TEAM", "RESULT", "K", "A", "D", "K/D", "HS%", "ADR", "MVP", "SCORE")

	for i := range stats {
		s := &stats[i]
		marker := " "
		if focusPlayerID != 0 && s.PlayerID == focusPlayerID {
			marker = ">"
		}
		table.Append(
			marker,
			s.Name,
			s.Team.String(),
			s.Result,
			strconv.Itoa(s.Kills),
			strconv.Itoa(s.Assists),
			strconv.Itoa(s.Deaths),
			fmt.Sprintf("%.2f", s.KDRatio()),
			fmt.Sprintf("%.0f%%", s.HSPercent()),
			fmt.Sprintf("%.1f", s.ADR),
			strconv.Itoa(s.MVPs),
			strconv.Itoa(s.Score),
		)
	}
	table.Render()
}

// PrintHighlightsTable writes multikill, first blood, and clutch totals per player.
func PrintHighlightsTable(w io.Writer, stats []model.PlayerMatchStat, focusPlayerID uint64) {
	table := newTable(w)
	table.Header(" ", "NAME", "2K", "3K", "4K", "ACE", "FB", "FD", "CLUTCH_ATT", "CLUTCH_WON", "1v1", "1v2+", "TEAM_DMG")

	for i := range stats {
		s := &stats[i]
		marker := " "
		if focusPlayerID != 0 && s.PlayerID == focusPlayerID {
			marker = ">"
		}
		laterWins := 0
		for _, n := range s.Clutch.Wins[1:] {
			laterWins += n
		}
		table.Append(
			marker,
			s.Name,
			strconv.Itoa(s.MultiKill.DoubleKills),
			strconv.Itoa(s.MultiKill.TripleKills),
			strconv.Itoa(s.MultiKill.QuadKills),
			strconv.Itoa(s.MultiKill.Aces),
			strconv.Itoa(s.FirstBlood.FirstBloods),
			strconv.Itoa(s.FirstBlood.FirstDeaths),
			strconv.Itoa(s.Clutch.TotalAttempts),
			strconv.Itoa(s.Clutch.TotalWon),
			fmt.Sprintf("%d/%d", s.Clutch.Wins[0], s.Clutch.Attempts[0]),
			fmt.Sprintf("%d/%d", laterWins, s.Clutch.TotalAttempts-s.Clutch.Attempts[0]),
			strconv.Itoa(s.TeamDamage.TeamDamage),
		)
	}
	table.Render()
}

// PrintFlashTable writes the flash utility breakdown per player.
func PrintFlashTable(w io.Writer, stats []model.PlayerMatchStat, focusPlayerID uint64) {
	table := newTable(w)
	table.Header(" ", "NAME", "THROWN", "ENEMIES", "ENEMY_BLIND", "TEAM", "TEAM_BLIND", "SELF", "EFF")

	for i := range stats {
		s := &stats[i]
		marker := " "
		if focusPlayerID != 0 && s.PlayerID == focusPlayerID {
			marker = ">"
		}
		eff := "—"
		if s.Flash.FlashesThrown > 0 {
			eff = fmt.Sprintf("%.2f", s.Flash.Efficiency)
		}
		table.Append(
			marker,
			s.Name,
			strconv.Itoa(s.Flash.FlashesThrown),
			strconv.Itoa(s.Flash.EnemiesFlashed),
			fmt.Sprintf("%.1fs", s.Flash.EnemyBlindDuration),
			strconv.Itoa(s.Flash.TeammatesFlashed),
			fmt.Sprintf("%.1fs", s.Flash.TeamBlindDuration),
			strconv.Itoa(s.Flash.SelfFlashes),
			eff,
		)
	}
	table.Render()
}

// PrintWeaponTable writes one player's per-weapon breakdown.
func PrintWeaponTable(w io.Writer, name string, weapons []model.WeaponStat) {
	table := newTable(w)
	table.Header("PLAYER", "WEAPON", "K", "HS", "DAMAGE", "SHOTS", "HITS", "ACC%")

	for _, ws := range weapons {
		acc := "—"
		if ws.Shots > 0 {
			acc = fmt.Sprintf("%.0f%%", float64(ws.Hits)/float64(ws.Shots)*100)
		}
		table.Append(
			name,
			ws.Weapon,
			strconv.Itoa(ws.Kills),
			strconv.Itoa(ws.Headshots),
			strconv.Itoa(ws.Damage),
			strconv.Itoa(ws.Shots),
			strconv.Itoa(ws.Hits),
			acc,
		)
	}
	table.Render()
}

// PrintCareerSummary writes a career profile overview: header line, lifetime
// averages, trends, milestones, and form.
func PrintCareerSummary(w io.Writer, c *model.PlayerCareer) {
	fmt.Fprintf(w, "\n%s (%d)  |  Matches: %d  |  %s … %s\n\n",
		c.PlayerName, c.PlayerID, c.TotalMatches, c.FirstMatchDate, c.LastMatchDate)

	avg := newTable(w)
	avg.Header("K/D", "ADR", "WIN%", "HS%", "K/MATCH", "MVP/MATCH", "TOXICITY", "FLASH_EFF")
	avg.Append(
		fmt.Sprintf("%.2f", c.CareerAvg.KD),
		fmt.Sprintf("%.1f", c.CareerAvg.ADR),
		fmt.Sprintf("%.1f%%", c.CareerAvg.WinRate),
		fmt.Sprintf("%.1f%%", c.CareerAvg.HeadshotPct),
		fmt.Sprintf("%.1f", c.CareerAvg.KillsPerMatch),
		fmt.Sprintf("%.1f", c.CareerAvg.MVPsPerMatch),
		fmt.Sprintf("%.1f%%", c.CareerAvg.Toxicity),
		fmt.Sprintf("%.2f", c.CareerAvg.FlashEfficiency),
	)
	avg.Render()

	fmt.Fprintf(w, "\nTrends (slope per match): K/D %+.4f  ADR %+.4f  WIN %+.4f  HS %+.4f  TOX %+.4f\n",
		c.Trends.KDTrend, c.Trends.ADRTrend, c.Trends.WinRateTrend,
		c.Trends.HeadshotTrend, c.Trends.ToxicityTrend)

	ms := c.Milestones
	fmt.Fprintf(w, "Best K/D: %.2f (%s)  |  Worst K/D: %.2f (%s)  |  Most kills: %d (%s)\n",
		ms.BestKDValue, ms.BestKDMatch, ms.WorstKDValue, ms.WorstKDMatch,
		ms.HighestKillsValue, ms.HighestKillsMatch)
	fmt.Fprintf(w, "Streaks: longest win %d, longest loss %d, current %+d\n",
		ms.LongestWinStreak, ms.LongestLossStreak, ms.CurrentStreak)

	if c.RecentForm.MatchesAnalyzed > 0 && c.TotalMatches >= c.RecentForm.MatchesAnalyzed {
		f := c.RecentForm
		fmt.Fprintf(w, "Form (last %d): %s  |  K/D %.2f (%+.2f)  ADR %.1f (%+.1f)  WIN %.1f%% (%+.1f)\n",
			f.MatchesAnalyzed, f.FormRating, f.RecentKD, f.KDDiff,
			f.RecentADR, f.ADRDiff, f.RecentWinRate, f.WinRateDiff)
	}
	fmt.Fprintln(w)
}

// PrintMapTable writes per-map career stats, busiest maps first.
func PrintMapTable(w io.Writer, maps map[string]model.MapStats) {
	names := make([]string, 0, len(maps))
	for name := range maps {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if maps[names[i]].Matches != maps[names[j]].Matches {
			return maps[names[i]].Matches > maps[names[j]].Matches
		}
		return names[i] < names[j]
	})

	table := newTable(w)
	table.Header("MAP", "MATCHES", "W", "L", "WIN%", "K/D", "AVG_K", "AVG_D", "AVG_ADR")
	for _, name := range names {
		m := maps[name]
		table.Append(
			name,
			strconv.Itoa(m.Matches),
			strconv.Itoa(m.Wins),
			strconv.Itoa(m.Losses),
			fmt.Sprintf("%.1f%%", m.WinRate),
			fmt.Sprintf("%.2f", m.KD),
			fmt.Sprintf("%.1f", m.AvgKills),
			fmt.Sprintf("%.1f", m.AvgDeaths),
			fmt.Sprintf("%.1f", m.AvgADR),
		)
	}
	table.Render()
}

// PrintCareerIndex writes one summary row per player career.
func PrintCareerIndex(w io.Writer, careers []*model.PlayerCareer) {
	table := newTable(w)
	table.Header("PLAYER", "ID", "MATCHES", "K/D", "ADR", "WIN%", "STREAK", "FORM")
	for _, c := range careers {
		form := c.RecentForm.FormRating
		if form == "" || c.TotalMatches < c.RecentForm.MatchesAnalyzed {
			form = "—"
		}
		table.Append(
			c.PlayerName,
			strconv.FormatUint(c.PlayerID, 10),
			strconv.Itoa(c.TotalMatches),
			fmt.Sprintf("%.2f", c.CareerAvg.KD),
			fmt.Sprintf("%.1f", c.CareerAvg.ADR),
			fmt.Sprintf("%.1f%%", c.CareerAvg.WinRate),
			fmt.Sprintf("%+d", c.Milestones.CurrentStreak),
			form,
		)
	}
	table.Render()
}

// PrintChatSummary writes the match chat sentiment breakdown.
func PrintChatSummary(w io.Writer, sum sentiment.MatchSummary) {
	fmt.Fprintf(w, "\nMessages: %d  |  Overall: %s  |  Toxicity: %.1f%%\n\n",
		sum.TotalMessages, sum.Overall.Dominant, sum.ToxicityScore)
	if sum.TotalMessages == 0 {
		return
	}

	table := newTable(w)
	table.Header("PLAYER", "MSGS", "POS", "NEG", "NEU", "SENTIMENT")
	for _, p := range sum.Players {
		table.Append(
			p.PlayerName,
			strconv.Itoa(p.MessageCount),
			fmt.Sprintf("%.0f%%", p.AvgPositive*100),
			fmt.Sprintf("%.0f%%", p.AvgNegative*100),
			fmt.Sprintf("%.0f%%", p.AvgNeutral*100),
			p.DominantSentiment,
		)
	}
	table.Render()

	if sum.MostToxicPlayer != 0 {
		fmt.Fprintf(w, "\nMost toxic: %d", sum.MostToxicPlayer)
		if sum.MostPositivePlayer != 0 {
			fmt.Fprintf(w, "  |  Most positive: %d", sum.MostPositivePlayer)
		}
		fmt.Fprintln(w)
	}
}

// PrintMatchList writes the stored-match index.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH", "MAP", "DATE", "SCORE", "ROUNDS", "WINNER")
	for _, m := range matches {
		winner := m.WinningSide.String()
		if winner == "" {
			winner = "TIE"
		}
		table.Append(
			m.MatchID,
			m.Map,
			m.PlayedAt,
			fmt.Sprintf("%d-%d", m.CTScore, m.TScore),
			strconv.Itoa(m.TotalRounds),
			winner,
		)
	}
	table.Render()
}
