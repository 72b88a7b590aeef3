// Package career rebuilds per-player career profiles from persisted match
// history: lifetime averages, least-squares trends, milestones, streaks,
// recent form, and per-map stats.
package career

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/stattrak/demotrak/internal/model"
	"github.com/stattrak/demotrak/internal/sentiment"
)

// MatchChat is one match's worth of a player's chat messages, dated for
// chronological ordering.
type MatchChat struct {
	MatchID  string
	Date     string
	Messages []model.ChatMessage
}

// Store is the read side the career engine needs. The sqlite store
// implements it.
type Store interface {
	PlayerIDs(ctx context.Context) ([]uint64, error)
	PlayerPerformance(ctx context.Context, playerID uint64) (name string, history []model.MatchPerformance, err error)
	PlayerChat(ctx context.Context, playerID uint64) ([]MatchChat, error)
	PlayerFlashHistory(ctx context.Context, playerID uint64) ([]model.MatchFlashStats, error)
}

// FormConfig controls the recent-form comparison.
type FormConfig struct {
	Window           int     // matches in the recent window
	KDThreshold      float64 // kd diff counted as an indicator
	ADRThreshold     float64
	WinRateThreshold float64 // percentage points
}

func DefaultFormConfig() FormConfig {
	return FormConfig{Window: 5, KDThreshold: 0.1, ADRThreshold: 5, WinRateThreshold: 10}
}

// Builder assembles career profiles from a store and a sentiment analyzer.
type Builder struct {
	store    Store
	analyzer sentiment.Analyzer
	form     FormConfig
	logger   *slog.Logger
}

func NewBuilder(store Store, analyzer sentiment.Analyzer, form FormConfig, logger *slog.Logger) *Builder {
	if analyzer == nil {
		analyzer = sentiment.NewKeywordScorer(nil, nil)
	}
	if form.Window <= 0 {
		form = DefaultFormConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, analyzer: analyzer, form: form, logger: logger}
}

// Build rebuilds one player's full career profile from scratch. A player
// with no persisted matches yields an empty profile, not an error.
func (b *Builder) Build(ctx context.Context, playerID uint64) (*model.PlayerCareer, error) {
	name, perf, err := b.store.PlayerPerformance(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load performance history: %w", err)
	}
	career := &model.PlayerCareer{
		PlayerID:   playerID,
		PlayerName: name,
		MapStats:   map[string]model.MapStats{},
	}
	if len(perf) == 0 {
		b.logger.Warn("no matches for player", "player_id", playerID)
		career.PlayerName = "Unknown"
		return career, nil
	}

	sort.SliceStable(perf, func(i, j int) bool { return perf[i].Date < perf[j].Date })
	career.PerformanceHistory = perf
	career.TotalMatches = len(perf)
	career.FirstMatchDate = perf[0].Date
	career.LastMatchDate = perf[len(perf)-1].Date

	chat, err := b.store.PlayerChat(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	career.SentimentHistory = b.buildSentimentHistory(chat)

	flash, err := b.store.PlayerFlashHistory(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("load flash history: %w", err)
	}
	sort.SliceStable(flash, func(i, j int) bool { return flash[i].Date < flash[j].Date })
	career.FlashHistory = flash

	career.CareerAvg = averages(career)
	career.Trends = trends(career)
	career.Milestones = milestones(career)
	career.RecentForm = b.recentForm(career)
	career.MapStats = mapStats(perf)
	return career, nil
}

// buildAllConcurrency bounds the per-player fan-out in BuildAll.
const buildAllConcurrency = 8

// BuildAll rebuilds careers for every player in the store. Players are
// processed concurrently; the first failure cancels the rest.
func (b *Builder) BuildAll(ctx context.Context) (map[uint64]*model.PlayerCareer, error) {
	ids, err := b.store.PlayerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(buildAllConcurrency)

	var mu sync.Mutex
	careers := make(map[uint64]*model.PlayerCareer, len(ids))
	for _, id := range ids {
		id := id
		g.Go(func() error {
			career, err := b.Build(ctx, id)
			if err != nil {
				return fmt.Errorf("player %d: %w", id, err)
			}
			mu.Lock()
			careers[id] = career
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return careers, nil
}

// buildSentimentHistory scores each match's chat and keeps one summary row
// per match, in chronological order.
func (b *Builder) buildSentimentHistory(chat []MatchChat) []model.MatchSentiment {
	history := make([]model.MatchSentiment, 0, len(chat))
	for _, mc := range chat {
		if len(mc.Messages) == 0 {
			continue
		}
		var pos, neg, neu float64
		toxic := 0
		for _, msg := range mc.Messages {
			s := b.analyzer.Analyze(msg.Message)
			pos += s.Positive
			neg += s.Negative
			neu += s.Neutral
			if s.Negative > 0.4 {
				toxic++
			}
		}
		n := float64(len(mc.Messages))
		row := model.MatchSentiment{
			MatchID:       mc.MatchID,
			Date:          mc.Date,
			MessageCount:  len(mc.Messages),
			AvgPositive:   round3(pos / n),
			AvgNegative:   round3(neg / n),
			AvgNeutral:    round3(neu / n),
			ToxicityScore: round1(float64(toxic) / n * 100),
		}
		switch {
		case row.AvgNegative > row.AvgPositive && row.AvgNegative > row.AvgNeutral:
			row.DominantSentiment = sentiment.LabelNegative
		case row.AvgPositive > row.AvgNegative && row.AvgPositive > row.AvgNeutral:
			row.DominantSentiment = sentiment.LabelPositive
		default:
			row.DominantSentiment = sentiment.LabelNeutral
		}
		history = append(history, row)
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	return history
}

// LinearTrend returns the least-squares slope of values over their index.
// Fewer than three points is not enough signal, so the slope is exactly 0.
func LinearTrend(values []float64) float64 {
	if len(values) < 3 {
		return 0.0
	}
	n := float64(len(values))
	xMean := (n - 1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= n

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0.0
	}
	return num / den
}

// RollingAverage smooths values with a trailing window. Inputs shorter than
// the window are returned as-is.
func RollingAverage(values []float64, window int) []float64 {
	if len(values) < window || window <= 0 {
		return values
	}
	out := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		var sum float64
		for _, v := range values[start : i+1] {
			sum += v
		}
		out[i] = sum / float64(i+1-start)
	}
	return out
}

func averages(career *model.PlayerCareer) model.CareerAverages {
	var avg model.CareerAverages
	perf := career.PerformanceHistory
	if len(perf) == 0 {
		return avg
	}
	n := float64(len(perf))

	var kills, deaths, mvps, wins int
	var adr, hs float64
	for _, p := range perf {
		kills += p.Kills
		deaths += p.Deaths
		mvps += p.MVPs
		adr += p.ADR
		hs += p.HeadshotPct
		if p.Result == model.ResultWin {
			wins++
		}
	}
	if deaths > 0 {
		avg.KD = round2(float64(kills) / float64(deaths))
	} else {
		avg.KD = float64(kills)
	}
	avg.ADR = round1(adr / n)
	avg.WinRate = round1(float64(wins) / n * 100)
	avg.HeadshotPct = round1(hs / n)
	avg.KillsPerMatch = round1(float64(kills) / n)
	avg.DeathsPerMatch = round1(float64(deaths) / n)
	avg.MVPsPerMatch = round1(float64(mvps) / n)

	if len(career.SentimentHistory) > 0 {
		var tox float64
		msgs := 0
		for _, s := range career.SentimentHistory {
			tox += s.ToxicityScore
			msgs += s.MessageCount
		}
		sn := float64(len(career.SentimentHistory))
		avg.Toxicity = round1(tox / sn)
		avg.MessagesPerMatch = round1(float64(msgs) / sn)
	}

	if len(career.FlashHistory) > 0 {
		var enemies, teammates, thrown int
		for _, f := range career.FlashHistory {
			enemies += f.EnemiesFlashed
			teammates += f.TeammatesFlashed
			thrown += f.FlashesThrown
		}
		fn := float64(len(career.FlashHistory))
		avg.EnemiesFlashedPerMatch = round1(float64(enemies) / fn)
		avg.TeammatesFlashedPerMatch = round1(float64(teammates) / fn)
		if thrown > 0 {
			avg.FlashEfficiency = round2(float64(enemies) / float64(thrown))
		}
	}
	return avg
}

func trends(career *model.PlayerCareer) model.CareerTrends {
	var tr model.CareerTrends
	perf := career.PerformanceHistory

	kd := make([]float64, len(perf))
	adr := make([]float64, len(perf))
	hs := make([]float64, len(perf))
	winVals := make([]float64, len(perf))
	for i, p := range perf {
		kd[i] = p.KD
		adr[i] = p.ADR
		hs[i] = p.HeadshotPct
		if p.Result == model.ResultWin {
			winVals[i] = 1
		}
	}
	tr.KDTrend = round4(LinearTrend(kd))
	tr.ADRTrend = round4(LinearTrend(adr))
	tr.HeadshotTrend = round4(LinearTrend(hs))
	tr.WinRateTrend = round4(LinearTrend(winVals))

	tox := make([]float64, len(career.SentimentHistory))
	for i, s := range career.SentimentHistory {
		tox[i] = s.ToxicityScore
	}
	tr.ToxicityTrend = round4(LinearTrend(tox))

	eff := make([]float64, len(career.FlashHistory))
	teamFlash := make([]float64, len(career.FlashHistory))
	for i, f := range career.FlashHistory {
		eff[i] = f.Efficiency
		teamFlash[i] = float64(f.TeammatesFlashed)
	}
	tr.FlashEfficiencyTrend = round4(LinearTrend(eff))
	tr.TeamFlashTrend = round4(LinearTrend(teamFlash))
	return tr
}

func milestones(career *model.PlayerCareer) model.CareerMilestones {
	var ms model.CareerMilestones
	perf := career.PerformanceHistory
	if len(perf) == 0 {
		return ms
	}

	// Ties keep the earliest match.
	best, worst, mostKills := perf[0], perf[0], perf[0]
	for _, p := range perf[1:] {
		if p.KD > best.KD {
			best = p
		}
		if p.KD < worst.KD {
			worst = p
		}
		if p.Kills > mostKills.Kills {
			mostKills = p
		}
	}
	ms.BestKDMatch, ms.BestKDValue = best.MatchID, best.KD
	ms.WorstKDMatch, ms.WorstKDValue = worst.MatchID, worst.KD
	ms.HighestKillsMatch, ms.HighestKillsValue = mostKills.MatchID, mostKills.Kills

	// Streaks. Ties break both kinds of streak.
	var maxWin, maxLoss, streak int
	var streakType string
	for _, p := range perf {
		switch p.Result {
		case model.ResultWin:
			if streakType == model.ResultWin {
				streak++
			} else {
				streak, streakType = 1, model.ResultWin
			}
			if streak > maxWin {
				maxWin = streak
			}
		case model.ResultLoss:
			if streakType == model.ResultLoss {
				streak++
			} else {
				streak, streakType = 1, model.ResultLoss
			}
			if streak > maxLoss {
				maxLoss = streak
			}
		default:
			streak, streakType = 0, ""
		}
	}
	ms.LongestWinStreak = maxWin
	ms.LongestLossStreak = maxLoss
	if streakType == model.ResultWin {
		ms.CurrentStreak = streak
	} else {
		ms.CurrentStreak = -streak
	}
	ms.CurrentStreakType = streakType

	if len(career.SentimentHistory) > 0 {
		mostToxic := career.SentimentHistory[0]
		for _, s := range career.SentimentHistory[1:] {
			if s.ToxicityScore > mostToxic.ToxicityScore {
				mostToxic = s
			}
		}
		ms.MostToxicMatch, ms.MostToxicValue = mostToxic.MatchID, mostToxic.ToxicityScore
	}
	if len(career.FlashHistory) > 0 {
		bestFlash := career.FlashHistory[0]
		for _, f := range career.FlashHistory[1:] {
			if f.EnemiesFlashed > bestFlash.EnemiesFlashed {
				bestFlash = f
			}
		}
		ms.BestFlashMatch, ms.BestFlashValue = bestFlash.MatchID, bestFlash.EnemiesFlashed
	}
	return ms
}

func (b *Builder) recentForm(career *model.PlayerCareer) model.RecentForm {
	form := model.RecentForm{MatchesAnalyzed: b.form.Window, FormRating: model.FormAverage}
	perf := career.PerformanceHistory
	// Below the window the zero-filled neutral result stands.
	if len(perf) < b.form.Window {
		return form
	}
	recent := perf[len(perf)-b.form.Window:]
	avg := career.CareerAvg

	var kills, deaths, wins int
	var adr float64
	for _, p := range recent {
		kills += p.Kills
		deaths += p.Deaths
		adr += p.ADR
		if p.Result == model.ResultWin {
			wins++
		}
	}
	if deaths > 0 {
		form.RecentKD = round2(float64(kills) / float64(deaths))
	} else {
		form.RecentKD = float64(kills)
	}
	form.CareerKD = avg.KD
	form.KDDiff = round2(form.RecentKD - form.CareerKD)

	form.RecentADR = round1(adr / float64(len(recent)))
	form.CareerADR = avg.ADR
	form.ADRDiff = round1(form.RecentADR - form.CareerADR)

	form.RecentWinRate = round1(float64(wins) / float64(b.form.Window) * 100)
	form.CareerWinRate = avg.WinRate
	form.WinRateDiff = round1(form.RecentWinRate - form.CareerWinRate)

	indicators := 0
	switch {
	case form.KDDiff > b.form.KDThreshold:
		indicators++
	case form.KDDiff < -b.form.KDThreshold:
		indicators--
	}
	switch {
	case form.ADRDiff > b.form.ADRThreshold:
		indicators++
	case form.ADRDiff < -b.form.ADRThreshold:
		indicators--
	}
	switch {
	case form.WinRateDiff > b.form.WinRateThreshold:
		indicators++
	case form.WinRateDiff < -b.form.WinRateThreshold:
		indicators--
	}
	switch {
	case indicators >= 2:
		form.FormRating = model.FormHot
	case indicators <= -2:
		form.FormRating = model.FormCold
	default:
		form.FormRating = model.FormAverage
	}
	return form
}

func mapStats(perf []model.MatchPerformance) map[string]model.MapStats {
	type acc struct {
		matches, wins, losses, kills, deaths int
		adr                                  float64
	}
	byMap := make(map[string]*acc)
	for _, p := range perf {
		a, ok := byMap[p.Map]
		if !ok {
			a = &acc{}
			byMap[p.Map] = a
		}
		a.matches++
		a.kills += p.Kills
		a.deaths += p.Deaths
		a.adr += p.ADR
		switch p.Result {
		case model.ResultWin:
			a.wins++
		case model.ResultLoss:
			a.losses++
		}
	}

	out := make(map[string]model.MapStats, len(byMap))
	for name, a := range byMap {
		n := float64(a.matches)
		st := model.MapStats{
			Matches:   a.matches,
			Wins:      a.wins,
			Losses:    a.losses,
			WinRate:   round1(float64(a.wins) / n * 100),
			AvgKills:  round1(float64(a.kills) / n),
			AvgDeaths: round1(float64(a.deaths) / n),
			AvgADR:    round1(a.adr / n),
		}
		if a.deaths > 0 {
			st.KD = round2(float64(a.kills) / float64(a.deaths))
		} else {
			st.KD = float64(a.kills)
		}
		out[name] = st
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
