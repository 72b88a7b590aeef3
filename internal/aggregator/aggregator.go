// Package aggregator folds one match's decoded event tables into per-player
// stat records.
package aggregator

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/stattrak/demotrak/internal/model"
	"github.com/stattrak/demotrak/internal/rounds"
)

// Result is everything the aggregator derives from one match.
type Result struct {
	Summary model.MatchSummary
	Rounds  []model.Round
	Players map[uint64]*model.PlayerMatchStat
}

// Aggregate runs all stat passes over a decoded match. Each event table is
// sorted by tick before folding; a negative tick anywhere is a contract
// violation and fails the whole match. Missing prerequisite data (no team
// assignments, no valid rounds) skips the dependent passes and logs a
// warning instead of failing.
func Aggregate(dec *model.DecodedMatch, logger *slog.Logger) (*Result, error) {
	if dec == nil {
		return nil, fmt.Errorf("nil decoded match")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("match_id", dec.MatchID)

	kills, err := sortedByTick(dec.Kills, func(k model.Kill) int { return k.Tick })
	if err != nil {
		return nil, fmt.Errorf("kill table: %w", err)
	}
	damages, err := sortedByTick(dec.Damages, func(d model.Damage) int { return d.Tick })
	if err != nil {
		return nil, fmt.Errorf("damage table: %w", err)
	}
	blinds, err := sortedByTick(dec.Blinds, func(b model.Blind) int { return b.Tick })
	if err != nil {
		return nil, fmt.Errorf("blind table: %w", err)
	}
	fires, err := sortedByTick(dec.WeaponFires, func(f model.WeaponFire) int { return f.Tick })
	if err != nil {
		return nil, fmt.Errorf("weapon fire table: %w", err)
	}

	idx, err := rounds.Build(dec.RoundEnds)
	if err != nil {
		return nil, fmt.Errorf("round index: %w", err)
	}
	if idx.Degenerate() {
		logger.Warn("no valid rounds, round-scoped stats unavailable")
	}

	// Team and name lookup from assignments, last seen wins.
	teams := make(map[uint64]model.Side)
	names := make(map[uint64]string)
	for _, ta := range dec.TeamAssignments {
		teams[ta.PlayerID] = ta.Team
		if ta.DisplayName != "" {
			names[ta.PlayerID] = ta.DisplayName
		}
	}

	stats := make(map[uint64]*model.PlayerMatchStat)
	get := func(id uint64) *model.PlayerMatchStat {
		s, ok := stats[id]
		if !ok {
			name, hasName := names[id]
			if !hasName {
				name = "Unknown"
			}
			s = &model.PlayerMatchStat{
				MatchID:  dec.MatchID,
				PlayerID: id,
				Name:     name,
				Team:     teams[id],
			}
			stats[id] = s
		}
		return s
	}
	for id := range teams {
		get(id)
	}

	// ---- Kill pass ----

	type weaponKey struct {
		playerID uint64
		weapon   string
	}
	weaponKills := make(map[weaponKey]int)
	weaponHS := make(map[weaponKey]int)
	weaponDamage := make(map[weaponKey]int)
	weaponShots := make(map[weaponKey]int)
	weaponHits := make(map[weaponKey]int)

	for _, k := range kills {
		if k.AttackerID != 0 {
			a := get(k.AttackerID)
			a.Kills++
			if k.Headshot {
				a.Headshots++
			}
			wk := weaponKey{k.AttackerID, bucketWeapon(k.Weapon)}
			weaponKills[wk]++
			if k.Headshot {
				weaponHS[wk]++
			}
		}
		if k.VictimID != 0 {
			get(k.VictimID).Deaths++
		}
		if k.AssisterID != 0 {
			get(k.AssisterID).Assists++
		}
	}

	// ---- Damage pass ----

	for _, d := range damages {
		if d.AttackerID == 0 {
			continue
		}
		a := get(d.AttackerID)
		a.DamageDealt += d.Amount
		wk := weaponKey{d.AttackerID, bucketWeapon(d.Weapon)}
		weaponDamage[wk] += d.Amount
		weaponHits[wk]++
	}

	// ---- Weapon fire pass ----

	flashesThrown := make(map[uint64]int)
	for _, f := range fires {
		if f.PlayerID == 0 {
			continue
		}
		weaponShots[weaponKey{f.PlayerID, bucketWeapon(f.Weapon)}]++
		if f.Weapon == "flashbang" {
			flashesThrown[f.PlayerID]++
		}
	}

	// A thrown flash counts even when it blinded nobody.
	for id, n := range flashesThrown {
		get(id).Flash.FlashesThrown = n
	}

	// Merge the weapon accumulators. A pair with shots but no kills is
	// still emitted.
	allWeaponKeys := make(map[weaponKey]struct{})
	for wk := range weaponKills {
		allWeaponKeys[wk] = struct{}{}
	}
	for wk := range weaponDamage {
		allWeaponKeys[wk] = struct{}{}
	}
	for wk := range weaponShots {
		allWeaponKeys[wk] = struct{}{}
	}
	for wk := range allWeaponKeys {
		s := get(wk.playerID)
		s.Weapons = append(s.Weapons, model.WeaponStat{
			Weapon:    wk.weapon,
			Kills:     weaponKills[wk],
			Headshots: weaponHS[wk],
			Damage:    weaponDamage[wk],
			Shots:     weaponShots[wk],
			Hits:      weaponHits[wk],
		})
	}
	for _, s := range stats {
		sort.Slice(s.Weapons, func(i, j int) bool {
			if s.Weapons[i].Kills != s.Weapons[j].Kills {
				return s.Weapons[i].Kills > s.Weapons[j].Kills
			}
			if s.Weapons[i].Damage != s.Weapons[j].Damage {
				return s.Weapons[i].Damage > s.Weapons[j].Damage
			}
			return s.Weapons[i].Weapon < s.Weapons[j].Weapon
		})
	}

	// ---- Flash and team damage passes (need team data) ----

	if len(teams) == 0 {
		logger.Warn("no team assignments, skipping flash and team damage breakdowns")
	} else {
		foldFlashes(blinds, teams, get)
		foldTeamDamage(damages, teams, get)
	}

	// ---- Round-scoped passes ----

	killsByRound := groupKillsByRound(kills, idx)

	if idx.Degenerate() {
		logger.Warn("skipping clutch, multikill and first blood passes")
	} else {
		if len(teams) == 0 {
			logger.Warn("no team assignments, skipping clutch pass")
		} else {
			foldClutches(killsByRound, teams, idx, get)
		}
		foldMultiKills(killsByRound, idx, get)
		foldFirstBloods(killsByRound, idx, get)
	}

	// ---- Scoreboard overlay (optional table) ----

	for _, sb := range dec.Scoreboard {
		if sb.PlayerID == 0 {
			continue
		}
		s := get(sb.PlayerID)
		s.MVPs = sb.MVPs
		s.Score = sb.Score
	}

	// ---- Finalize ----

	ctScore, tScore := idx.Score()
	winning := model.SideNone
	if ctScore > tScore {
		winning = model.SideCT
	} else if tScore > ctScore {
		winning = model.SideT
	}

	validRounds := idx.Len()
	if validRounds < 1 {
		validRounds = 1
	}
	for _, s := range stats {
		s.ADR = round2(float64(s.DamageDealt) / float64(validRounds))
		s.Flash.EnemyBlindDuration = round2(s.Flash.EnemyBlindDuration)
		s.Flash.TeamBlindDuration = round2(s.Flash.TeamBlindDuration)
		s.Flash.SelfBlindDuration = round2(s.Flash.SelfBlindDuration)
		if s.Flash.FlashesThrown > 0 {
			s.Flash.Efficiency = round2(float64(s.Flash.EnemiesFlashed) / float64(s.Flash.FlashesThrown))
		}
		switch {
		case winning == model.SideNone || s.Team == model.SideNone:
			s.Result = model.ResultTie
		case s.Team == winning:
			s.Result = model.ResultWin
		default:
			s.Result = model.ResultLoss
		}
	}

	summary := model.MatchSummary{
		MatchID:     dec.MatchID,
		Map:         dec.HeaderString("map_name", "unknown"),
		ServerName:  dec.HeaderString("server_name", ""),
		PlayedAt:    dec.HeaderString("played_at", ""),
		Duration:    dec.HeaderInt("playback_time"),
		TotalRounds: idx.Len(),
		CTScore:     ctScore,
		TScore:      tScore,
		WinningSide: winning,
	}

	return &Result{Summary: summary, Rounds: idx.Rounds(), Players: stats}, nil
}

// sortedByTick copies a table sorted ascending by tick, rejecting negative
// ticks. The input slice is never mutated.
func sortedByTick[T any](events []T, tick func(T) int) ([]T, error) {
	out := make([]T, len(events))
	copy(out, events)
	for _, e := range out {
		if tick(e) < 0 {
			return nil, fmt.Errorf("negative tick %d", tick(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return tick(out[i]) < tick(out[j]) })
	return out, nil
}

// bucketWeapon maps an empty weapon string to the "unknown" bucket so the
// event is never dropped silently.
func bucketWeapon(w string) string {
	if w == "" {
		return "unknown"
	}
	return w
}

// foldFlashes categorizes non-warmup blind events as self, team, or enemy
// flashes from the attacker's perspective. A party with no team assignment
// is never a teammate, so those blinds land in the enemy bucket.
func foldFlashes(blinds []model.Blind, teams map[uint64]model.Side, get func(uint64) *model.PlayerMatchStat) {
	for _, b := range blinds {
		if b.IsWarmup || b.AttackerID == 0 {
			continue
		}
		s := get(b.AttackerID)
		aTeam, aKnown := teams[b.AttackerID]
		vTeam, vKnown := teams[b.VictimID]
		switch {
		case b.AttackerID == b.VictimID:
			s.Flash.SelfFlashes++
			s.Flash.SelfBlindDuration += b.DurationSeconds
		case aKnown && vKnown && aTeam == vTeam:
			s.Flash.TeammatesFlashed++
			s.Flash.TeamBlindDuration += b.DurationSeconds
		default:
			s.Flash.EnemiesFlashed++
			s.Flash.EnemyBlindDuration += b.DurationSeconds
		}
	}
}

// foldTeamDamage splits each player's outgoing damage into enemy, team, and
// self damage.
func foldTeamDamage(damages []model.Damage, teams map[uint64]model.Side, get func(uint64) *model.PlayerMatchStat) {
	for _, d := range damages {
		if d.AttackerID == 0 || d.Amount <= 0 {
			continue
		}
		s := get(d.AttackerID)
		s.TeamDamage.TotalDamage += d.Amount
		aTeam, aKnown := teams[d.AttackerID]
		vTeam, vKnown := teams[d.VictimID]
		switch {
		case d.AttackerID == d.VictimID:
			s.TeamDamage.SelfDamage += d.Amount
		case aKnown && vKnown && aTeam == vTeam:
			s.TeamDamage.TeamDamage += d.Amount
			s.TeamDamage.TeamDamageIncidents++
		default:
			s.TeamDamage.EnemyDamage += d.Amount
		}
	}
}

// groupKillsByRound attributes each kill to a round via the index. The
// input is already sorted by tick, so each group stays tick-ordered.
func groupKillsByRound(kills []model.Kill, idx *rounds.Index) map[int][]model.Kill {
	byRound := make(map[int][]model.Kill)
	for _, k := range kills {
		rn := idx.RoundForTick(k.Tick)
		byRound[rn] = append(byRound[rn], k)
	}
	return byRound
}

type clutchSituation struct {
	playerID     uint64
	enemiesAlive int
}

// foldClutches replays each round's kills against a live-player set and
// records 1vX situations. Only the first situation per (round, player) is
// kept; later qualifying kills for the same lone survivor are no-ops.
func foldClutches(killsByRound map[int][]model.Kill, teams map[uint64]model.Side, idx *rounds.Index, get func(uint64) *model.PlayerMatchStat) {
	for _, round := range idx.Rounds() {
		alive := make(map[uint64]model.Side, len(teams))
		for id, side := range teams {
			alive[id] = side
		}

		recorded := make(map[uint64]clutchSituation)
		for _, k := range killsByRound[round.Number] {
			delete(alive, k.VictimID)

			bySide := make(map[model.Side][]uint64)
			for id, side := range alive {
				bySide[side] = append(bySide[side], id)
			}
			if len(bySide) != 2 {
				continue
			}
			for side, members := range bySide {
				if len(members) != 1 {
					continue
				}
				lone := members[0]
				if _, seen := recorded[lone]; seen {
					continue
				}
				enemies := 0
				for other, otherMembers := range bySide {
					if other != side {
						enemies = len(otherMembers)
					}
				}
				recorded[lone] = clutchSituation{playerID: lone, enemiesAlive: enemies}
			}
		}

		for _, sit := range recorded {
			if sit.enemiesAlive < 1 || sit.enemiesAlive > 5 {
				continue
			}
			s := get(sit.playerID)
			won := round.WinnerSide == teams[sit.playerID]
			s.Clutch.Attempts[sit.enemiesAlive-1]++
			s.Clutch.TotalAttempts++
			if won {
				s.Clutch.Wins[sit.enemiesAlive-1]++
				s.Clutch.TotalWon++
			}
		}
	}
}

// foldMultiKills maps each attacker's per-round kill count to exactly one
// multikill category.
func foldMultiKills(killsByRound map[int][]model.Kill, idx *rounds.Index, get func(uint64) *model.PlayerMatchStat) {
	for _, round := range idx.Rounds() {
		perAttacker := make(map[uint64]int)
		for _, k := range killsByRound[round.Number] {
			if k.AttackerID == 0 {
				continue
			}
			perAttacker[k.AttackerID]++
		}
		for id, n := range perAttacker {
			s := get(id)
			switch {
			case n == 2:
				s.MultiKill.DoubleKills++
			case n == 3:
				s.MultiKill.TripleKills++
			case n == 4:
				s.MultiKill.QuadKills++
			case n >= 5:
				s.MultiKill.Aces++
			default:
				continue
			}
			s.MultiKill.TotalMultikills++
		}
	}
}

// foldFirstBloods credits the minimum-tick kill of each round.
func foldFirstBloods(killsByRound map[int][]model.Kill, idx *rounds.Index, get func(uint64) *model.PlayerMatchStat) {
	for _, round := range idx.Rounds() {
		roundKills := killsByRound[round.Number]
		if len(roundKills) == 0 {
			continue
		}
		first := roundKills[0] // groups are tick-ordered
		if first.AttackerID == 0 {
			continue
		}
		get(first.AttackerID).FirstBlood.FirstBloods++
		if first.VictimID != 0 {
			get(first.VictimID).FirstBlood.FirstDeaths++
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
