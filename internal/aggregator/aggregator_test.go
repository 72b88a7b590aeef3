package aggregator

import (
	"testing"

	"github.com/stattrak/demotrak/internal/model"
)

const (
	playerA uint64 = 1001 // CT
	playerB uint64 = 1002 // CT
	playerC uint64 = 1003 // T
	playerD uint64 = 1004 // T
)

func twoVsTwo() []model.TeamAssignment {
	return []model.TeamAssignment{
		{PlayerID: playerA, Team: model.SideCT, DisplayName: "alpha"},
		{PlayerID: playerB, Team: model.SideCT, DisplayName: "bravo"},
		{PlayerID: playerC, Team: model.SideT, DisplayName: "charlie"},
		{PlayerID: playerD, Team: model.SideT, DisplayName: "delta"},
	}
}

func makeMatch(t *testing.T) *model.DecodedMatch {
	t.Helper()
	return &model.DecodedMatch{
		MatchID:         "m1",
		Header:          map[string]string{"map_name": "de_dust2"},
		RoundEnds:       []model.RoundEnd{{RoundNumber: 1, EndTick: 10000, WinnerSide: model.SideCT}},
		TeamAssignments: twoVsTwo(),
	}
}

func aggregate(t *testing.T, dec *model.DecodedMatch) *Result {
	t.Helper()
	res, err := Aggregate(dec, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	return res
}

func TestKillCounts(t *testing.T) {
	dec := makeMatch(t)
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: "ak47", Headshot: true},
		{Tick: 200, AttackerID: playerA, VictimID: playerD, Weapon: "ak47", AssisterID: playerB},
		{Tick: 300, AttackerID: playerC, VictimID: playerA, Weapon: "awp"},
	}
	res := aggregate(t, dec)

	a := res.Players[playerA]
	if a.Kills != 2 || a.Deaths != 1 || a.Headshots != 1 {
		t.Errorf("player A: got %d/%d kills/deaths, %d headshots", a.Kills, a.Deaths, a.Headshots)
	}
	if res.Players[playerB].Assists != 1 {
		t.Errorf("player B assists = %d, want 1", res.Players[playerB].Assists)
	}
	if res.Players[playerC].Deaths != 1 || res.Players[playerC].Kills != 1 {
		t.Errorf("player C: got %d kills %d deaths", res.Players[playerC].Kills, res.Players[playerC].Deaths)
	}
}

func TestADRDividesByValidRounds(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideNone}, // invalid, excluded
		{RoundNumber: 3, EndTick: 3000, WinnerSide: model.SideT},
	}
	dec.Damages = []model.Damage{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: "ak47", Amount: 100},
		{Tick: 1500, AttackerID: playerA, VictimID: playerD, Weapon: "ak47", Amount: 55},
	}
	res := aggregate(t, dec)
	if got := res.Players[playerA].ADR; got != 77.5 {
		t.Errorf("ADR = %v, want 77.5 (155 damage over 2 valid rounds)", got)
	}
}

func TestADRWithNoValidRounds(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = nil
	dec.Damages = []model.Damage{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Amount: 80},
	}
	res := aggregate(t, dec)
	// Denominator floors at 1 so the stat stays defined.
	if got := res.Players[playerA].ADR; got != 80 {
		t.Errorf("ADR = %v, want 80", got)
	}
}

func TestWeaponStatsMergeAndUnknownBucket(t *testing.T) {
	dec := makeMatch(t)
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: ""},
	}
	dec.Damages = []model.Damage{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: "", Amount: 100},
	}
	dec.WeaponFires = []model.WeaponFire{
		{Tick: 50, PlayerID: playerA, Weapon: "glock"},
		{Tick: 60, PlayerID: playerA, Weapon: "glock"},
	}
	res := aggregate(t, dec)

	byWeapon := make(map[string]model.WeaponStat)
	for _, w := range res.Players[playerA].Weapons {
		byWeapon[w.Weapon] = w
	}
	unk, ok := byWeapon["unknown"]
	if !ok {
		t.Fatal("missing unknown weapon bucket")
	}
	if unk.Kills != 1 || unk.Damage != 100 || unk.Hits != 1 {
		t.Errorf("unknown bucket = %+v", unk)
	}
	// A weapon with fires but no kills still gets a row.
	glock, ok := byWeapon["glock"]
	if !ok {
		t.Fatal("missing glock row for zero-kill weapon")
	}
	if glock.Shots != 2 || glock.Kills != 0 {
		t.Errorf("glock = %+v", glock)
	}
}

func TestFlashCategorization(t *testing.T) {
	dec := makeMatch(t)
	dec.Blinds = []model.Blind{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, DurationSeconds: 2.5},
		{Tick: 110, AttackerID: playerA, VictimID: playerD, DurationSeconds: 1.5},
		{Tick: 120, AttackerID: playerA, VictimID: playerB, DurationSeconds: 1.0},
		{Tick: 130, AttackerID: playerA, VictimID: playerA, DurationSeconds: 0.5},
		{Tick: 140, AttackerID: playerA, VictimID: playerC, DurationSeconds: 3.0, IsWarmup: true},
	}
	dec.WeaponFires = []model.WeaponFire{
		{Tick: 90, PlayerID: playerA, Weapon: "flashbang"},
		{Tick: 95, PlayerID: playerA, Weapon: "flashbang"},
	}
	res := aggregate(t, dec)

	f := res.Players[playerA].Flash
	if f.EnemiesFlashed != 2 || f.EnemyBlindDuration != 4.0 {
		t.Errorf("enemy flashes = %d/%v, want 2/4.0", f.EnemiesFlashed, f.EnemyBlindDuration)
	}
	if f.TeammatesFlashed != 1 || f.TeamBlindDuration != 1.0 {
		t.Errorf("team flashes = %d/%v, want 1/1.0", f.TeammatesFlashed, f.TeamBlindDuration)
	}
	if f.SelfFlashes != 1 || f.SelfBlindDuration != 0.5 {
		t.Errorf("self flashes = %d/%v, want 1/0.5", f.SelfFlashes, f.SelfBlindDuration)
	}
	if f.FlashesThrown != 2 {
		t.Errorf("flashes thrown = %d, want 2", f.FlashesThrown)
	}
	if f.Efficiency != 1.0 {
		t.Errorf("efficiency = %v, want 1.0", f.Efficiency)
	}
}

func TestFlashOnUnassignedVictimIsEnemyFlash(t *testing.T) {
	dec := makeMatch(t)
	// Victim 9999 never got a team assignment; SideNone on one end must
	// not read as "same team".
	dec.Blinds = []model.Blind{
		{Tick: 100, AttackerID: playerA, VictimID: 9999, DurationSeconds: 1.2},
	}
	dec.Damages = []model.Damage{
		{Tick: 110, AttackerID: playerA, VictimID: 9999, Weapon: "ak47", Amount: 40},
	}
	res := aggregate(t, dec)

	f := res.Players[playerA].Flash
	if f.EnemiesFlashed != 1 || f.TeammatesFlashed != 0 {
		t.Errorf("blind on unassigned victim = %+v, want an enemy flash", f)
	}
	td := res.Players[playerA].TeamDamage
	if td.EnemyDamage != 40 || td.TeamDamage != 0 || td.TeamDamageIncidents != 0 {
		t.Errorf("damage on unassigned victim = %+v, want enemy damage", td)
	}
}

func TestFlashSkippedWithoutTeams(t *testing.T) {
	dec := makeMatch(t)
	dec.TeamAssignments = nil
	dec.Blinds = []model.Blind{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, DurationSeconds: 2.5},
	}
	dec.WeaponFires = []model.WeaponFire{
		{Tick: 90, PlayerID: playerA, Weapon: "flashbang"},
	}
	res := aggregate(t, dec)

	f := res.Players[playerA].Flash
	if f.EnemiesFlashed != 0 || f.TeammatesFlashed != 0 || f.SelfFlashes != 0 {
		t.Errorf("blind categorization ran without team data: %+v", f)
	}
	// Thrown count only needs the fire table.
	if f.FlashesThrown != 1 {
		t.Errorf("flashes thrown = %d, want 1", f.FlashesThrown)
	}
}

func TestMultiKillCategories(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideT},
	}
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: "ak47"},
		{Tick: 105, AttackerID: playerA, VictimID: playerD, Weapon: "ak47"},
		{Tick: 110, AttackerID: playerA, VictimID: playerC, Weapon: "ak47"},
		{Tick: 1500, AttackerID: playerA, VictimID: playerD, Weapon: "ak47"},
	}
	res := aggregate(t, dec)

	mk := res.Players[playerA].MultiKill
	if mk.TripleKills != 1 {
		t.Errorf("triple kills = %d, want 1", mk.TripleKills)
	}
	// The single kill in round 2 is not a multikill; categories are
	// mutually exclusive so the triple does not also count as a double.
	if mk.DoubleKills != 0 || mk.QuadKills != 0 || mk.Aces != 0 {
		t.Errorf("unexpected extra categories: %+v", mk)
	}
	if mk.TotalMultikills != 1 {
		t.Errorf("total multikills = %d, want 1", mk.TotalMultikills)
	}
}

func TestClutchSituations(t *testing.T) {
	dec := makeMatch(t)
	// B dies first, putting A (CT) alone against C and D. A then kills C,
	// which makes the remaining fight a mutual 1v1 for D, and closes it out.
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerC, VictimID: playerB, Weapon: "ak47"},
		{Tick: 200, AttackerID: playerA, VictimID: playerC, Weapon: "m4a1"},
		{Tick: 300, AttackerID: playerA, VictimID: playerD, Weapon: "m4a1"},
	}
	res := aggregate(t, dec)

	a := res.Players[playerA].Clutch
	if a.Attempts[1] != 1 || a.Wins[1] != 1 {
		t.Errorf("player A 1v2 = %d attempts %d wins, want 1/1", a.Attempts[1], a.Wins[1])
	}
	// D was alone against one enemy after the second kill, but the round
	// went CT so it counts as a lost 1v1 attempt.
	d := res.Players[playerD].Clutch
	if d.Attempts[0] != 1 || d.Wins[0] != 0 {
		t.Errorf("player D 1v1 = %d attempts %d wins, want 1/0", d.Attempts[0], d.Wins[0])
	}
}

func TestClutchKeepsFirstSituation(t *testing.T) {
	dec := &model.DecodedMatch{
		MatchID:   "m1",
		Header:    map[string]string{"map_name": "de_inferno"},
		RoundEnds: []model.RoundEnd{{RoundNumber: 1, EndTick: 10000, WinnerSide: model.SideCT}},
		TeamAssignments: []model.TeamAssignment{
			{PlayerID: playerA, Team: model.SideCT, DisplayName: "alpha"},
			{PlayerID: playerB, Team: model.SideT, DisplayName: "bravo"},
			{PlayerID: playerC, Team: model.SideT, DisplayName: "charlie"},
			{PlayerID: playerD, Team: model.SideT, DisplayName: "delta"},
		},
		Kills: []model.Kill{
			// A is 1v3 from the first removal, then keeps thinning the
			// enemy team. The situation stays 1v3.
			{Tick: 100, AttackerID: playerA, VictimID: playerB, Weapon: "deagle"},
			{Tick: 200, AttackerID: playerA, VictimID: playerC, Weapon: "deagle"},
			{Tick: 300, AttackerID: playerA, VictimID: playerD, Weapon: "deagle"},
		},
	}
	res := aggregate(t, dec)

	c := res.Players[playerA].Clutch
	if c.Attempts[2] != 1 || c.Wins[2] != 1 {
		t.Errorf("1v3 bucket = %d/%d, want 1/1", c.Attempts[2], c.Wins[2])
	}
	if c.Attempts[0] != 0 && c.Attempts[1] != 0 {
		t.Errorf("later snapshots overwrote the first situation: %+v", c)
	}
	if c.TotalAttempts != 1 || c.TotalWon != 1 {
		t.Errorf("totals = %d/%d, want 1/1", c.TotalAttempts, c.TotalWon)
	}
}

func TestClutchTotalsMatchBuckets(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideT},
	}
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerC, VictimID: playerB, Weapon: "ak47"},
		{Tick: 200, AttackerID: playerA, VictimID: playerC, Weapon: "m4a1"},
		{Tick: 1100, AttackerID: playerD, VictimID: playerA, Weapon: "awp"},
		{Tick: 1200, AttackerID: playerD, VictimID: playerB, Weapon: "awp"},
	}
	res := aggregate(t, dec)

	for id, s := range res.Players {
		sum, wins := 0, 0
		for i := range s.Clutch.Attempts {
			sum += s.Clutch.Attempts[i]
			wins += s.Clutch.Wins[i]
		}
		if s.Clutch.TotalAttempts != sum || s.Clutch.TotalWon != wins {
			t.Errorf("player %d: totals %d/%d do not match bucket sums %d/%d",
				id, s.Clutch.TotalAttempts, s.Clutch.TotalWon, sum, wins)
		}
	}
}

func TestFirstBlood(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideT},
	}
	dec.Kills = []model.Kill{
		{Tick: 500, AttackerID: playerA, VictimID: playerC, Weapon: "usp"},
		{Tick: 100, AttackerID: playerD, VictimID: playerB, Weapon: "glock"},
		{Tick: 1100, AttackerID: playerA, VictimID: playerD, Weapon: "m4a1"},
	}
	res := aggregate(t, dec)

	// Round 1's first blood is the tick-100 kill even though it appears
	// later in the table.
	if got := res.Players[playerD].FirstBlood.FirstBloods; got != 1 {
		t.Errorf("player D first bloods = %d, want 1", got)
	}
	if got := res.Players[playerB].FirstBlood.FirstDeaths; got != 1 {
		t.Errorf("player B first deaths = %d, want 1", got)
	}
	if got := res.Players[playerA].FirstBlood.FirstBloods; got != 1 {
		t.Errorf("player A first bloods = %d, want 1", got)
	}
}

func TestScoreboardOverlay(t *testing.T) {
	dec := makeMatch(t)
	dec.Scoreboard = []model.ScoreboardEntry{
		{PlayerID: playerA, MVPs: 4, Score: 61},
	}
	res := aggregate(t, dec)
	a := res.Players[playerA]
	if a.MVPs != 4 || a.Score != 61 {
		t.Errorf("scoreboard overlay: got %d MVPs %d score", a.MVPs, a.Score)
	}
}

func TestResultsFollowWinningSide(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideCT},
		{RoundNumber: 3, EndTick: 3000, WinnerSide: model.SideT},
	}
	res := aggregate(t, dec)

	if res.Summary.CTScore != 2 || res.Summary.TScore != 1 {
		t.Fatalf("score = %d-%d, want 2-1", res.Summary.CTScore, res.Summary.TScore)
	}
	if res.Summary.WinningSide != model.SideCT {
		t.Fatalf("winning side = %v", res.Summary.WinningSide)
	}
	if res.Players[playerA].Result != model.ResultWin {
		t.Errorf("CT player result = %s, want WIN", res.Players[playerA].Result)
	}
	if res.Players[playerC].Result != model.ResultLoss {
		t.Errorf("T player result = %s, want LOSS", res.Players[playerC].Result)
	}
}

func TestTiedMatch(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = []model.RoundEnd{
		{RoundNumber: 1, EndTick: 1000, WinnerSide: model.SideCT},
		{RoundNumber: 2, EndTick: 2000, WinnerSide: model.SideT},
	}
	res := aggregate(t, dec)
	if res.Summary.WinningSide != model.SideNone {
		t.Fatalf("winning side = %v, want none", res.Summary.WinningSide)
	}
	for id, s := range res.Players {
		if s.Result != model.ResultTie {
			t.Errorf("player %d result = %s, want TIE", id, s.Result)
		}
	}
}

func TestDegenerateMatchSkipsRoundScopedStats(t *testing.T) {
	dec := makeMatch(t)
	dec.RoundEnds = nil
	dec.Kills = []model.Kill{
		{Tick: 100, AttackerID: playerA, VictimID: playerC, Weapon: "ak47"},
		{Tick: 105, AttackerID: playerA, VictimID: playerD, Weapon: "ak47"},
	}
	res := aggregate(t, dec)

	a := res.Players[playerA]
	if a.Kills != 2 {
		t.Errorf("kill counts should survive a degenerate round table, got %d", a.Kills)
	}
	if a.MultiKill.TotalMultikills != 0 || a.Clutch.TotalAttempts != 0 || a.FirstBlood.FirstBloods != 0 {
		t.Errorf("round-scoped stats computed without valid rounds: %+v", a)
	}
}

func TestNegativeTickFailsMatch(t *testing.T) {
	dec := makeMatch(t)
	dec.Kills = []model.Kill{{Tick: -1, AttackerID: playerA, VictimID: playerC}}
	if _, err := Aggregate(dec, nil); err == nil {
		t.Fatal("expected error for negative kill tick")
	}
}

func TestMatchSummary(t *testing.T) {
	dec := makeMatch(t)
	dec.Header["playback_time"] = "2700"
	dec.Header["server_name"] = "community #3"
	res := aggregate(t, dec)

	s := res.Summary
	if s.Map != "de_dust2" || s.Duration != 2700 || s.ServerName != "community #3" {
		t.Errorf("summary = %+v", s)
	}
	if s.TotalRounds != 1 {
		t.Errorf("total rounds = %d, want 1", s.TotalRounds)
	}
}
