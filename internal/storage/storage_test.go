package storage

import (
	"context"
	"testing"

	"github.com/stattrak/demotrak/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSummary() model.MatchSummary {
	return model.MatchSummary{
		MatchID:     "abc123def",
		Map:         "de_dust2",
		ServerName:  "community #3",
		PlayedAt:    "2026-02-10T20:00:00Z",
		Duration:    2700,
		TotalRounds: 24,
		CTScore:     13,
		TScore:      11,
		WinningSide: model.SideCT,
	}
}

func samplePlayerStat() model.PlayerMatchStat {
	s := model.PlayerMatchStat{
		MatchID:     "abc123def",
		PlayerID:    76561198000000001,
		Name:        "alpha",
		Team:        model.SideCT,
		Result:      model.ResultWin,
		Kills:       24,
		Deaths:      16,
		Assists:     5,
		Headshots:   12,
		DamageDealt: 2304,
		ADR:         96.0,
		MVPs:        4,
		Score:       58,
		Weapons: []model.WeaponStat{
			{Weapon: "ak47", Kills: 15, Headshots: 9, Damage: 1500, Shots: 120, Hits: 45},
			{Weapon: "deagle", Kills: 9, Headshots: 3, Damage: 804, Shots: 30, Hits: 12},
		},
		Flash: model.FlashStat{
			EnemiesFlashed: 6, EnemyBlindDuration: 11.2,
			TeammatesFlashed: 2, TeamBlindDuration: 2.1,
			SelfFlashes: 1, SelfBlindDuration: 0.8,
			FlashesThrown: 10, Efficiency: 0.6,
		},
	}
	s.Clutch.Attempts[0] = 2
	s.Clutch.Wins[0] = 1
	s.Clutch.Attempts[2] = 1
	s.Clutch.TotalAttempts = 3
	s.Clutch.TotalWon = 1
	s.MultiKill = model.MultiKillStat{DoubleKills: 3, TripleKills: 1, TotalMultikills: 4}
	s.FirstBlood = model.FirstBloodStat{FirstBloods: 4, FirstDeaths: 2}
	s.TeamDamage = model.DamageStat{
		EnemyDamage: 2250, TeamDamage: 50, SelfDamage: 4,
		TotalDamage: 2304, TeamDamageIncidents: 2,
	}
	return s
}

func TestMatchRoundTrip(t *testing.T) {
	db := openMemDB(t)
	want := sampleSummary()

	exists, err := db.MatchExists(want.MatchID)
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if exists {
		t.Fatal("match should not exist yet")
	}

	if err := db.InsertMatch(want); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	exists, err = db.MatchExists(want.MatchID)
	if err != nil || !exists {
		t.Fatalf("MatchExists after insert = %v, %v", exists, err)
	}

	matches, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(matches) != 1 || matches[0] != want {
		t.Errorf("ListMatches = %+v, want %+v", matches, want)
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)
	want := sampleSummary()
	if err := db.InsertMatch(want); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	got, err := db.GetMatchByPrefix("abc1")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if got == nil || got.MatchID != want.MatchID {
		t.Errorf("GetMatchByPrefix = %+v", got)
	}

	missing, err := db.GetMatchByPrefix("zzz")
	if err != nil {
		t.Fatalf("GetMatchByPrefix(miss): %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown prefix, got %+v", missing)
	}
}

func TestRoundsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertMatch(sampleSummary()); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	want := []model.Round{
		{Number: 1, StartTick: 0, EndTick: 10000, WinnerSide: model.SideCT, EndReason: "elimination", ScoreCT: 1},
		{Number: 2, StartTick: 10000, EndTick: 22000, WinnerSide: model.SideT, EndReason: "bomb_exploded", ScoreCT: 1, ScoreT: 1},
	}
	if err := db.InsertRounds("abc123def", want); err != nil {
		t.Fatalf("InsertRounds: %v", err)
	}

	got, err := db.GetRounds("abc123def")
	if err != nil {
		t.Fatalf("GetRounds: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rounds", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("round %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPlayerStatsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertMatch(sampleSummary()); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	want := samplePlayerStat()
	if err := db.InsertPlayerMatchStats([]model.PlayerMatchStat{want}); err != nil {
		t.Fatalf("InsertPlayerMatchStats: %v", err)
	}

	stats, err := db.GetPlayerMatchStats("abc123def")
	if err != nil {
		t.Fatalf("GetPlayerMatchStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d stats rows", len(stats))
	}
	got := stats[0]
	if got.PlayerID != want.PlayerID || got.Name != want.Name || got.Team != want.Team || got.Result != want.Result {
		t.Errorf("identity fields = %+v", got)
	}
	if got.Kills != 24 || got.Deaths != 16 || got.ADR != 96.0 || got.MVPs != 4 {
		t.Errorf("core stats = %+v", got)
	}
	if got.Flash != want.Flash {
		t.Errorf("flash = %+v, want %+v", got.Flash, want.Flash)
	}
	if got.Clutch != want.Clutch {
		t.Errorf("clutch = %+v, want %+v", got.Clutch, want.Clutch)
	}
	if got.MultiKill != want.MultiKill || got.FirstBlood != want.FirstBlood {
		t.Errorf("breakdowns = %+v / %+v", got.MultiKill, got.FirstBlood)
	}
	if got.TeamDamage != want.TeamDamage {
		t.Errorf("team damage = %+v, want %+v", got.TeamDamage, want.TeamDamage)
	}

	weapons, err := db.GetPlayerWeaponStats("abc123def", want.PlayerID)
	if err != nil {
		t.Fatalf("GetPlayerWeaponStats: %v", err)
	}
	if len(weapons) != 2 || weapons[0].Weapon != "ak47" || weapons[1].Weapon != "deagle" {
		t.Errorf("weapons = %+v", weapons)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertMatch(sampleSummary()); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	stat := samplePlayerStat()
	for i := 0; i < 2; i++ {
		if err := db.InsertPlayerMatchStats([]model.PlayerMatchStat{stat}); err != nil {
			t.Fatalf("InsertPlayerMatchStats pass %d: %v", i, err)
		}
	}
	stats, err := db.GetPlayerMatchStats("abc123def")
	if err != nil {
		t.Fatalf("GetPlayerMatchStats: %v", err)
	}
	if len(stats) != 1 {
		t.Errorf("re-ingesting duplicated rows: %d", len(stats))
	}
}

func TestChatRoundTrip(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertMatch(sampleSummary()); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	msgs := []model.ChatMessage{
		{Tick: 100, PlayerID: 76561198000000001, PlayerName: "alpha", Message: "nice"},
		{Tick: 200, PlayerID: 76561198000000002, PlayerName: "bravo", Message: "rush b"},
	}
	if err := db.InsertChatMessages("abc123def", msgs); err != nil {
		t.Fatalf("InsertChatMessages: %v", err)
	}

	got, err := db.GetChatMessages("abc123def")
	if err != nil {
		t.Fatalf("GetChatMessages: %v", err)
	}
	if len(got) != 2 || got[0] != msgs[0] || got[1] != msgs[1] {
		t.Errorf("chat = %+v", got)
	}
}

func TestCareerReads(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	first := sampleSummary()
	second := sampleSummary()
	second.MatchID = "def456abc"
	second.Map = "de_inferno"
	second.PlayedAt = "2026-02-12T20:00:00Z"
	for _, m := range []model.MatchSummary{first, second} {
		if err := db.InsertMatch(m); err != nil {
			t.Fatalf("InsertMatch: %v", err)
		}
	}

	s1 := samplePlayerStat()
	s2 := samplePlayerStat()
	s2.MatchID = second.MatchID
	s2.Name = "alpha_renamed"
	s2.Kills, s2.Deaths = 10, 20
	s2.Result = model.ResultLoss
	if err := db.InsertPlayerMatchStats([]model.PlayerMatchStat{s1}); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if err := db.InsertPlayerMatchStats([]model.PlayerMatchStat{s2}); err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if err := db.InsertChatMessages(first.MatchID, []model.ChatMessage{
		{Tick: 100, PlayerID: s1.PlayerID, PlayerName: "alpha", Message: "gg"},
	}); err != nil {
		t.Fatalf("InsertChatMessages: %v", err)
	}

	ids, err := db.PlayerIDs(ctx)
	if err != nil {
		t.Fatalf("PlayerIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != s1.PlayerID {
		t.Fatalf("PlayerIDs = %v", ids)
	}

	name, perf, err := db.PlayerPerformance(ctx, s1.PlayerID)
	if err != nil {
		t.Fatalf("PlayerPerformance: %v", err)
	}
	// The name follows the most recent match.
	if name != "alpha_renamed" {
		t.Errorf("name = %s", name)
	}
	if len(perf) != 2 || perf[0].MatchID != first.MatchID || perf[1].MatchID != second.MatchID {
		t.Fatalf("history = %+v", perf)
	}
	if perf[0].KD != 1.5 || perf[0].HeadshotPct != 50.0 {
		t.Errorf("derived fields = %+v", perf[0])
	}
	if perf[1].Map != "de_inferno" || perf[1].Result != model.ResultLoss {
		t.Errorf("joined fields = %+v", perf[1])
	}

	chat, err := db.PlayerChat(ctx, s1.PlayerID)
	if err != nil {
		t.Fatalf("PlayerChat: %v", err)
	}
	if len(chat) != 1 || chat[0].MatchID != first.MatchID || len(chat[0].Messages) != 1 {
		t.Errorf("chat history = %+v", chat)
	}

	flash, err := db.PlayerFlashHistory(ctx, s1.PlayerID)
	if err != nil {
		t.Fatalf("PlayerFlashHistory: %v", err)
	}
	if len(flash) != 2 || flash[0].EnemiesFlashed != 6 || flash[0].Efficiency != 0.6 {
		t.Errorf("flash history = %+v", flash)
	}
}
