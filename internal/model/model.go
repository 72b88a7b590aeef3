package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Side represents which side of the map a player or round winner is on.
type Side int

// Side values follow the decoded tables, where 2 = T and 3 = CT.
const (
	SideNone Side = 0
	SideT    Side = 2
	SideCT   Side = 3
)

func (s Side) String() string {
	switch s {
	case SideT:
		return "T"
	case SideCT:
		return "CT"
	default:
		return ""
	}
}

// ParseSide maps the string form back to a Side. Unknown strings map to SideNone.
func ParseSide(s string) Side {
	switch s {
	case "T":
		return SideT
	case "CT":
		return SideCT
	default:
		return SideNone
	}
}

// UnmarshalJSON accepts either the numeric form (2/3) or the string form
// ("T"/"CT") that different parser service versions emit.
func (s *Side) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*s = SideNone
	case string:
		*s = ParseSide(v)
	case float64:
		switch int(v) {
		case 2:
			*s = SideT
		case 3:
			*s = SideCT
		default:
			*s = SideNone
		}
	default:
		return fmt.Errorf("side: unsupported JSON value %v", raw)
	}
	return nil
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ---- Decoded event tables supplied by the parser service ----

// RoundEnd marks a round boundary. Rounds without a winner are invalid
// (warmup restarts, aborted rounds) and are filtered by the round indexer.
type RoundEnd struct {
	RoundNumber int    `json:"round_number"`
	EndTick     int    `json:"end_tick"`
	WinnerSide  Side   `json:"winner_side"`
	EndReason   string `json:"end_reason"`
}

type Kill struct {
	Tick          int    `json:"tick"`
	AttackerID    uint64 `json:"attacker_steam_id,string"`
	VictimID      uint64 `json:"victim_steam_id,string"`
	Weapon        string `json:"weapon"`
	Headshot      bool   `json:"headshot"`
	Wallbang      bool   `json:"wallbang"`
	ThroughSmoke  bool   `json:"through_smoke"`
	NoScope       bool   `json:"no_scope"`
	AttackerBlind bool   `json:"attacker_blind"`
	AssisterID    uint64 `json:"assister_steam_id,string,omitempty"` // 0 if none
	FlashAssist   bool   `json:"flash_assist"`
}

type Damage struct {
	Tick       int    `json:"tick"`
	AttackerID uint64 `json:"attacker_steam_id,string"`
	VictimID   uint64 `json:"victim_steam_id,string"`
	Weapon     string `json:"weapon"`
	Amount     int    `json:"amount"`
}

type Blind struct {
	Tick            int     `json:"tick"`
	AttackerID      uint64  `json:"attacker_steam_id,string"`
	VictimID        uint64  `json:"victim_steam_id,string"`
	DurationSeconds float64 `json:"duration_seconds"`
	IsWarmup        bool    `json:"is_warmup"`
}

type WeaponFire struct {
	Tick     int    `json:"tick"`
	PlayerID uint64 `json:"player_steam_id,string"`
	Weapon   string `json:"weapon"`
}

type TeamAssignment struct {
	PlayerID    uint64 `json:"player_steam_id,string"`
	Team        Side   `json:"team"`
	DisplayName string `json:"display_name"`
}

// ScoreboardEntry is an optional final-scoreboard row. Only MVPs and score
// are taken from it; kill/death/assist counts always come from the kill table.
type ScoreboardEntry struct {
	PlayerID uint64 `json:"player_steam_id,string"`
	MVPs     int    `json:"mvps"`
	Score    int    `json:"score"`
}

type ChatMessage struct {
	Tick       int    `json:"tick"`
	PlayerID   uint64 `json:"player_steam_id,string"`
	PlayerName string `json:"player_name"`
	Message    string `json:"message"`
}

// DecodedMatch is one match's worth of decoded event tables plus the flat
// header metadata map, as handed over by the external parser service.
// Scoreboard and Chat are optional tables; nil means the parser did not
// supply them.
type DecodedMatch struct {
	MatchID string            `json:"match_id"`
	Header  map[string]string `json:"header"`

	RoundEnds       []RoundEnd       `json:"round_ends"`
	Kills           []Kill           `json:"kills"`
	Damages         []Damage         `json:"damages"`
	Blinds          []Blind          `json:"blinds"`
	WeaponFires     []WeaponFire     `json:"weapon_fires"`
	TeamAssignments []TeamAssignment `json:"team_assignments"`

	Scoreboard []ScoreboardEntry `json:"scoreboard,omitempty"`
	Chat       []ChatMessage     `json:"chat_messages,omitempty"`
}

// HeaderString returns a header value or the fallback when absent/empty.
func (m *DecodedMatch) HeaderString(key, fallback string) string {
	if v, ok := m.Header[key]; ok && v != "" {
		return v
	}
	return fallback
}

// HeaderInt returns a header value parsed as int, or 0 when absent/invalid.
func (m *DecodedMatch) HeaderInt(key string) int {
	v, err := strconv.Atoi(m.Header[key])
	if err != nil {
		return 0
	}
	return v
}

// ---- Derived round table ----

// Round is a validated round owned by the round indexer. Its tick window is
// (StartTick, EndTick], with round 1 starting at tick 0. ScoreCT/ScoreT is
// the running score after this round.
type Round struct {
	Number     int
	StartTick  int
	EndTick    int
	WinnerSide Side
	EndReason  string
	ScoreCT    int
	ScoreT     int
}

// BombPlanted reports whether the round ended with the bomb in play.
func (r Round) BombPlanted() bool {
	return r.EndReason == "bomb_exploded" || r.EndReason == "bomb_defused"
}

func (r Round) BombDefused() bool {
	return r.EndReason == "bomb_defused"
}

// ---- Aggregated per-match stats ----

// Match results from a player's perspective.
const (
	ResultWin  = "WIN"
	ResultLoss = "LOSS"
	ResultTie  = "TIE"
)

type WeaponStat struct {
	Weapon    string
	Kills     int
	Headshots int
	Damage    int
	Shots     int
	Hits      int
}

type FlashStat struct {
	EnemiesFlashed     int
	EnemyBlindDuration float64
	TeammatesFlashed   int
	TeamBlindDuration  float64
	SelfFlashes        int
	SelfBlindDuration  float64
	FlashesThrown      int
	Efficiency         float64 // enemies flashed per flash thrown
}

// ClutchStat buckets 1vX situations by enemies alive. Index i holds the
// 1v(i+1) bucket.
type ClutchStat struct {
	Attempts      [5]int
	Wins          [5]int
	TotalAttempts int
	TotalWon      int
}

type MultiKillStat struct {
	DoubleKills     int
	TripleKills     int
	QuadKills       int
	Aces            int
	TotalMultikills int
}

type FirstBloodStat struct {
	FirstBloods int
	FirstDeaths int
}

type DamageStat struct {
	EnemyDamage         int
	TeamDamage          int
	SelfDamage          int
	TotalDamage         int
	TeamDamageIncidents int
}

// PlayerMatchStat is one player's finalized stat record for one match.
// It is built incrementally by the aggregator and never mutated after
// finalization.
type PlayerMatchStat struct {
	MatchID  string
	PlayerID uint64
	Name     string
	Team     Side
	Result   string // WIN/LOSS/TIE from this player's perspective

	Kills       int
	Deaths      int
	Assists     int
	Headshots   int
	DamageDealt int
	ADR         float64
	MVPs        int
	Score       int

	Weapons    []WeaponStat
	Flash      FlashStat
	Clutch     ClutchStat
	MultiKill  MultiKillStat
	FirstBlood FirstBloodStat
	TeamDamage DamageStat
}

func (s *PlayerMatchStat) KDRatio() float64 {
	if s.Deaths == 0 {
		return float64(s.Kills)
	}
	return float64(s.Kills) / float64(s.Deaths)
}

func (s *PlayerMatchStat) HSPercent() float64 {
	if s.Kills == 0 {
		return 0
	}
	return float64(s.Headshots) / float64(s.Kills) * 100
}

// MatchSummary is the per-match metadata record handed to the store.
type MatchSummary struct {
	MatchID     string
	Map         string
	ServerName  string
	PlayedAt    string
	Duration    int // seconds
	TotalRounds int
	CTScore     int
	TScore      int
	WinningSide Side
}
