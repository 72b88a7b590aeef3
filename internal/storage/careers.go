package storage

import (
	"context"
	"math"
	"strconv"

	"github.com/stattrak/demotrak/internal/career"
	"github.com/stattrak/demotrak/internal/model"
)

// The methods below implement career.Store.

// PlayerIDs returns the distinct set of players with stored match stats.
func (db *DB) PlayerIDs(ctx context.Context) ([]uint64, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT DISTINCT steam_id FROM player_match_stats ORDER BY steam_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var idStr string
		if err := rows.Scan(&idStr); err != nil {
			return nil, err
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// PlayerPerformance returns a player's per-match performance rows joined
// with match metadata, in date order. The name comes from the most recent
// match.
func (db *DB) PlayerPerformance(ctx context.Context, playerID uint64) (string, []model.MatchPerformance, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.match_id, m.played_at, m.map_name, p.name,
		       p.kills, p.deaths, p.assists, p.headshots, p.adr, p.mvps, p.score, p.result
		FROM player_match_stats p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.steam_id = ?
		ORDER BY m.played_at, p.match_id`, strconv.FormatUint(playerID, 10))
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()

	var name string
	var out []model.MatchPerformance
	for rows.Next() {
		var p model.MatchPerformance
		var headshots int
		if err := rows.Scan(&p.MatchID, &p.Date, &p.Map, &name,
			&p.Kills, &p.Deaths, &p.Assists, &headshots, &p.ADR, &p.MVPs, &p.Score, &p.Result); err != nil {
			return "", nil, err
		}
		if p.Deaths > 0 {
			p.KD = math.Round(float64(p.Kills)/float64(p.Deaths)*100) / 100
		} else {
			p.KD = float64(p.Kills)
		}
		if p.Kills > 0 {
			p.HeadshotPct = math.Round(float64(headshots)/float64(p.Kills)*1000) / 10
		}
		out = append(out, p)
	}
	return name, out, rows.Err()
}

// PlayerChat returns a player's chat messages grouped per match, dated for
// chronological ordering.
func (db *DB) PlayerChat(ctx context.Context, playerID uint64) ([]career.MatchChat, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT c.match_id, m.played_at, c.tick, c.player_name, c.message
		FROM chat_messages c
		JOIN matches m ON m.match_id = c.match_id
		WHERE c.steam_id = ?
		ORDER BY m.played_at, c.match_id, c.tick`, strconv.FormatUint(playerID, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []career.MatchChat
	for rows.Next() {
		var matchID, date string
		var msg model.ChatMessage
		if err := rows.Scan(&matchID, &date, &msg.Tick, &msg.PlayerName, &msg.Message); err != nil {
			return nil, err
		}
		msg.PlayerID = playerID
		if len(out) == 0 || out[len(out)-1].MatchID != matchID {
			out = append(out, career.MatchChat{MatchID: matchID, Date: date})
		}
		out[len(out)-1].Messages = append(out[len(out)-1].Messages, msg)
	}
	return out, rows.Err()
}

// PlayerFlashHistory returns a player's per-match flash rows joined with
// match dates, in date order.
func (db *DB) PlayerFlashHistory(ctx context.Context, playerID uint64) ([]model.MatchFlashStats, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.match_id, m.played_at,
		       f.enemies_flashed, f.enemy_blind_duration,
		       f.teammates_flashed, f.team_blind_duration,
		       f.self_flashes, f.flashes_thrown, f.efficiency
		FROM player_flash_stats f
		JOIN matches m ON m.match_id = f.match_id
		WHERE f.steam_id = ?
		ORDER BY m.played_at, f.match_id`, strconv.FormatUint(playerID, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchFlashStats
	for rows.Next() {
		var f model.MatchFlashStats
		if err := rows.Scan(&f.MatchID, &f.Date,
			&f.EnemiesFlashed, &f.EnemyBlindDuration,
			&f.TeammatesFlashed, &f.TeamBlindDuration,
			&f.SelfFlashes, &f.FlashesThrown, &f.Efficiency); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
