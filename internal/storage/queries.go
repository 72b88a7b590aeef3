package storage

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/stattrak/demotrak/internal/model"
)

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match summary. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(summary model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, map_name, server_name, played_at,
			duration_seconds, total_rounds, ct_score, t_score, winning_side)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.MatchID, summary.Map, summary.ServerName, summary.PlayedAt,
		summary.Duration, summary.TotalRounds, summary.CTScore, summary.TScore,
		summary.WinningSide.String(),
	)
	return err
}

// InsertRounds bulk-inserts the validated round table in a transaction.
func (db *DB) InsertRounds(matchID string, rounds []model.Round) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO rounds(match_id, round_number, start_tick, end_tick,
			winner_side, end_reason, score_ct, score_t)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rounds {
		_, err = stmt.Exec(matchID, r.Number, r.StartTick, r.EndTick,
			r.WinnerSide.String(), r.EndReason, r.ScoreCT, r.ScoreT)
		if err != nil {
			return fmt.Errorf("insert round %d: %w", r.Number, err)
		}
	}
	return tx.Commit()
}

// InsertPlayerMatchStats writes the full per-player record set for one
// match, breakdown tables included, in a single transaction.
func (db *DB) InsertPlayerMatchStats(stats []model.PlayerMatchStat) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	mainStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_match_stats(
			match_id, steam_id, name, team, result,
			kills, deaths, assists, headshots, damage_dealt, adr, mvps, score,
			enemy_damage, team_damage, self_damage, team_damage_incidents
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer mainStmt.Close()

	weaponStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_weapon_stats(
			match_id, steam_id, weapon, kills, headshots, damage, shots, hits
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer weaponStmt.Close()

	flashStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_flash_stats(
			match_id, steam_id,
			enemies_flashed, enemy_blind_duration,
			teammates_flashed, team_blind_duration,
			self_flashes, self_blind_duration,
			flashes_thrown, efficiency
		) VALUES (?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer flashStmt.Close()

	clutchStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_clutch_stats(
			match_id, steam_id,
			v1_attempts, v1_wins, v2_attempts, v2_wins, v3_attempts, v3_wins,
			v4_attempts, v4_wins, v5_attempts, v5_wins,
			total_attempts, total_won
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer clutchStmt.Close()

	multiStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_multikill_stats(
			match_id, steam_id, double_kills, triple_kills, quad_kills, aces, total_multikills
		) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer multiStmt.Close()

	fbStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_first_blood_stats(
			match_id, steam_id, first_bloods, first_deaths
		) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer fbStmt.Close()

	for _, s := range stats {
		steamID := strconv.FormatUint(s.PlayerID, 10)

		_, err = mainStmt.Exec(
			s.MatchID, steamID, s.Name, s.Team.String(), s.Result,
			s.Kills, s.Deaths, s.Assists, s.Headshots, s.DamageDealt, s.ADR, s.MVPs, s.Score,
			s.TeamDamage.EnemyDamage, s.TeamDamage.TeamDamage,
			s.TeamDamage.SelfDamage, s.TeamDamage.TeamDamageIncidents,
		)
		if err != nil {
			return fmt.Errorf("insert player_match_stats for %d: %w", s.PlayerID, err)
		}

		for _, w := range s.Weapons {
			_, err = weaponStmt.Exec(
				s.MatchID, steamID, w.Weapon, w.Kills, w.Headshots, w.Damage, w.Shots, w.Hits,
			)
			if err != nil {
				return fmt.Errorf("insert player_weapon_stats for %d/%s: %w", s.PlayerID, w.Weapon, err)
			}
		}

		_, err = flashStmt.Exec(
			s.MatchID, steamID,
			s.Flash.EnemiesFlashed, s.Flash.EnemyBlindDuration,
			s.Flash.TeammatesFlashed, s.Flash.TeamBlindDuration,
			s.Flash.SelfFlashes, s.Flash.SelfBlindDuration,
			s.Flash.FlashesThrown, s.Flash.Efficiency,
		)
		if err != nil {
			return fmt.Errorf("insert player_flash_stats for %d: %w", s.PlayerID, err)
		}

		_, err = clutchStmt.Exec(
			s.MatchID, steamID,
			s.Clutch.Attempts[0], s.Clutch.Wins[0],
			s.Clutch.Attempts[1], s.Clutch.Wins[1],
			s.Clutch.Attempts[2], s.Clutch.Wins[2],
			s.Clutch.Attempts[3], s.Clutch.Wins[3],
			s.Clutch.Attempts[4], s.Clutch.Wins[4],
			s.Clutch.TotalAttempts, s.Clutch.TotalWon,
		)
		if err != nil {
			return fmt.Errorf("insert player_clutch_stats for %d: %w", s.PlayerID, err)
		}

		_, err = multiStmt.Exec(
			s.MatchID, steamID,
			s.MultiKill.DoubleKills, s.MultiKill.TripleKills,
			s.MultiKill.QuadKills, s.MultiKill.Aces, s.MultiKill.TotalMultikills,
		)
		if err != nil {
			return fmt.Errorf("insert player_multikill_stats for %d: %w", s.PlayerID, err)
		}

		_, err = fbStmt.Exec(s.MatchID, steamID, s.FirstBlood.FirstBloods, s.FirstBlood.FirstDeaths)
		if err != nil {
			return fmt.Errorf("insert player_first_blood_stats for %d: %w", s.PlayerID, err)
		}
	}
	return tx.Commit()
}

// InsertChatMessages bulk-inserts a match's chat log in a transaction.
func (db *DB) InsertChatMessages(matchID string, messages []model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO chat_messages(match_id, tick, steam_id, player_name, message)
		VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range messages {
		_, err = stmt.Exec(matchID, m.Tick, strconv.FormatUint(m.PlayerID, 10), m.PlayerName, m.Message)
		if err != nil {
			return fmt.Errorf("insert chat_messages: %w", err)
		}
	}
	return tx.Commit()
}

// ListMatches returns all stored match summaries ordered by played_at desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, map_name, server_name, played_at, duration_seconds,
		       total_rounds, ct_score, t_score, winning_side
		FROM matches ORDER BY played_at DESC, match_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		var winning string
		if err := rows.Scan(&s.MatchID, &s.Map, &s.ServerName, &s.PlayedAt,
			&s.Duration, &s.TotalRounds, &s.CTScore, &s.TScore, &winning); err != nil {
			return nil, err
		}
		s.WinningSide = model.ParseSide(winning)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	var winning string
	err := db.conn.QueryRow(`
		SELECT match_id, map_name, server_name, played_at, duration_seconds,
		       total_rounds, ct_score, t_score, winning_side
		FROM matches WHERE match_id LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.MatchID, &s.Map, &s.ServerName, &s.PlayedAt,
			&s.Duration, &s.TotalRounds, &s.CTScore, &s.TScore, &winning)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.WinningSide = model.ParseSide(winning)
	return &s, nil
}

// GetRounds returns a match's validated round table in order.
func (db *DB) GetRounds(matchID string) ([]model.Round, error) {
	rows, err := db.conn.Query(`
		SELECT round_number, start_tick, end_tick, winner_side, end_reason, score_ct, score_t
		FROM rounds WHERE match_id = ? ORDER BY round_number`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Round
	for rows.Next() {
		var r model.Round
		var winner string
		if err := rows.Scan(&r.Number, &r.StartTick, &r.EndTick, &winner, &r.EndReason, &r.ScoreCT, &r.ScoreT); err != nil {
			return nil, err
		}
		r.WinnerSide = model.ParseSide(winner)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetPlayerMatchStats returns every player record for a match, breakdown
// tables included, ordered by kills desc.
func (db *DB) GetPlayerMatchStats(matchID string) ([]model.PlayerMatchStat, error) {
	rows, err := db.conn.Query(`
		SELECT p.steam_id, p.name, p.team, p.result,
		       p.kills, p.deaths, p.assists, p.headshots, p.damage_dealt, p.adr, p.mvps, p.score,
		       p.enemy_damage, p.team_damage, p.self_damage, p.team_damage_incidents,
		       f.enemies_flashed, f.enemy_blind_duration,
		       f.teammates_flashed, f.team_blind_duration,
		       f.self_flashes, f.self_blind_duration, f.flashes_thrown, f.efficiency,
		       c.v1_attempts, c.v1_wins, c.v2_attempts, c.v2_wins, c.v3_attempts, c.v3_wins,
		       c.v4_attempts, c.v4_wins, c.v5_attempts, c.v5_wins, c.total_attempts, c.total_won,
		       m.double_kills, m.triple_kills, m.quad_kills, m.aces, m.total_multikills,
		       b.first_bloods, b.first_deaths
		FROM player_match_stats p
		LEFT JOIN player_flash_stats f ON f.match_id = p.match_id AND f.steam_id = p.steam_id
		LEFT JOIN player_clutch_stats c ON c.match_id = p.match_id AND c.steam_id = p.steam_id
		LEFT JOIN player_multikill_stats m ON m.match_id = p.match_id AND m.steam_id = p.steam_id
		LEFT JOIN player_first_blood_stats b ON b.match_id = p.match_id AND b.steam_id = p.steam_id
		WHERE p.match_id = ?
		ORDER BY p.kills DESC`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerMatchStat
	for rows.Next() {
		var s model.PlayerMatchStat
		var steamIDStr, teamStr string
		if err := rows.Scan(
			&steamIDStr, &s.Name, &teamStr, &s.Result,
			&s.Kills, &s.Deaths, &s.Assists, &s.Headshots, &s.DamageDealt, &s.ADR, &s.MVPs, &s.Score,
			&s.TeamDamage.EnemyDamage, &s.TeamDamage.TeamDamage,
			&s.TeamDamage.SelfDamage, &s.TeamDamage.TeamDamageIncidents,
			&s.Flash.EnemiesFlashed, &s.Flash.EnemyBlindDuration,
			&s.Flash.TeammatesFlashed, &s.Flash.TeamBlindDuration,
			&s.Flash.SelfFlashes, &s.Flash.SelfBlindDuration,
			&s.Flash.FlashesThrown, &s.Flash.Efficiency,
			&s.Clutch.Attempts[0], &s.Clutch.Wins[0],
			&s.Clutch.Attempts[1], &s.Clutch.Wins[1],
			&s.Clutch.Attempts[2], &s.Clutch.Wins[2],
			&s.Clutch.Attempts[3], &s.Clutch.Wins[3],
			&s.Clutch.Attempts[4], &s.Clutch.Wins[4],
			&s.Clutch.TotalAttempts, &s.Clutch.TotalWon,
			&s.MultiKill.DoubleKills, &s.MultiKill.TripleKills,
			&s.MultiKill.QuadKills, &s.MultiKill.Aces, &s.MultiKill.TotalMultikills,
			&s.FirstBlood.FirstBloods, &s.FirstBlood.FirstDeaths,
		); err != nil {
			return nil, err
		}
		s.MatchID = matchID
		s.PlayerID, _ = strconv.ParseUint(steamIDStr, 10, 64)
		s.Team = model.ParseSide(teamStr)
		s.TeamDamage.TotalDamage = s.TeamDamage.EnemyDamage + s.TeamDamage.TeamDamage + s.TeamDamage.SelfDamage
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPlayerWeaponStats returns one player's weapon rows for a match,
// ordered by kills desc then damage desc.
func (db *DB) GetPlayerWeaponStats(matchID string, playerID uint64) ([]model.WeaponStat, error) {
	rows, err := db.conn.Query(`
		SELECT weapon, kills, headshots, damage, shots, hits
		FROM player_weapon_stats WHERE match_id = ? AND steam_id = ?
		ORDER BY kills DESC, damage DESC`, matchID, strconv.FormatUint(playerID, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WeaponStat
	for rows.Next() {
		var w model.WeaponStat
		if err := rows.Scan(&w.Weapon, &w.Kills, &w.Headshots, &w.Damage, &w.Shots, &w.Hits); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetChatMessages returns a match's chat log in tick order.
func (db *DB) GetChatMessages(matchID string) ([]model.ChatMessage, error) {
	rows, err := db.conn.Query(`
		SELECT tick, steam_id, player_name, message
		FROM chat_messages WHERE match_id = ? ORDER BY tick`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		var steamIDStr string
		if err := rows.Scan(&m.Tick, &steamIDStr, &m.PlayerName, &m.Message); err != nil {
			return nil, err
		}
		m.PlayerID, _ = strconv.ParseUint(steamIDStr, 10, 64)
		out = append(out, m)
	}
	return out, rows.Err()
}
