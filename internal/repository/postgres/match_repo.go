package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/game"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type MatchRepo struct {
	DB *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{DB: db}
}

// SaveMatch stores a finished match. Saving the same session generation twice
// keeps the latest outcome.
func (r *MatchRepo) SaveMatch(ctx context.Context, record game.MatchRecord) error {
	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %v", err)
	}
	playersJSON, err := json.Marshal(record.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal players: %v", err)
	}

	query := `
	INSERT INTO matches (match_id, session_id, generation, mode, difficulty, opening, result, winner, reason, total_moves, board_state, players, started_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	ON CONFLICT (session_id, generation) DO UPDATE SET
		result = EXCLUDED.result,
		winner = EXCLUDED.winner,
		reason = EXCLUDED.reason,
		total_moves = EXCLUDED.total_moves,
		board_state = EXCLUDED.board_state,
		finished_at = EXCLUDED.finished_at;
	`

	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.SessionID,
		int64(record.Generation),
		string(record.Mode),
		string(record.Difficulty),
		int(record.Opening),
		string(record.Result.Kind),
		int(record.Winner),
		record.Reason,
		record.Moves,
		boardJSON,
		playersJSON,
		record.StartedAt,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match record: %v", err)
	}
	return nil
}

// ListRecent returns the most recently finished matches, newest first.
func (r *MatchRepo) ListRecent(ctx context.Context, limit int) ([]game.MatchRecord, error) {
	query := `
	SELECT match_id, session_id, generation, mode, difficulty, opening, result, winner,
	       reason, total_moves, board_state, players, started_at, finished_at
	FROM matches
	ORDER BY finished_at DESC
	LIMIT $1;
	`

	rows, err := r.DB.QueryContext(ctx, query, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %v", err)
	}
	defer rows.Close()

	var records []game.MatchRecord
	for rows.Next() {
		var (
			rec                    game.MatchRecord
			generation             int64
			mode, difficulty       string
			opening, winner        int
			kind                   string
			boardJSON, playersJSON []byte
		)
		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&generation,
			&mode,
			&difficulty,
			&opening,
			&kind,
			&winner,
			&rec.Reason,
			&rec.Moves,
			&boardJSON,
			&playersJSON,
			&rec.StartedAt,
			&rec.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %v", err)
		}
		if err := json.Unmarshal(boardJSON, &rec.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state of %s: %v", rec.ID, err)
		}
		if err := json.Unmarshal(playersJSON, &rec.Players); err != nil {
			return nil, fmt.Errorf("failed to unmarshal players of %s: %v", rec.ID, err)
		}

		rec.Generation = uint64(generation)
		rec.Mode = domain.GameMode(mode)
		rec.Difficulty = domain.Difficulty(difficulty)
		rec.Opening = domain.Color(opening)
		rec.Winner = domain.Color(winner)
		rec.Result = domain.Result{Kind: domain.ResultKind(kind), Winner: rec.Winner}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %v", err)
	}
	return records, nil
}

// ClampLimit maps a requested page size onto 1..100, defaulting to 20.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
