package sqlite

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
)

type attemptRepository struct {
	db querier
}

// NewAttemptRepository creates a new AttemptRepository implementation
func NewAttemptRepository(db querier) repository.AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Insert(ctx context.Context, a models.GameAttempt) error {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	log.Debug("inserting attempt: session_id=%s, attempt_number=%d, result=%s", a.GameSessionID, a.AttemptNumber, a.Result)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO game_attempts (id, game_session_id, guessed_number, attempt_number, result, hint, attempted_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, a.ID, a.GameSessionID, a.GuessedNumber, a.AttemptNumber, a.Result, a.Hint, a.AttemptedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate attempt number: session_id=%s, attempt_number=%d", a.GameSessionID, a.AttemptNumber)
		} else {
			log.Error("failed to insert attempt: %v", err)
		}
		return translateError(err)
	}
	return nil
}

func (r *attemptRepository) ListBySession(ctx context.Context, sessionID string) ([]models.GameAttempt, error) {
	byID, err := r.ListBySessions(ctx, []string{sessionID})
	if err != nil {
		return nil, err
	}
	attempts := byID[sessionID]
	if attempts == nil {
		attempts = []models.GameAttempt{}
	}
	return attempts, nil
}

func (r *attemptRepository) ListBySessions(ctx context.Context, sessionIDs []string) (map[string][]models.GameAttempt, error) {
	log := logger.FromContext(ctx).WithPrefix("attempt_repo")
	out := make(map[string][]models.GameAttempt, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}
	log.Debug("listing attempts for %d sessions", len(sessionIDs))

	query, args, err := sqlBuilder.Select(
		"id", "game_session_id", "guessed_number", "attempt_number", "result", "hint", "attempted_at",
	).
		From("game_attempts").
		Where(squirrel.Eq{"game_session_id": sessionIDs}).
		OrderBy("game_session_id", "attempt_number").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attempts: %v", err)
		return nil, err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var a models.GameAttempt
		if err := rows.Scan(&a.ID, &a.GameSessionID, &a.GuessedNumber, &a.AttemptNumber, &a.Result, &a.Hint, &a.AttemptedAt); err != nil {
			log.Error("failed to scan attempt row: %v", err)
			return nil, err
		}
		out[a.GameSessionID] = append(out[a.GameSessionID], a)
		count++
	}
	log.Debug("found %d attempts", count)
	return out, rows.Err()
}
