package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
)

var sessionColumns = []string{
	"s.id", "s.statistics_id", "st.user_id", "s.secret_number", "s.min_range", "s.max_range",
	"s.max_attempts", "s.attempts_count", "s.status", "s.score", "s.difficulty",
	"s.started_at", "s.ended_at", "s.version",
}

type sessionRepository struct {
	db querier
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db querier) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row rowScanner) (*models.GameSession, error) {
	var (
		s       models.GameSession
		endedAt sql.NullTime
	)
	err := row.Scan(&s.ID, &s.StatisticsID, &s.UserID, &s.SecretNumber, &s.MinRange, &s.MaxRange,
		&s.MaxAttempts, &s.AttemptsCount, &s.Status, &s.Score, &s.Difficulty,
		&s.StartedAt, &endedAt, &s.Version)
	if err != nil {
		return nil, err
	}
	s.EndedAt = timePtr(endedAt)
	return &s, nil
}

func sessionQuery() squirrel.SelectBuilder {
	return sqlBuilder.Select(sessionColumns...).
		From("game_sessions s").
		Join("user_game_statistics st ON st.id = s.statistics_id")
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.GameSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	query, args, err := sessionQuery().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	s, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		err = translateError(err)
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("session not found: id=%s", id)
		} else {
			log.Error("failed to get session: %v", err)
		}
		return nil, err
	}

	s.Attempts, err = NewAttemptRepository(r.db).ListBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	log.Debug("session found: status=%s, attempts=%d", s.Status, s.AttemptsCount)
	return s, nil
}

func (r *sessionRepository) Insert(ctx context.Context, session *models.GameSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: id=%s, difficulty=%s, range=%d-%d, max_attempts=%d",
		session.ID, session.Difficulty, session.MinRange, session.MaxRange, session.MaxAttempts)

	session.Version = 1
	_, err := r.db.ExecContext(ctx, `
INSERT INTO game_sessions (id, statistics_id, secret_number, min_range, max_range, max_attempts,
                           attempts_count, status, score, difficulty, started_at, ended_at, version)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, session.ID, session.StatisticsID, session.SecretNumber, session.MinRange, session.MaxRange, session.MaxAttempts,
		session.AttemptsCount, session.Status, session.Score, session.Difficulty, session.StartedAt,
		nullTime(session.EndedAt), session.Version)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return translateError(err)
	}
	return nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.GameSession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%s, version=%d, status=%s, attempts=%d",
		session.ID, session.Version, session.Status, session.AttemptsCount)

	res, err := r.db.ExecContext(ctx, `
UPDATE game_sessions
SET attempts_count = ?, status = ?, score = ?, ended_at = ?, version = version + 1
WHERE id = ? AND version = ? AND status = ?
`, session.AttemptsCount, session.Status, session.Score, nullTime(session.EndedAt),
		session.ID, session.Version, models.StatusInProgress)
	if err != nil {
		log.Error("failed to update session: %v", err)
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("stale session update: id=%s, version=%d", session.ID, session.Version)
		return repository.ErrStaleWrite
	}
	session.Version++
	return nil
}

func (r *sessionRepository) CountActive(ctx context.Context, statisticsID string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM game_sessions WHERE statistics_id = ? AND status = ?
`, statisticsID, models.StatusInProgress).Scan(&count)
	if err != nil {
		log.Error("failed to count active sessions: %v", err)
		return 0, err
	}
	log.Debug("active sessions: statistics_id=%s, count=%d", statisticsID, count)
	return count, nil
}

func applySessionFilter(query squirrel.SelectBuilder, filter models.SessionFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"st.user_id": filter.UserID})
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"s.status": filter.Status.String()})
	}
	if filter.Difficulty != nil {
		query = query.Where(squirrel.Eq{"s.difficulty": filter.Difficulty.String()})
	}
	return query
}

func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.GameSession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing sessions: user_id=%s, limit=%d, offset=%d", filter.UserID, filter.Limit, filter.Offset)

	query := applySessionFilter(sessionQuery(), filter).
		OrderBy("s.started_at DESC", "s.id DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.GameSession
	var ids []string
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		sessions = append(sessions, *s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Attempts are read after the cursor closes; the pool holds one connection.
	rows.Close()

	attempts, err := NewAttemptRepository(r.db).ListBySessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Attempts = attempts[sessions[i].ID]
		if sessions[i].Attempts == nil {
			sessions[i].Attempts = []models.GameAttempt{}
		}
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, nil
}

func (r *sessionRepository) Count(ctx context.Context, filter models.SessionFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query := applySessionFilter(
		sqlBuilder.Select("COUNT(*)").
			From("game_sessions s").
			Join("user_game_statistics st ON st.id = s.statistics_id"),
		filter,
	)
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count sessions: %v", err)
		return 0, err
	}
	log.Debug("counted sessions: %d", count)
	return count, nil
}

func (r *sessionRepository) DifficultyBreakdown(ctx context.Context, statisticsID string) ([]models.DifficultyBreakdown, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("computing difficulty breakdown: statistics_id=%s", statisticsID)

	query := sqlBuilder.Select(
		"difficulty",
		"COUNT(*)",
		"COALESCE(SUM(CASE WHEN status = 'Won' THEN 1 ELSE 0 END), 0)",
		"COALESCE(AVG(score), 0)",
		"COALESCE(MAX(score), 0)",
	).
		From("game_sessions").
		Where(squirrel.Eq{"statistics_id": statisticsID}).
		Where(squirrel.Eq{"status": []string{models.StatusWon.String(), models.StatusLost.String()}}).
		GroupBy("difficulty").
		OrderBy("difficulty")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query difficulty breakdown: %v", err)
		return nil, err
	}
	defer rows.Close()

	byDifficulty := map[models.Difficulty]models.DifficultyBreakdown{}
	for rows.Next() {
		var b models.DifficultyBreakdown
		if err := rows.Scan(&b.Difficulty, &b.GamesPlayed, &b.GamesWon, &b.AverageScore, &b.BestScore); err != nil {
			log.Error("failed to scan breakdown row: %v", err)
			return nil, err
		}
		byDifficulty[b.Difficulty] = b
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Report in difficulty order rather than alphabetical storage order.
	out := make([]models.DifficultyBreakdown, 0, len(byDifficulty))
	for _, d := range models.Difficulties {
		if b, ok := byDifficulty[d]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}
