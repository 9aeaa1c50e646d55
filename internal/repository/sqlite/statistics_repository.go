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

const winRateExpr = "CASE WHEN st.games_played = 0 THEN 0.0 ELSE CAST(st.games_won AS REAL) * 100.0 / st.games_played END"

type statisticsRepository struct {
	db querier
}

// NewStatisticsRepository creates a new StatisticsRepository implementation
func NewStatisticsRepository(db querier) repository.StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetByUserID(ctx context.Context, userID string) (*models.UserGameStatistics, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting statistics: user_id=%s", userID)

	var (
		s    models.UserGameStatistics
		best sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, games_played, games_won, total_score, best_attempts, last_updated_at
FROM user_game_statistics
WHERE user_id = ?
`, userID).Scan(&s.ID, &s.UserID, &s.GamesPlayed, &s.GamesWon, &s.TotalScore, &best, &s.LastUpdatedAt)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("statistics not found: user_id=%s", userID)
		} else {
			log.Error("failed to get statistics: %v", err)
		}
		return nil, err
	}
	s.BestAttempts = intPtr(best)
	return &s, nil
}

func (r *statisticsRepository) Insert(ctx context.Context, s models.UserGameStatistics) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("inserting statistics: user_id=%s", s.UserID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_game_statistics (id, user_id, games_played, games_won, total_score, best_attempts, last_updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.UserID, s.GamesPlayed, s.GamesWon, s.TotalScore, nullInt(s.BestAttempts), s.LastUpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("statistics already exist: user_id=%s", s.UserID)
		} else {
			log.Error("failed to insert statistics: %v", err)
		}
		return translateError(err)
	}
	return nil
}

func (r *statisticsRepository) Update(ctx context.Context, s models.UserGameStatistics) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("updating statistics: user_id=%s, games_played=%d, games_won=%d, total_score=%d",
		s.UserID, s.GamesPlayed, s.GamesWon, s.TotalScore)

	res, err := r.db.ExecContext(ctx, `
UPDATE user_game_statistics
SET games_played = ?, games_won = ?, total_score = ?, best_attempts = ?, last_updated_at = ?
WHERE id = ?
`, s.GamesPlayed, s.GamesWon, s.TotalScore, nullInt(s.BestAttempts), s.LastUpdatedAt, s.ID)
	if err != nil {
		log.Error("failed to update statistics: %v", err)
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func leaderboardQuery(columns []string, query models.LeaderboardQuery) squirrel.SelectBuilder {
	b := sqlBuilder.Select(columns...).
		From("user_game_statistics st").
		LeftJoin("users u ON u.id = st.user_id")
	if query.Order == models.LeaderboardByWinRate {
		minGames := query.MinGames
		if minGames <= 0 {
			minGames = models.DefaultLeaderboardMinGames
		}
		return b.Where(squirrel.GtOrEq{"st.games_played": minGames})
	}
	return b.Where(squirrel.Gt{"st.games_played": 0})
}

func (r *statisticsRepository) Leaderboard(ctx context.Context, query models.LeaderboardQuery) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("loading leaderboard: order=%s, min_games=%d, limit=%d, offset=%d",
		query.Order, query.MinGames, query.Limit, query.Offset)

	b := leaderboardQuery([]string{
		"st.user_id",
		"TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, ''))",
		"st.games_played", "st.games_won", "st.total_score",
		winRateExpr + " AS win_rate",
		"st.best_attempts",
	}, query)

	// Ties fall back to user id so pages are stable.
	if query.Order == models.LeaderboardByWinRate {
		b = b.OrderBy("win_rate DESC", "st.total_score DESC", "st.user_id ASC")
	} else {
		b = b.OrderBy("st.total_score DESC", "win_rate DESC", "st.user_id ASC")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}
	b = b.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := b.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to load leaderboard: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var (
			e    models.LeaderboardEntry
			best sql.NullInt64
		)
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.GamesPlayed, &e.GamesWon, &e.TotalScore, &e.WinRate, &best); err != nil {
			log.Error("failed to scan leaderboard row: %v", err)
			return nil, err
		}
		e.BestAttempts = intPtr(best)
		e.Rank = offset + len(entries) + 1
		entries = append(entries, e)
	}
	log.Debug("leaderboard rows: %d", len(entries))
	return entries, rows.Err()
}

func (r *statisticsRepository) CountLeaderboard(ctx context.Context, query models.LeaderboardQuery) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	sqlStr, args, err := leaderboardQuery([]string{"COUNT(*)"}, query).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count leaderboard: %v", err)
		return 0, err
	}
	return count, nil
}
