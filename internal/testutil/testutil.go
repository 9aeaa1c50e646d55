package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/numguess/internal/db"
	"github.com/vytor/numguess/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is limited to one connection so every caller sees the same
// in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// CreateStatistics inserts a zeroed statistics row for userID and returns it.
func CreateStatistics(t *testing.T, sqlDB *sql.DB, userID string) models.UserGameStatistics {
	t.Helper()
	stats := models.UserGameStatistics{
		ID:            uuid.NewString(),
		UserID:        userID,
		LastUpdatedAt: time.Now().UTC(),
	}
	_, err := sqlDB.Exec(`INSERT INTO user_game_statistics (id, user_id, games_played, games_won, total_score, last_updated_at) VALUES (?, ?, 0, 0, 0, ?)`,
		stats.ID, stats.UserID, stats.LastUpdatedAt)
	require.NoError(t, err)
	return stats
}

// CreateUser inserts an active user with a placeholder password hash.
func CreateUser(t *testing.T, sqlDB *sql.DB, email, firstName, lastName string) models.User {
	t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:            uuid.NewString(),
		Email:         email,
		PasswordHash:  "x",
		FirstName:     firstName,
		LastName:      lastName,
		IsActive:      true,
		SecurityStamp: uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := sqlDB.Exec(`INSERT INTO users (id, email, normalized_email, password_hash, first_name, last_name, is_active, security_stamp, created_at, updated_at)
VALUES (?, ?, UPPER(?), ?, ?, ?, 1, ?, ?, ?)`,
		u.ID, u.Email, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.SecurityStamp, u.CreatedAt, u.UpdatedAt)
	require.NoError(t, err)
	return u
}

// InsertSession stores a session row directly, bypassing the engine.
func InsertSession(t *testing.T, sqlDB *sql.DB, statisticsID string, status models.GameStatus, difficulty models.Difficulty, score int, startedAt time.Time) string {
	t.Helper()
	id := uuid.NewString()
	var endedAt any
	attempts := 0
	if status.Terminal() {
		endedAt = startedAt.Add(time.Minute)
		attempts = 1
	}
	_, err := sqlDB.Exec(`INSERT INTO game_sessions (id, statistics_id, secret_number, min_range, max_range, max_attempts, attempts_count, status, score, difficulty, started_at, ended_at, version)
VALUES (?, ?, 5, 1, 10, 5, ?, ?, ?, ?, ?, ?, 1)`,
		id, statisticsID, attempts, status, score, difficulty, startedAt.UTC(), endedAt)
	require.NoError(t, err)
	return id
}
