package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/numguess/internal/models"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStaleWrite is returned when a versioned update matched no row.
	ErrStaleWrite = errors.New("stale write")
)

// SessionRepository handles game session data access
type SessionRepository interface {
	// Get loads a session with its owning user id and ordered attempts.
	Get(ctx context.Context, id string) (*models.GameSession, error)
	Insert(ctx context.Context, session *models.GameSession) error
	// Update writes the mutable fields of an InProgress session whose
	// version still matches, then bumps session.Version.
	Update(ctx context.Context, session *models.GameSession) error
	CountActive(ctx context.Context, statisticsID string) (int, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.GameSession, error)
	Count(ctx context.Context, filter models.SessionFilter) (int, error)
	DifficultyBreakdown(ctx context.Context, statisticsID string) ([]models.DifficultyBreakdown, error)
}

// AttemptRepository handles game attempt data access
type AttemptRepository interface {
	Insert(ctx context.Context, attempt models.GameAttempt) error
	ListBySession(ctx context.Context, sessionID string) ([]models.GameAttempt, error)
	ListBySessions(ctx context.Context, sessionIDs []string) (map[string][]models.GameAttempt, error)
}

// StatisticsRepository handles per-user statistics data access
type StatisticsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserGameStatistics, error)
	Insert(ctx context.Context, stats models.UserGameStatistics) error
	Update(ctx context.Context, stats models.UserGameStatistics) error
	Leaderboard(ctx context.Context, query models.LeaderboardQuery) ([]models.LeaderboardEntry, error)
	CountLeaderboard(ctx context.Context, query models.LeaderboardQuery) (int, error)
}

// UserRepository handles registered user data access
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash, securityStamp string, at time.Time) error
	UpdateSecurityStamp(ctx context.Context, id, securityStamp string, at time.Time) error
	ListIDsWithoutStatistics(ctx context.Context, limit int) ([]string, error)
}

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Sessions() SessionRepository
	Attempts() AttemptRepository
	Statistics() StatisticsRepository
	Users() UserRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// Store is a UnitOfWork over the whole database plus transactions.
type Store interface {
	UnitOfWork
	Transactor
	Ping(ctx context.Context) error
}
