package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/numguess/internal/repository"
)

type unitOfWork struct {
	sessions   repository.SessionRepository
	attempts   repository.AttemptRepository
	statistics repository.StatisticsRepository
	users      repository.UserRepository
}

func newUnitOfWork(q querier) *unitOfWork {
	return &unitOfWork{
		sessions:   NewSessionRepository(q),
		attempts:   NewAttemptRepository(q),
		statistics: NewStatisticsRepository(q),
		users:      NewUserRepository(q),
	}
}

func (u *unitOfWork) Sessions() repository.SessionRepository       { return u.sessions }
func (u *unitOfWork) Attempts() repository.AttemptRepository       { return u.attempts }
func (u *unitOfWork) Statistics() repository.StatisticsRepository { return u.statistics }
func (u *unitOfWork) Users() repository.UserRepository             { return u.users }

type store struct {
	*unitOfWork
	db *sql.DB
}

// NewStore returns repositories bound to db plus a transaction runner whose
// repositories are bound to the open transaction.
func NewStore(db *sql.DB) repository.Store {
	return &store{unitOfWork: newUnitOfWork(db), db: db}
}

func (s *store) WithinTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return tx(ctx, s.db, func(t *sql.Tx) error {
		return fn(newUnitOfWork(t))
	})
}

func (s *store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
