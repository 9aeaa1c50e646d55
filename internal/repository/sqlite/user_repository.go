package sqlite

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
)

type userRepository struct {
	db querier
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db querier) repository.UserRepository {
	return &userRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: id=%s", u.ID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, normalized_email, password_hash, first_name, last_name, is_active, security_stamp, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, u.ID, strings.TrimSpace(u.Email), normalizeEmail(u.Email), u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.SecurityStamp, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("email already registered")
		} else {
			log.Error("failed to create user: %v", err)
		}
		return translateError(err)
	}
	return nil
}

const userColumns = `id, email, password_hash, first_name, last_name, is_active, security_stamp, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive, &u.SecurityStamp, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translateError(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%s", id)

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("failed to get user: %v", err)
	}
	return u, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user by email")

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE normalized_email = ?`, normalizeEmail(email)))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("failed to get user by email: %v", err)
	}
	return u, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash, securityStamp string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating password: id=%s", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE users SET password_hash = ?, security_stamp = ?, updated_at = ? WHERE id = ?
`, passwordHash, securityStamp, at, id)
	if err != nil {
		log.Error("failed to update password: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateSecurityStamp(ctx context.Context, id, securityStamp string, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("rotating security stamp: id=%s", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE users SET security_stamp = ?, updated_at = ? WHERE id = ?
`, securityStamp, at, id)
	if err != nil {
		log.Error("failed to update security stamp: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) ListIDsWithoutStatistics(ctx context.Context, limit int) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT u.id
FROM users u
LEFT JOIN user_game_statistics st ON st.user_id = u.id
WHERE st.id IS NULL
ORDER BY u.created_at
LIMIT ?
`, limit)
	if err != nil {
		log.Error("failed to list users without statistics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	log.Debug("users without statistics: %d", len(ids))
	return ids, rows.Err()
}
