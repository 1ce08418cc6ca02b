package pgshipments

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

const uniqueViolation = "23505"

func (s *Storage) CreateUser(ctx context.Context, name, email, passwordHash string) (uint64, error) {
	now := time.Now().UTC()
	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO users (name, email, password_hash, created_at, updated_at)
VALUES ($1,$2,$3,$4,$4)
RETURNING id
`, strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email)), passwordHash, now).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, models.ErrEmailTaken
		}
		return 0, errors.Wrap(err, "insert user")
	}
	return id, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Storage) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	return s.getUser(ctx, `WHERE id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `
SELECT id, name, email, password_hash, created_at, updated_at
FROM users
`+where, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "select user")
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
