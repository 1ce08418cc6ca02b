package jsonstore

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

func (s *Storage) CreateUser(ctx context.Context, name, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(func(u *models.User) bool { return u.Email == email }) != nil {
		return 0, models.ErrEmailTaken
	}
	before, err := s.snapshot()
	if err != nil {
		return 0, errors.Wrap(err, "snapshot")
	}

	now := s.now()
	s.doc.NextIDs.User++
	u := &models.User{
		ID:           s.doc.NextIDs.User,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.doc.Users = append(s.doc.Users, u)

	if err := s.commit(before); err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.getUser(func(u *models.User) bool { return u.Email == email })
}

func (s *Storage) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	return s.getUser(func(u *models.User) bool { return u.ID == id })
}

func (s *Storage) getUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(match)
	if u == nil {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Storage) findUser(match func(*models.User) bool) *models.User {
	for _, u := range s.doc.Users {
		if match(u) {
			return u
		}
	}
	return nil
}
