package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/BearBump/ParcelTrack/internal/models"
)

var ErrInvalidCredentials = errors.New("Invalid email or password.")

type UserRepository interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (uint64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
}

type Service struct {
	users  UserRepository
	hasher *Hasher
	tokens *TokenIssuer
}

func New(users UserRepository, hasher *Hasher, tokens *TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// LoginResult: сессия плюс подписанный токен для клиента.
type LoginResult struct {
	Session   Session
	Token     string
	ExpiresAt time.Time
}

func (s *Service) Register(ctx context.Context, name, email, password string) (uint64, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if n := utf8.RuneCountInString(name); n < 2 || n > 80 {
		return 0, models.NewValidationError("name", "Name must be between 2 and 80 characters.")
	}
	if !validEmail(email) {
		return 0, models.NewValidationError("email", "Please enter a valid email address.")
	}
	if !strongPassword(password) {
		return 0, models.NewValidationError("password", "Password must be at least 10 chars and include upper, lower, and number.")
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return 0, emailTaken()
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return 0, err
	}

	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return 0, errors.Wrap(err, "hash password")
	}
	id, err := s.users.CreateUser(ctx, name, email, hash)
	if errors.Is(err, models.ErrEmailTaken) {
		return 0, emailTaken()
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if s.hasher.Compare(u.PasswordHash, []byte(password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sess := Session{UserID: u.ID, Email: u.Email}
	token, exp, err := s.tokens.Issue(sess)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Session: sess, Token: token, ExpiresAt: exp}, nil
}

// Authenticate разбирает bearer-токен; пользователь должен всё ещё существовать.
func (s *Service) Authenticate(ctx context.Context, token string) (Session, error) {
	sess, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.users.GetUserByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, err
	}
	return sess, nil
}

func emailTaken() error {
	return models.NewValidationError("email", "An account with this email already exists.")
}

func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}

func strongPassword(p string) bool {
	if len(p) < 10 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r) && r < utf8.RuneSelf:
			digit = true
		}
	}
	return upper && lower && digit
}
