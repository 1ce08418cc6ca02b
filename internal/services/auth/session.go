package auth

import "context"

// Session — аутентифицированный пользователь текущего запроса.
type Session struct {
	UserID uint64
	Email  string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.UserID != 0
}
