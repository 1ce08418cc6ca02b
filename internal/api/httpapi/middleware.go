package httpapi

import (
	"net/http"
	"strings"

	"github.com/BearBump/ParcelTrack/internal/services/auth"
)

// requireSession пускает дальше только запросы с валидным bearer-токеном
// и кладёт Session в контекст.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="parceltrack"`)
			writeError(w, r, auth.ErrInvalidToken)
			return
		}
		sess, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="parceltrack"`)
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
