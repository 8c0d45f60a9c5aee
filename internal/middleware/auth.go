package middleware

import (
	"ScholarDesk/internal/model"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie имя cookie с подписанным токеном сессии.
const SessionCookie = "session_token"

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

// SessionResolver находит пользователя по id серверной сессии.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*model.User, error)
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	UserID    int64  `json:"uid"`
	jwt.RegisteredClaims
}

// SignSessionToken подписывает токен сессии HS256.
func SignSessionToken(sess *model.Session, secret string) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken проверяет подпись и срок, возвращает id сессии.
func ParseSessionToken(token, secret string) (string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

// SetLoginCookie ставит httponly cookie с токеном сессии.
func SetLoginCookie(w http.ResponseWriter, sess *model.Session, secret string, secure bool) error {
	token, err := SignSessionToken(sess, secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearLoginCookie просрочивает cookie сессии.
func ClearLoginCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// WithAuth кладёт в контекст пользователя действующей сессии. Без cookie или с плохим токеном запрос идёт анонимно.
func WithAuth(secret string, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			sid, err := ParseSessionToken(c.Value, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := resolver.Resolve(r.Context(), sid)
			if err != nil || user == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, sessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext пользователь, установленный WithAuth.
func GetUserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// GetUserIDFromContext id пользователя, установленный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	u, ok := GetUserFromContext(ctx)
	if !ok {
		return 0, false
	}
	return u.ID, true
}

// GetSessionIDFromContext id текущей сессии.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sessionKey).(string)
	return sid, ok && sid != ""
}

// IsAdminFromContext true, если пользователь администратор.
func IsAdminFromContext(ctx context.Context) bool {
	u, ok := GetUserFromContext(ctx)
	return ok && u.IsAdmin
}

// RequireAuth пропускает только аутентифицированных, иначе 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUserFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin пропускает только администраторов, иначе 403 (в том числе для анонима).
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			writeError(w, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
