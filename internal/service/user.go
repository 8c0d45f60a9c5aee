package service

import (
	"ScholarDesk/internal/model"
	"ScholarDesk/internal/repo"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const userAgentLimit = 200

// UserService регистрация, вход, сессии и права администратора.
type UserService struct {
	repo     repo.UserRepository
	sessions repo.SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewUserService(r repo.UserRepository, sessions repo.SessionRepository, ttl time.Duration) *UserService {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &UserService{repo: r, sessions: sessions, ttl: ttl, now: time.Now}
}

// SessionMeta сведения о клиенте, сохраняемые в сессии.
type SessionMeta struct {
	IP        string
	UserAgent string
}

// Register создаёт пользователя с bcrypt-хешем пароля.
func (s *UserService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}

	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &model.User{Username: username, Password: string(hash)})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// параллельная регистрация с тем же именем
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login проверяет пароль и открывает серверную сессию.
func (s *UserService) Login(ctx context.Context, username, password string, meta SessionMeta) (*model.User, *model.Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user == nil) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	ua := meta.UserAgent
	if len(ua) > userAgentLimit {
		n := userAgentLimit
		// не режем многобайтовый символ
		for n > 0 && !utf8.RuneStart(ua[n]) {
			n--
		}
		ua = ua[:n]
	}
	sess := &model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		IP:        meta.IP,
		UserAgent: ua,
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	return user, sess, nil
}

// Logout удаляет сессию. Неизвестный id не ошибка.
func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Resolve возвращает владельца действующей сессии. Права администратора читаются из строки пользователя.
func (s *UserService) Resolve(ctx context.Context, sessionID string) (*model.User, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, ErrSessionInvalid
	}

	user, err := s.repo.GetUserByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// SetAdmin выдаёт или снимает права администратора.
func (s *UserService) SetAdmin(ctx context.Context, username string, isAdmin bool) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username is required")
	}
	found, err := s.repo.SetAdmin(ctx, username, isAdmin)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %q %w", username, ErrNotFound)
	}
	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// PurgeExpiredSessions удаляет истёкшие сессии, вызывается по расписанию.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}
