package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/hrms-portal/internal/core/events"
	"github.com/frahmantamala/hrms-portal/internal/hrmsapi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type Config struct {
	SessionTTL time.Duration
	// JWTSecret, when set, verifies backend tokens before their claims are used.
	JWTSecret string
}

type Service struct {
	repo   SessionRepository
	api    hrmsapi.API
	bus    events.Bus
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo SessionRepository, api hrmsapi.API, bus events.Bus, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 8 * time.Hour
	}
	return &Service{
		repo:   repo,
		api:    api,
		bus:    bus,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Login exchanges credentials with the backend and opens a session. The
// returned token goes in the cookie; only its digest is stored.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (string, *internal.User, time.Time, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return "", nil, time.Time{}, appErr
	}

	var resp loginResponse
	if err := s.api.Post(ctx, "", "/api/auth/login", loginRequest{Email: dto.Email, Password: dto.Password}, &resp); err != nil {
		s.logger.Warn("backend login failed", "email", dto.Email, "error", err)
		if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode == http.StatusUnauthorized && genericMessage(appErr.Message, http.StatusUnauthorized) {
			return "", nil, time.Time{}, internal.ErrInvalidCredentials
		}
		return "", nil, time.Time{}, err
	}
	if resp.Token == "" {
		return "", nil, time.Time{}, internal.NewBackendError(http.StatusBadGateway, "Sign-in response did not include a token")
	}

	now := s.now()
	claims, err := s.parseClaims(resp.Token)
	if err != nil {
		return "", nil, time.Time{}, err
	}

	expiresAt := now.Add(s.cfg.SessionTTL)
	if claims != nil && claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		if !exp.After(now) {
			return "", nil, time.Time{}, internal.ErrSessionExpired
		}
		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	user := identity(resp.User, claims)
	if user.ID == "" {
		return "", nil, time.Time{}, internal.NewBackendError(http.StatusBadGateway, "Sign-in response did not identify the user")
	}
	if user.Email == "" {
		user.Email = dto.Email
	}

	rawToken, err := GenerateRandomToken()
	if err != nil {
		return "", nil, time.Time{}, internal.NewInternalError("failed to create session token", err)
	}

	sess := &session.Session{
		ID:           uuid.NewString(),
		TokenHash:    HashToken(rawToken),
		UserID:       user.ID,
		EmployeeID:   user.EmployeeID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		BackendToken: resp.Token,
		Flash:        "[]",
		ExpiresAt:    expiresAt,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", nil, time.Time{}, internal.NewInternalError("failed to store session", err)
	}

	user.Token = resp.Token
	user.SessionID = sess.ID

	s.logger.Info("session opened", "session_id", sess.ID, "user_id", user.ID, "role", user.Role)
	if s.bus != nil {
		s.bus.Publish(ctx, events.NewSessionOpenedEvent(sess.ID, user.ID, string(user.Role)))
	}

	return rawToken, user, expiresAt, nil
}

// Authenticate resolves a cookie token to the signed-in user.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*internal.User, error) {
	if rawToken == "" {
		return nil, internal.ErrSessionExpired
	}

	sess, err := s.repo.FindByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.NewInternalError("failed to load session", err)
	}

	if !sess.ExpiresAt.After(s.now()) {
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("failed to delete expired session", "session_id", sess.ID, "error", err)
		}
		return nil, internal.ErrSessionExpired
	}

	return &internal.User{
		ID:         sess.UserID,
		EmployeeID: sess.EmployeeID,
		Email:      sess.Email,
		Name:       sess.Name,
		Role:       internal.ParseRole(sess.Role),
		Token:      sess.BackendToken,
		SessionID:  sess.ID,
	}, nil
}

// Logout ends the session behind rawToken. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	sess, err := s.repo.FindByTokenHash(ctx, HashToken(rawToken))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return internal.NewInternalError("failed to load session", err)
	}
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return internal.NewInternalError("failed to delete session", err)
	}

	s.logger.Info("session closed", "session_id", sess.ID, "user_id", sess.UserID)
	if s.bus != nil {
		s.bus.Publish(ctx, events.NewSessionClosedEvent(sess.ID, sess.UserID, sess.Role))
	}
	return nil
}

// PushNotice queues a message for the next page the session renders. The
// queue keeps the newest notices only.
func (s *Service) PushNotice(ctx context.Context, sessionID string, notice internal.Notice) error {
	return s.repo.ModifyFlash(ctx, sessionID, func(current string) (string, error) {
		notices := decodeFlash(current)
		notices = append(notices, notice)
		if len(notices) > maxFlashNotices {
			notices = notices[len(notices)-maxFlashNotices:]
		}
		out, err := json.Marshal(notices)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
}

// PopNotices returns and clears the queued notices.
func (s *Service) PopNotices(ctx context.Context, sessionID string) ([]internal.Notice, error) {
	var notices []internal.Notice
	err := s.repo.ModifyFlash(ctx, sessionID, func(current string) (string, error) {
		notices = decodeFlash(current)
		return "[]", nil
	})
	if err != nil {
		return nil, err
	}
	return notices, nil
}

// SubscribeNotices stores published notices on their session.
func (s *Service) SubscribeNotices(bus events.Bus) {
	bus.Subscribe(events.EventTypeNotice, func(ctx context.Context, event events.Event) error {
		notice, ok := event.(*events.NoticeEvent)
		if !ok || notice.SessionID == "" {
			return nil
		}
		return s.PushNotice(ctx, notice.SessionID, internal.Notice{
			Level:   internal.NoticeLevel(notice.Level),
			Message: notice.Message,
		})
	})
}

// SweepExpired deletes sessions whose expiry has passed.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

func (s *Service) parseClaims(token string) (*Claims, error) {
	claims := &Claims{}

	if s.cfg.JWTSecret != "" {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, internal.ErrSessionExpired
			}
			s.logger.Warn("backend token failed verification", "error", err)
			return nil, internal.NewUnauthorizedError("Sign-in token could not be verified", internal.ErrCodeInvalidCredentials)
		}
		return claims, nil
	}

	// Opaque tokens are allowed; they just carry no claims.
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, nil
	}
	return claims, nil
}

func identity(u backendUser, claims *Claims) *internal.User {
	user := &internal.User{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       internal.ParseRole(u.Role),
	}
	if user.ID == "" {
		user.ID = u.AltID
	}
	if claims == nil {
		return user
	}
	if user.ID == "" {
		user.ID = claims.subject()
	}
	if user.Email == "" {
		user.Email = claims.Email
	}
	if user.Role == "" {
		user.Role = internal.ParseRole(claims.Role)
	}
	if user.EmployeeID == "" {
		user.EmployeeID = claims.EmployeeID
	}
	return user
}

func genericMessage(msg string, status int) bool {
	msg = strings.TrimSpace(msg)
	return msg == "" || msg == http.StatusText(status)
}

func decodeFlash(raw string) []internal.Notice {
	var notices []internal.Notice
	if raw == "" {
		return notices
	}
	if err := json.Unmarshal([]byte(raw), &notices); err != nil {
		return nil
	}
	return notices
}

// HashToken is the lookup key stored for a cookie token.
func HashToken(rawToken string) string {
	sum := blake2b.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
