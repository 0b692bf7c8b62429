package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	tokens   *TokenIssuer
	sessions *SessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, sessions *SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, sessions: sessions, logger: logger, now: time.Now}
}

// Register creates a self-service account. Sign-ups always receive the
// contact role; elevated roles are granted by an admin.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	hash, err := HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	user := User{
		ID:           uuid.New(),
		Email:        NormalizeEmail(req.Email),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         shared.RoleContactUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return User{}, err
	}
	s.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login validates credentials and opens a refresh session.
func (s *Service) Login(ctx context.Context, req LoginRequest, meta ClientMeta) (TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, shared.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if !user.IsActive || !CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("login rejected", slog.String("user_id", user.ID.String()), slog.String("ip", meta.IP))
		return TokenPair{}, shared.ErrInvalidCredentials
	}
	return s.issue(ctx, user, meta)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed whether or not the exchange succeeds.
func (s *Service) Refresh(ctx context.Context, token string, meta ClientMeta) (TokenPair, error) {
	sess, err := s.sessions.Consume(ctx, token)
	if err != nil {
		return TokenPair{}, err
	}
	user, err := s.repo.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, fmt.Errorf("%w: account no longer exists", shared.ErrUnauthorized)
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, fmt.Errorf("%w: account disabled", shared.ErrUnauthorized)
	}
	return s.issue(ctx, user, meta)
}

// Logout revokes a single refresh token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// LogoutAll revokes every refresh session of userID.
func (s *Service) LogoutAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.sessions.RevokeAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("sessions revoked", slog.String("user_id", userID.String()), slog.Int("count", n))
	return n, nil
}

// Me loads the caller's account.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ChangePassword verifies the current password, stores the new one and
// signs the user out everywhere.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return shared.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return shared.NewValidationError("new_password", "must differ from the current password")
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash, s.now().UTC()); err != nil {
		return err
	}
	_, err = s.LogoutAll(ctx, userID)
	return err
}

// Sessions lists the caller's live refresh sessions.
func (s *Service) Sessions(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	return s.sessions.List(ctx, userID)
}

func (s *Service) issue(ctx context.Context, user User, meta ClientMeta) (TokenPair, error) {
	access, exp, err := s.tokens.Issue(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		ExpiresAt:    exp,
		User:         user,
	}, nil
}
