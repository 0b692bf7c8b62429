package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

// SessionRevoker drops the refresh sessions of a user.
type SessionRevoker interface {
	RevokeAll(ctx context.Context, userID uuid.UUID) (int, error)
}

// Service exposes admin user management.
type Service struct {
	repo     Repository
	sessions SessionRevoker
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new Service instance. sessions may be nil.
func NewService(repo Repository, sessions SessionRevoker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, sessions: sessions, logger: logger, now: time.Now}
}

// ListUsers returns a page of accounts.
func (s *Service) ListUsers(ctx context.Context, actor shared.Principal, req ListUsersRequest) ([]User, int, error) {
	if err := shared.Authorize(actor, "manage users", shared.RoleAdmin); err != nil {
		return nil, 0, err
	}
	return s.repo.ListUsers(ctx, req)
}

// CreateUser provisions an account with any role.
func (s *Service) CreateUser(ctx context.Context, actor shared.Principal, req CreateUserRequest) (User, error) {
	if err := shared.Authorize(actor, "manage users", shared.RoleAdmin); err != nil {
		return User{}, err
	}
	role, err := shared.ParseRole(req.Role)
	if err != nil {
		return User{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	u := User{
		ID:           uuid.New(),
		Email:        auth.NormalizeEmail(req.Email),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	audit := shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   "user.created",
		Entity:   "user",
		EntityID: u.ID.String(),
		Meta:     map[string]any{"role": string(role)},
		At:       now,
	}
	if err := s.repo.CreateUser(ctx, u, audit); err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdateUser changes name, role or active flag. Admins cannot demote or
// disable themselves. A role change or deactivation signs the user out.
func (s *Service) UpdateUser(ctx context.Context, actor shared.Principal, id uuid.UUID, req UpdateUserRequest) (User, error) {
	if err := shared.Authorize(actor, "manage users", shared.RoleAdmin); err != nil {
		return User{}, err
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	changes := map[string]any{}
	if req.FullName != nil && *req.FullName != u.FullName {
		u.FullName = *req.FullName
		changes["full_name"] = u.FullName
	}
	if req.Role != nil {
		role, err := shared.ParseRole(*req.Role)
		if err != nil {
			return User{}, err
		}
		if role != u.Role {
			if id == actor.UserID {
				return User{}, fmt.Errorf("%w: administrators cannot change their own role", shared.ErrInvalidState)
			}
			u.Role = role
			changes["role"] = string(role)
		}
	}
	if req.IsActive != nil && *req.IsActive != u.IsActive {
		if id == actor.UserID && !*req.IsActive {
			return User{}, fmt.Errorf("%w: administrators cannot deactivate themselves", shared.ErrInvalidState)
		}
		u.IsActive = *req.IsActive
		changes["is_active"] = u.IsActive
	}
	if len(changes) == 0 {
		return u, nil
	}
	u.UpdatedAt = s.now().UTC()
	audit := shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   "user.updated",
		Entity:   "user",
		EntityID: u.ID.String(),
		Meta:     changes,
		At:       u.UpdatedAt,
	}
	if err := s.repo.UpdateUser(ctx, u, audit); err != nil {
		return User{}, err
	}

	_, roleChanged := changes["role"]
	if s.sessions != nil && (roleChanged || !u.IsActive) {
		if _, err := s.sessions.RevokeAll(ctx, u.ID); err != nil {
			s.logger.Warn("revoke sessions after user update", slog.String("user_id", u.ID.String()), slog.Any("error", err))
		}
	}
	return u, nil
}
