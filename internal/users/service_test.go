package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/auth"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memoryRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]User
	audits []shared.AuditLog
}

func (m *memoryRepo) ListUsers(_ context.Context, req ListUsersRequest) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []User
	for _, u := range m.users {
		if req.Role != nil && u.Role != *req.Role {
			continue
		}
		if req.Active != nil && u.IsActive != *req.Active {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetUser(_ context.Context, id uuid.UUID) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) CreateUser(_ context.Context, u User, audit shared.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return shared.ErrDuplicate
		}
	}
	m.users[u.ID] = u
	m.audits = append(m.audits, audit)
	return nil
}

func (m *memoryRepo) UpdateUser(_ context.Context, u User, audit shared.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.audits = append(m.audits, audit)
	return nil
}

var admin = shared.Principal{UserID: uuid.New(), Email: "admin@example.com", Role: shared.RoleAdmin}

func newUsersFixture(t *testing.T) (*Service, *memoryRepo, *auth.SessionStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := auth.NewSessionStore(client, time.Hour)
	repo := &memoryRepo{users: map[uuid.UUID]User{
		admin.UserID: {ID: admin.UserID, Email: admin.Email, Role: shared.RoleAdmin, IsActive: true},
	}}
	return NewService(repo, store, nil), repo, store
}

func TestCreateUserWithRole(t *testing.T) {
	svc, repo, _ := newUsersFixture(t)
	u, err := svc.CreateUser(context.Background(), admin, CreateUserRequest{
		Email: "Clerk@Example.com", FullName: "Clerk", Password: "s3cret-pass", Role: "invoicing_user",
	})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", u.Email)
	assert.Equal(t, shared.RoleInvoicingUser, u.Role)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "s3cret-pass"))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "user.created", repo.audits[0].Action)

	_, err = svc.CreateUser(context.Background(), admin, CreateUserRequest{
		Email: "clerk@example.com", FullName: "Dup", Password: "s3cret-pass", Role: "contact_user",
	})
	assert.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestUserManagementRequiresAdmin(t *testing.T) {
	svc, _, _ := newUsersFixture(t)
	clerk := shared.Principal{UserID: uuid.New(), Role: shared.RoleInvoicingUser}

	_, _, err := svc.ListUsers(context.Background(), clerk, ListUsersRequest{Limit: 10})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.CreateUser(context.Background(), clerk, CreateUserRequest{Email: "x@example.com", FullName: "X", Password: "s3cret-pass", Role: "admin"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateRoleRevokesSessions(t *testing.T) {
	svc, repo, store := newUsersFixture(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, admin, CreateUserRequest{Email: "c@example.com", FullName: "C", Password: "s3cret-pass", Role: "contact_user"})
	require.NoError(t, err)
	token, _, err := store.Create(ctx, u.ID, auth.ClientMeta{})
	require.NoError(t, err)

	role := "invoicing_user"
	updated, err := svc.UpdateUser(ctx, admin, u.ID, UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleInvoicingUser, updated.Role)
	assert.Equal(t, "user.updated", repo.audits[len(repo.audits)-1].Action)

	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestUpdateNameKeepsSessions(t *testing.T) {
	svc, _, store := newUsersFixture(t)
	ctx := context.Background()
	u, err := svc.CreateUser(ctx, admin, CreateUserRequest{Email: "d@example.com", FullName: "D", Password: "s3cret-pass", Role: "contact_user"})
	require.NoError(t, err)
	token, _, err := store.Create(ctx, u.ID, auth.ClientMeta{})
	require.NoError(t, err)

	name := "Dee"
	_, err = svc.UpdateUser(ctx, admin, u.ID, UpdateUserRequest{FullName: &name})
	require.NoError(t, err)
	_, err = store.Lookup(ctx, token)
	assert.NoError(t, err)

	off := false
	_, err = svc.UpdateUser(ctx, admin, u.ID, UpdateUserRequest{IsActive: &off})
	require.NoError(t, err)
	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	svc, _, _ := newUsersFixture(t)
	role := "contact_user"
	_, err := svc.UpdateUser(context.Background(), admin, admin.UserID, UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	off := false
	_, err = svc.UpdateUser(context.Background(), admin, admin.UserID, UpdateUserRequest{IsActive: &off})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestUsersHandler(t *testing.T) {
	svc, _, _ := newUsersFixture(t)
	serve := func(p shared.Principal, method, path, body string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), p)))
			})
		})
		r.Route("/api/users", NewHandler(nil, svc, rbac.Middleware{Service: rbac.NewService()}).MountRoutes)
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	rr := serve(admin, http.MethodPost, "/api/users/", `{"email":"e@example.com","full_name":"E","password":"s3cret-pass","role":"admin"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "password_hash")

	rr = serve(admin, http.MethodGet, "/api/users/?role=admin", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "e@example.com")

	rr = serve(admin, http.MethodPost, "/api/users/", `{"email":"f@example.com","full_name":"F","password":"s3cret-pass","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(admin, http.MethodPatch, "/api/users/"+uuid.NewString(), `{"is_active":false}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	contact := shared.Principal{UserID: uuid.New(), Role: shared.RoleContactUser}
	rr = serve(contact, http.MethodGet, "/api/users/", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
