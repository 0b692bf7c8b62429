package contacts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/masterdata/shared"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/rbac"
	internalShared "github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

type memRepo struct {
	rows map[uuid.UUID]Contact
}

func (m *memRepo) List(context.Context, shared.ListFilters) ([]Contact, int, error) {
	out := make([]Contact, 0, len(m.rows))
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(_ context.Context, id uuid.UUID) (Contact, error) {
	if c, ok := m.rows[id]; ok {
		return c, nil
	}
	return Contact{}, internalShared.ErrNotFound
}

func (m *memRepo) Create(_ context.Context, c Contact) (Contact, error) {
	for _, existing := range m.rows {
		if c.Email != nil && existing.Email != nil && *existing.Email == *c.Email {
			return Contact{}, internalShared.ErrDuplicate
		}
	}
	c.ID = uuid.New()
	m.rows[c.ID] = c
	return c, nil
}

func (m *memRepo) Update(_ context.Context, c Contact) (Contact, error) {
	m.rows[c.ID] = c
	return c, nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.rows[id]; !ok {
		return internalShared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func newRouter(t *testing.T, role internalShared.Role) (http.Handler, *memRepo) {
	t.Helper()
	repo := &memRepo{rows: map[uuid.UUID]Contact{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo), rbac.Middleware{Service: rbac.NewService()})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := internalShared.ContextWithPrincipal(req.Context(), internalShared.Principal{UserID: uuid.New(), Role: role})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/contacts", h.MountRoutes)
	return r, repo
}

func TestCreateAndFetchContact(t *testing.T) {
	router, _ := newRouter(t, internalShared.RoleContactUser)

	body := `{"name":"Azure Interior","type":"customer","email":"Sales@Azure.example","city":"Pune"}`
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contacts/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created Contact
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotNil(t, created.Email)
	assert.Equal(t, "sales@azure.example", *created.Email)
	assert.True(t, created.IsCustomer())
	assert.False(t, created.IsVendor())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contacts/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateContactValidation(t *testing.T) {
	router, _ := newRouter(t, internalShared.RoleAdmin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/contacts/", strings.NewReader(`{"name":"X","type":"supplier"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteMissingContact(t *testing.T) {
	router, _ := newRouter(t, internalShared.RoleAdmin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/contacts/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestContactNameSnapshot(t *testing.T) {
	repo := &memRepo{rows: map[uuid.UUID]Contact{}}
	svc := NewService(repo)
	c, err := svc.Create(context.Background(), ContactForm{Name: " Nimesh Pathak ", Type: TypeVendor})
	require.NoError(t, err)

	name, err := svc.ContactName(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nimesh Pathak", name)
}
