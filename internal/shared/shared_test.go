package shared

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type docStatus string

func TestTransitionsCheck(t *testing.T) {
	table := Transitions[docStatus]{
		"draft":     {"confirmed", "cancelled"},
		"confirmed": {"cancelled"},
	}
	require.NoError(t, table.Check("order", "draft", "confirmed"))
	require.NoError(t, table.Check("order", "confirmed", "cancelled"))

	err := table.Check("order", "cancelled", "confirmed")
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Contains(t, err.Error(), "cancelled to confirmed")

	assert.False(t, table.Allowed("draft", "draft"))
}

func TestAuthorize(t *testing.T) {
	admin := Principal{UserID: uuid.New(), Role: RoleAdmin}
	contact := Principal{UserID: uuid.New(), Role: RoleContactUser}

	require.NoError(t, Authorize(admin, "post payments", FinanceRoles...))
	require.ErrorIs(t, Authorize(contact, "post payments", FinanceRoles...), ErrForbidden)
	require.ErrorIs(t, Authorize(Principal{Role: RoleAdmin}, "post payments", FinanceRoles...), ErrUnauthorized)
}

func TestRoleScopes(t *testing.T) {
	assert.ElementsMatch(t, AllScopes(), RoleScopes(RoleAdmin))
	assert.Contains(t, RoleScopes(RoleInvoicingUser), PermPaymentsSettle)
	assert.NotContains(t, RoleScopes(RoleInvoicingUser), PermUsersManage)
	assert.NotContains(t, RoleScopes(RoleContactUser), PermPaymentsSettle)
	assert.Nil(t, RoleScopes(Role("ghost")))

	r, err := ParseRole(" Invoicing_User ")
	require.NoError(t, err)
	assert.Equal(t, RoleInvoicingUser, r)
	_, err = ParseRole("root")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUserSafeMessage(t *testing.T) {
	err := fmt.Errorf("create payment: %w", fmt.Errorf("%w: vendor bill already fully paid", ErrInvalidState))
	assert.Equal(t, "vendor bill already fully paid", UserSafeMessage(err))
	assert.Equal(t, "boom", UserSafeMessage(errors.New("boom")))
	assert.Equal(t, "", UserSafeMessage(nil))
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &ValidationError{Fields: map[string]string{"b": "bad", "a": "missing"}})
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "wrap: validation failed: a: missing; b: bad", err.Error())
}

func TestPageFromQuery(t *testing.T) {
	req := PageFromQuery(url.Values{"page": {"3"}, "per_page": {"500"}})
	assert.Equal(t, 200, req.Limit())
	assert.Equal(t, 400, req.Offset())

	def := PageFromQuery(url.Values{})
	assert.Equal(t, 20, def.Limit())
	assert.Equal(t, 0, def.Offset())

	page := NewPage[int](nil, def, 41)
	assert.Equal(t, []int{}, page.Items)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}
