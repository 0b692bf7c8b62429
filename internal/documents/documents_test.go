package documents

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/pricing"
	"github.com/OmkarLolage21/Odoo-Hackathon-Final-Round/internal/shared"
)

func TestOrderTransitions(t *testing.T) {
	assert.NoError(t, OrderTransitions.Check("sales order", OrderDraft, OrderConfirmed))
	assert.NoError(t, OrderTransitions.Check("sales order", OrderDraft, OrderCancelled))
	assert.NoError(t, OrderTransitions.Check("sales order", OrderConfirmed, OrderCancelled))
	assert.ErrorIs(t, OrderTransitions.Check("sales order", OrderCancelled, OrderDraft), shared.ErrInvalidState)
	assert.ErrorIs(t, OrderTransitions.Check("sales order", OrderConfirmed, OrderDraft), shared.ErrInvalidState)
	assert.ErrorIs(t, OrderTransitions.Check("sales order", OrderDraft, OrderDraft), shared.ErrInvalidState)
}

func TestInvoiceTransitionsExcludeSettlementMoves(t *testing.T) {
	assert.True(t, InvoiceTransitions.Allowed(InvoiceDraft, InvoicePosted))
	assert.True(t, InvoiceTransitions.Allowed(InvoicePosted, InvoiceCancelled))
	assert.False(t, InvoiceTransitions.Allowed(InvoicePosted, InvoicePaid))
	assert.False(t, InvoiceTransitions.Allowed(InvoicePaid, InvoicePosted))
	assert.False(t, InvoiceTransitions.Allowed(InvoiceCancelled, InvoiceDraft))
}

func TestParseStatuses(t *testing.T) {
	_, ok := ParseOrderStatus("CONFIRMED")
	assert.False(t, ok)
	s, ok := ParseBillStatus("posted")
	assert.True(t, ok)
	assert.Equal(t, BillPosted, s)
	_, ok = ParseInvoiceStatus("void")
	assert.False(t, ok)
}

func TestFromPricedAndTotals(t *testing.T) {
	pid := uuid.New()
	priced := pricing.Line{
		Position:    1,
		ProductID:   pid,
		ProductName: "Laptop",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(100),
		TaxPercent:  decimal.NewFromInt(18),
		Amounts:     pricing.PriceLine(2, decimal.NewFromInt(100), decimal.NewFromInt(18)),
	}
	line := FromPriced(priced)
	require.NotNil(t, line.ProductID)
	assert.Equal(t, pid, *line.ProductID)
	assert.NotEqual(t, uuid.Nil, line.ID)

	totals := Totals([]Line{line, line})
	assert.Equal(t, "472.00", totals.Amount.StringFixed(2))

	inputs := Reprice([]Line{line})
	assert.Equal(t, 2, inputs[0].Quantity)
	assert.Equal(t, "Laptop", inputs[0].ProductName)
}

func TestLineTableColumns(t *testing.T) {
	assert.Len(t, SalesOrderLines.columns(), 10)
	assert.Contains(t, VendorBillLines.columns(), "account_name")
	assert.NotContains(t, VendorBillLines.columns(), "account_id")
	assert.Contains(t, CustomerInvoiceLines.columns(), "account_id")

	var l Line
	for _, table := range []LineTable{SalesOrderLines, PurchaseOrderLines, VendorBillLines, CustomerInvoiceLines} {
		assert.Len(t, table.targets(&l), len(table.columns()), table.Name)
		assert.Len(t, table.values(l), len(table.columns()), table.Name)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("due_date", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw := "2026-03-31"
	got, err = ParseDate("due_date", &raw)
	require.NoError(t, err)
	assert.Equal(t, 31, got.Day())

	bad := "31/03/2026"
	_, err = ParseDate("due_date", &bad)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
