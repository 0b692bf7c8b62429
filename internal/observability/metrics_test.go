package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/api/payments/{id}")
	req := httptest.NewRequest(http.MethodGet, "/api/payments/1", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `accounts_http_requests_total{code="418",route="/api/payments/{id}"} 1`)
	assert.Contains(t, body, `accounts_http_request_duration_seconds_bucket{route="/api/payments/{id}"`)
}

func TestSettlementCounters(t *testing.T) {
	metrics := NewMetrics()
	metrics.PaymentApplied("vendor_bill")
	metrics.PaymentApplied("vendor_bill")
	metrics.PaymentReversed("customer_invoice")

	body := scrape(t, metrics)
	assert.Contains(t, body, `payments_applied_total{kind="vendor_bill"} 2`)
	assert.Contains(t, body, `payments_reversed_total{kind="customer_invoice"} 1`)

	var nilMetrics *Metrics
	nilMetrics.PaymentApplied("vendor_bill")
	rr := httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
