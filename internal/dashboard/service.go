// Package dashboard aggregates revenue, expenses, stock and outstanding
// balances for the home screen and caches the result in Redis.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Months is the window of the sales vs purchases series.
const Months = 12

// MonthlyPoint is one bar pair of the sales vs purchases chart.
type MonthlyPoint struct {
	Month     string          `json:"month"`
	Sales     decimal.Decimal `json:"sales"`
	Purchases decimal.Decimal `json:"purchases"`
}

// Snapshot is the dashboard payload.
type Snapshot struct {
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	NetProfit              decimal.Decimal `json:"net_profit"`
	TotalItemsInStock      int64           `json:"total_items_in_stock"`
	ReceivablesOutstanding decimal.Decimal `json:"receivables_outstanding"`
	PayablesOutstanding    decimal.Decimal `json:"payables_outstanding"`
	SalesVsPurchases       []MonthlyPoint  `json:"sales_vs_purchases"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// Service computes and caches snapshots.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a Repository with a Cache helper. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// Snapshot returns the cached snapshot, computing it on a miss.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	key, err := s.cache.BuildKey(ctx, "dashboard", "snapshot")
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.Any("error", err))
		return s.Compute(ctx)
	}
	var snap Snapshot
	err = s.cache.FetchJSON(ctx, key, &snap, func(ctx context.Context) (any, error) {
		return s.Compute(ctx)
	})
	return snap, err
}

// Refresh recomputes the snapshot, invalidates older cache entries and
// stores the fresh copy.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	snap, err := s.Compute(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := s.cache.Bump(ctx); err != nil {
		return snap, fmt.Errorf("dashboard: bump cache: %w", err)
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "snapshot")
	if err != nil {
		return snap, err
	}
	return snap, s.cache.Store(ctx, key, snap)
}

// Compute runs the aggregate queries in parallel.
func (s *Service) Compute(ctx context.Context) (Snapshot, error) {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(Months - 1), 0)

	var (
		snap    = Snapshot{GeneratedAt: now}
		monthly []MonthlyRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.TotalRevenue, err = s.repo.PostedPaymentTotal(gctx, "receive")
		return wrap("revenue", err)
	})
	g.Go(func() (err error) {
		snap.TotalExpenses, err = s.repo.PostedPaymentTotal(gctx, "send")
		return wrap("expenses", err)
	})
	g.Go(func() (err error) {
		snap.TotalItemsInStock, err = s.repo.ItemsInStock(gctx)
		return wrap("stock", err)
	})
	g.Go(func() (err error) {
		snap.ReceivablesOutstanding, err = s.repo.ReceivablesOutstanding(gctx)
		return wrap("receivables", err)
	})
	g.Go(func() (err error) {
		snap.PayablesOutstanding, err = s.repo.PayablesOutstanding(gctx)
		return wrap("payables", err)
	})
	g.Go(func() (err error) {
		monthly, err = s.repo.MonthlyPayments(gctx, from)
		return wrap("monthly payments", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap.NetProfit = snap.TotalRevenue.Sub(snap.TotalExpenses)
	snap.SalesVsPurchases = fillMonths(from, monthly)
	return snap, nil
}

// fillMonths returns exactly Months points starting at from, with zero
// totals for months without posted payments.
func fillMonths(from time.Time, rows []MonthlyRow) []MonthlyPoint {
	byMonth := make(map[string]MonthlyRow, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row
	}
	points := make([]MonthlyPoint, Months)
	for i := range points {
		month := from.AddDate(0, i, 0).Format("2006-01")
		row := byMonth[month]
		points[i] = MonthlyPoint{Month: month, Sales: row.Receipts, Purchases: row.Disbursed}
	}
	return points
}

func wrap(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("dashboard: %s: %w", what, err)
}
