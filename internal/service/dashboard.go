package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// DashboardStore is what the landing view reads.
type DashboardStore interface {
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	ListTransactions(ctx context.Context, f domain.TransactionFilter) ([]domain.Transaction, error)
	refSource
}

// DashboardService assembles the admin landing view.
type DashboardService struct {
	store  DashboardStore
	loc    *time.Location
	now    Clock
	logger *zap.Logger
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(store DashboardStore, loc *time.Location, now Clock, logger *zap.Logger) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &DashboardService{store: store, loc: loc, now: now, logger: logger}
}

// Get returns today's appointments and client count, plus ledger totals when
// the caller is the OWNER.
func (s *DashboardService) Get(ctx context.Context, p domain.Principal) (*domain.Dashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Get")
	defer span.End()

	day, _ := parseDay("", s.now(), s.loc)
	withFinance := p.Role == domain.RoleOwner

	var (
		today []domain.Appointment
		r     *refs
		txs   []domain.Transaction
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		today, err = s.store.ListAppointments(gCtx, dayFilter(day))
		return err
	})
	g.Go(func() (err error) {
		r, err = loadRefs(gCtx, s.store)
		return err
	})
	if withFinance {
		g.Go(func() (err error) {
			txs, err = s.store.ListTransactions(gCtx, domain.TransactionFilter{})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard fan-out failed", zap.Error(err))
		return nil, fmt.Errorf("building dashboard: %w", err)
	}

	sortByTime(today)
	upcoming := today
	if len(upcoming) > domain.DashboardUpcomingLimit {
		upcoming = upcoming[:domain.DashboardUpcomingLimit]
	}

	d := &domain.Dashboard{
		Date:              day.Format(DateLayout),
		AppointmentsToday: len(today),
		Upcoming:          r.views(upcoming),
		ClientCount:       len(r.clients),
	}
	if withFinance {
		sum := domain.Summarize(txs)
		d.Financials = &sum
	}
	return d, nil
}
