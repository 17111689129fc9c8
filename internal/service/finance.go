package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var financeTracer = otel.Tracer("service/finance")

// TransactionQuery narrows a ledger listing. Dates are YYYY-MM-DD in the
// salon timezone; To is inclusive.
type TransactionQuery struct {
	Type string
	From string
	To   string
}

// FinanceService reads the ledger and records manual entries.
type FinanceService struct {
	store  port.TransactionStore
	loc    *time.Location
	now    Clock
	logger *zap.Logger
}

// NewFinanceService creates the finance service.
func NewFinanceService(store port.TransactionStore, loc *time.Location, now Clock, logger *zap.Logger) *FinanceService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &FinanceService{store: store, loc: loc, now: now, logger: logger}
}

// List returns matching transactions, newest first.
func (s *FinanceService) List(ctx context.Context, q TransactionQuery) ([]domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.List")
	defer span.End()

	f, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

// Record appends a manual ledger entry with a positive value.
func (s *FinanceService) Record(ctx context.Context, in domain.TransactionInput) (*domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Record")
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	value, err := parseMoney("value", in.Value)
	if err != nil {
		return nil, err
	}
	if !value.IsPositive() {
		return nil, &domain.ErrValidation{Field: "value", Message: "must be greater than zero"}
	}

	t := &domain.Transaction{
		ID:          uuid.NewString(),
		Date:        s.now().UTC(),
		Type:        in.Type,
		Value:       value,
		Description: in.Description,
		Category:    in.Category,
	}
	if err := s.store.AppendTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("append transaction: %w", err)
	}
	s.logger.Info("transaction recorded",
		zap.String("transaction_id", t.ID),
		zap.String("type", string(t.Type)),
		zap.String("value", domain.FormatBRL(t.Value)),
	)
	return t, nil
}

// Summary totals the matching transactions.
func (s *FinanceService) Summary(ctx context.Context, q TransactionQuery) (*domain.FinanceSummary, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Summary")
	defer span.End()

	f, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	sum := domain.Summarize(txs)
	return &sum, nil
}

func (s *FinanceService) filter(q TransactionQuery) (domain.TransactionFilter, error) {
	var f domain.TransactionFilter
	if q.Type != "" {
		f.Type = domain.TransactionType(q.Type)
		if !f.Type.Valid() {
			return f, &domain.ErrValidation{Field: "type", Message: "must be one of: INCOME EXPENSE"}
		}
	}
	if q.From != "" {
		from, err := time.ParseInLocation(DateLayout, q.From, s.loc)
		if err != nil {
			return f, &domain.ErrValidation{Field: "from", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", q.From)}
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(DateLayout, q.To, s.loc)
		if err != nil {
			return f, &domain.ErrValidation{Field: "to", Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", q.To)}
		}
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	return f, nil
}
