package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var ledgerTracer = otel.Tracer("service/ledger")

// Appointment creation channels, used as a metrics label.
const (
	ChannelAdmin   = "admin"
	ChannelBooking = "booking"
)

// LedgerStore is what the ledger needs from persistence.
type LedgerStore interface {
	port.TxRunner
	port.AppointmentStore
	refSource
}

// LedgerOptions tunes the ledger.
type LedgerOptions struct {
	// Policy decides which status changes are allowed. Nil means
	// domain.PermissivePolicy.
	Policy domain.TransitionPolicy
	// DetectOverlaps rejects a new appointment that overlaps an active one
	// of the same professional.
	DetectOverlaps bool
	// Location is the salon timezone used for "today". Nil means UTC.
	Location *time.Location
	// Now is the clock. Nil means time.Now.
	Now Clock
}

// Ledger owns appointments and derives the financial ledger and client
// loyalty from their completions.
type Ledger struct {
	store          LedgerStore
	policy         domain.TransitionPolicy
	detectOverlaps bool
	loc            *time.Location
	now            Clock
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewLedger creates the ledger with all dependencies injected.
func NewLedger(store LedgerStore, opts LedgerOptions, metrics *observability.Metrics, logger *zap.Logger) *Ledger {
	l := &Ledger{
		store:          store,
		policy:         opts.Policy,
		detectOverlaps: opts.DetectOverlaps,
		loc:            opts.Location,
		now:            opts.Now,
		metrics:        metrics,
		logger:         logger,
	}
	if l.policy == nil {
		l.policy = domain.PermissivePolicy{}
	}
	if l.loc == nil {
		l.loc = time.UTC
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// Location is the salon timezone.
func (l *Ledger) Location() *time.Location { return l.loc }

// Now is the ledger clock.
func (l *Ledger) Now() time.Time { return l.now() }

// ============================================================
// Creation
// ============================================================

// Create books a new appointment. Its total is the sum of the prices of
// the referenced services found in the catalog at this moment; unknown
// service ids contribute zero. The status is always SCHEDULED.
func (l *Ledger) Create(ctx context.Context, in domain.AppointmentInput, channel string) (*domain.Appointment, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return l.create(ctx, in, channel, nil)
}

// createHook runs inside the creation transaction before the appointment is
// stored. It may fill in appt.ClientID; an error aborts the creation and
// rolls back anything the hook wrote.
type createHook func(ctx context.Context, tx port.LedgerTx, appt *domain.Appointment) error

func (l *Ledger) create(ctx context.Context, in domain.AppointmentInput, channel string, hook createHook) (*domain.Appointment, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.Create")
	defer span.End()

	services, err := l.store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	catalog := make(map[string]domain.Service, len(services))
	for _, s := range services {
		catalog[s.ID] = s
	}

	appt := &domain.Appointment{
		ID:             uuid.NewString(),
		ClientID:       in.ClientID,
		ProfessionalID: in.ProfessionalID,
		ServiceIDs:     append([]string(nil), in.ServiceIDs...),
		DateTime:       in.DateTime,
		Status:         domain.StatusScheduled,
		TotalValue:     totalValue(in.ServiceIDs, catalog),
		Notes:          in.Notes,
		CreatedAt:      l.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("appointment.id", appt.ID),
		attribute.String("professional.id", appt.ProfessionalID),
	)

	err = l.store.InTx(ctx, func(tx port.LedgerTx) error {
		if hook != nil {
			if err := hook(ctx, tx, appt); err != nil {
				return err
			}
		}
		if l.detectOverlaps {
			if err := l.checkOverlap(ctx, tx, appt, catalog); err != nil {
				return err
			}
		}
		return tx.CreateAppointment(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.IncrAppointmentCreated(channel)
	}
	l.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("client_id", appt.ClientID),
		zap.String("professional_id", appt.ProfessionalID),
		zap.Time("date_time", appt.DateTime),
		zap.String("total", domain.FormatBRL(appt.TotalValue)),
		zap.String("channel", channel),
	)
	return appt, nil
}

func (l *Ledger) checkOverlap(ctx context.Context, tx port.LedgerTx, appt *domain.Appointment, catalog map[string]domain.Service) error {
	existing, err := tx.ListAppointments(ctx, domain.AppointmentFilter{ProfessionalID: appt.ProfessionalID})
	if err != nil {
		return err
	}
	start := appt.DateTime
	end := start.Add(occupiedFor(appt.ServiceIDs, catalog))
	for _, other := range existing {
		if !other.Status.IsActive() {
			continue
		}
		oStart := other.DateTime
		oEnd := oStart.Add(occupiedFor(other.ServiceIDs, catalog))
		if start.Before(oEnd) && oStart.Before(end) {
			return &domain.ErrConflict{Message: fmt.Sprintf(
				"professional %s is already booked from %s to %s",
				appt.ProfessionalID, oStart.In(l.loc).Format("15:04"), oEnd.In(l.loc).Format("15:04"),
			)}
		}
	}
	return nil
}

func totalValue(serviceIDs []string, catalog map[string]domain.Service) (total decimal.Decimal) {
	for _, id := range serviceIDs {
		if s, ok := catalog[id]; ok {
			total = total.Add(s.Price)
		}
	}
	return total
}

// occupiedFor is the summed duration of the services, or the default
// appointment length when none of them carries one.
func occupiedFor(serviceIDs []string, catalog map[string]domain.Service) time.Duration {
	minutes := 0
	for _, id := range serviceIDs {
		minutes += catalog[id].DurationMinutes
	}
	if minutes <= 0 {
		minutes = domain.DefaultAppointmentMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// ============================================================
// Status changes
// ============================================================

// SetStatus moves an appointment to the given status. Only a change to
// COMPLETED posts to the ledger, and an appointment is posted at most once.
// Leaving COMPLETED never reverses a posting.
func (l *Ledger) SetStatus(ctx context.Context, id string, to domain.AppointmentStatus) (*domain.StatusChangeResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.SetStatus")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id), attribute.String("status.to", string(to)))

	if !to.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown appointment status %q", to)}
	}
	return l.changeStatus(ctx, id, func(domain.AppointmentStatus) domain.AppointmentStatus { return to })
}

// Advance applies the agenda's click-to-advance cycle
// SCHEDULED -> CONFIRMED -> COMPLETED -> SCHEDULED through the same rules
// as SetStatus.
func (l *Ledger) Advance(ctx context.Context, id string) (*domain.StatusChangeResult, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.Advance")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id))

	return l.changeStatus(ctx, id, domain.NextCycleStatus)
}

func (l *Ledger) changeStatus(ctx context.Context, id string, target func(domain.AppointmentStatus) domain.AppointmentStatus) (*domain.StatusChangeResult, error) {
	var res *domain.StatusChangeResult

	err := l.store.InTx(ctx, func(tx port.LedgerTx) error {
		appt, err := tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}
		from := appt.Status
		to := target(from)
		if err := l.policy.Check(from, to); err != nil {
			return err
		}

		appt.Status = to
		res = &domain.StatusChangeResult{PreviousStatus: from, Outcome: domain.OutcomeNone}

		if to == domain.StatusCompleted {
			if err := l.post(ctx, tx, appt, res); err != nil {
				return err
			}
		}

		if err := tx.UpdateAppointment(ctx, appt); err != nil {
			return err
		}
		res.Appointment = *appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.observe(res)
	return res, nil
}

// post derives the income transaction and the client stats delta of a
// completion. It runs inside the status change transaction.
func (l *Ledger) post(ctx context.Context, tx port.LedgerTx, appt *domain.Appointment, res *domain.StatusChangeResult) error {
	if appt.IsPosted() {
		res.Outcome = domain.OutcomeAlreadyPosted
		return nil
	}

	client, err := tx.GetClient(ctx, appt.ClientID)
	if isNotFound(err) {
		res.Outcome = domain.OutcomeSkippedNoClient
		return nil
	}
	if err != nil {
		return err
	}

	settings, err := tx.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	now := l.now()
	txn := &domain.Transaction{
		ID:            uuid.NewString(),
		Date:          now.UTC(),
		Type:          domain.TransactionIncome,
		Value:         appt.TotalValue,
		Description:   domain.ServiceIncomeDescription(client.Name),
		Category:      domain.ServiceIncomeCategory,
		AppointmentID: appt.ID,
	}
	if err := tx.AppendTransaction(ctx, txn); err != nil {
		var dup *domain.ErrDuplicate
		if errors.As(err, &dup) {
			res.Outcome = domain.OutcomeAlreadyPosted
			return nil
		}
		return fmt.Errorf("posting income: %w", err)
	}

	points := domain.LoyaltyPoints(appt.TotalValue, settings.PointsPerCurrency)
	client.TotalSpent = client.TotalSpent.Add(appt.TotalValue)
	client.LoyaltyPoints += points
	client.LastVisit = now.In(l.loc).Format(DateLayout)
	if err := tx.UpdateClient(ctx, client); err != nil {
		return fmt.Errorf("updating client stats: %w", err)
	}

	appt.PostedTransactionID = txn.ID
	res.Posted = true
	res.Outcome = domain.OutcomePosted
	res.Transaction = txn
	res.PointsEarned = points
	return nil
}

func (l *Ledger) observe(res *domain.StatusChangeResult) {
	a := res.Appointment
	if l.metrics != nil {
		l.metrics.IncrStatusTransition(a.Status)
		if a.Status == domain.StatusCompleted {
			l.metrics.RecordPosting(res.Outcome, a.TotalValue)
		}
	}

	fields := []zap.Field{
		zap.String("appointment_id", a.ID),
		zap.String("from", string(res.PreviousStatus)),
		zap.String("to", string(a.Status)),
		zap.String("outcome", string(res.Outcome)),
	}
	switch res.Outcome {
	case domain.OutcomePosted:
		l.logger.Info("appointment completed, income posted", append(fields,
			zap.String("value", domain.FormatBRL(a.TotalValue)),
			zap.Int64("points", res.PointsEarned),
		)...)
	case domain.OutcomeSkippedNoClient:
		l.logger.Warn("appointment completed without a client, nothing posted", append(fields,
			zap.String("client_id", a.ClientID),
		)...)
	default:
		l.logger.Info("appointment status changed", fields...)
	}
}

// ============================================================
// Queries
// ============================================================

// AppointmentQuery narrows List. Date is YYYY-MM-DD in the salon timezone;
// empty fields mean "any".
type AppointmentQuery struct {
	Date           string
	ProfessionalID string
	ClientID       string
}

// Get returns one appointment with its references resolved.
func (l *Ledger) Get(ctx context.Context, id string) (*domain.AppointmentView, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.Get")
	defer span.End()

	appt, err := l.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	r, err := loadRefs(ctx, l.store)
	if err != nil {
		return nil, err
	}
	v := r.view(*appt)
	return &v, nil
}

// List returns matching appointments in start time order.
func (l *Ledger) List(ctx context.Context, q AppointmentQuery) ([]domain.AppointmentView, error) {
	ctx, span := ledgerTracer.Start(ctx, "Ledger.List")
	defer span.End()

	f := domain.AppointmentFilter{ProfessionalID: q.ProfessionalID, ClientID: q.ClientID}
	if q.Date != "" {
		day, err := parseDay(q.Date, l.now(), l.loc)
		if err != nil {
			return nil, err
		}
		w := dayFilter(day)
		f.From, f.To = w.From, w.To
	}

	appts, err := l.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, err
	}
	sortByTime(appts)

	r, err := loadRefs(ctx, l.store)
	if err != nil {
		return nil, err
	}
	return r.views(appts), nil
}
