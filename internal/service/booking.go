package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/messaging"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var bookingTracer = otel.Tracer("service/booking")

const bookingCacheName = "booking_catalog"

// BookingStore is what the public booking page reads and writes.
type BookingStore interface {
	GetSettings(ctx context.Context) (*domain.Settings, error)
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListProfessionals(ctx context.Context) ([]domain.Professional, error)
	GetProfessional(ctx context.Context, id string) (*domain.Professional, error)
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
}

// BookingService serves the public self-booking page of the salon.
type BookingService struct {
	store   BookingStore
	ledger  *Ledger
	cache   port.Cache[*domain.BookingCatalog]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewBookingService creates the booking service. Appointments go through
// ledger so booking follows the same creation rules as the admin panel.
func NewBookingService(store BookingStore, ledger *Ledger, cache port.Cache[*domain.BookingCatalog], metrics *observability.Metrics, logger *zap.Logger) *BookingService {
	return &BookingService{store: store, ledger: ledger, cache: cache, metrics: metrics, logger: logger}
}

// Catalog returns the salon profile, active services and professionals for
// slug. Results are cached per slug.
func (s *BookingService) Catalog(ctx context.Context, slug string) (*domain.BookingCatalog, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.Catalog")
	defer span.End()
	span.SetAttributes(attribute.String("slug", slug))

	if s.cache != nil {
		if cat, ok := s.cache.Get(slug); ok {
			s.metrics.IncrCacheHit(bookingCacheName)
			return cat, nil
		}
		s.metrics.IncrCacheMiss(bookingCacheName)
	}

	settings, err := s.resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	professionals, err := s.store.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}

	cat := &domain.BookingCatalog{
		SalonName:     settings.SalonName,
		Phone:         settings.Phone,
		Address:       settings.Address,
		LogoURL:       settings.LogoURL,
		Services:      make([]domain.Service, 0, len(services)),
		Professionals: professionals,
	}
	for _, svc := range services {
		if svc.Status == domain.ServiceActive {
			cat.Services = append(cat.Services, svc)
		}
	}
	if s.cache != nil {
		s.cache.Set(slug, cat)
	}
	return cat, nil
}

// Slots reports which of the fixed booking slots are free on date
// (YYYY-MM-DD, empty for tomorrow). With no professionalID a slot is free
// while at least one professional is free.
func (s *BookingService) Slots(ctx context.Context, slug, date, professionalID string) (*domain.SlotsResponse, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.Slots")
	defer span.End()

	if _, err := s.resolve(ctx, slug); err != nil {
		return nil, err
	}
	day, err := s.bookingDay(date)
	if err != nil {
		return nil, err
	}

	var staff []string
	if professionalID != "" {
		if _, err := s.store.GetProfessional(ctx, professionalID); err != nil {
			return nil, err
		}
		staff = []string{professionalID}
	} else {
		profs, err := s.store.ListProfessionals(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range profs {
			staff = append(staff, p.ID)
		}
	}

	appts, err := s.store.ListAppointments(ctx, dayFilter(day))
	if err != nil {
		return nil, err
	}
	busy := busyHours(appts, day.Location())

	resp := &domain.SlotsResponse{
		Date:           day.Format(DateLayout),
		ProfessionalID: professionalID,
		Slots:          make([]domain.SlotAvailability, 0, len(domain.BookingSlots)),
	}
	for _, slot := range domain.BookingSlots {
		start, _ := slotTime(day, slot)
		free := false
		for _, id := range staff {
			if !busy[busyKey{id, start.Hour()}] {
				free = true
				break
			}
		}
		resp.Slots = append(resp.Slots, domain.SlotAvailability{Time: slot, Available: free})
	}
	return resp, nil
}

// Book creates an appointment from the public page. The client is matched
// by phone digits or created.
func (s *BookingService) Book(ctx context.Context, slug string, req domain.BookingRequest) (*domain.BookingConfirmation, error) {
	ctx, span := bookingTracer.Start(ctx, "BookingService.Book")
	defer span.End()

	if _, err := s.resolve(ctx, slug); err != nil {
		return nil, err
	}
	if err := validateInput(req); err != nil {
		return nil, err
	}
	if messaging.Digits(req.Phone) == "" {
		return nil, &domain.ErrValidation{Field: "phone", Message: "must contain digits"}
	}
	svc, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.Status != domain.ServiceActive {
		return nil, &domain.ErrValidation{Field: "serviceId", Message: "service is not available for booking"}
	}
	prof, err := s.store.GetProfessional(ctx, req.ProfessionalID)
	if err != nil {
		return nil, err
	}
	day, err := s.bookingDay(req.Date)
	if err != nil {
		return nil, err
	}
	start, ok := slotTime(day, req.Slot)
	if !ok {
		return nil, &domain.ErrValidation{Field: "slot", Message: "must be one of: " + strings.Join(domain.BookingSlots, " ")}
	}

	var (
		client  *domain.Client
		created bool
	)
	// The slot check and the client lookup share the creation transaction,
	// so concurrent bookings cannot take the same slot or duplicate a client.
	appt, err := s.ledger.create(ctx, domain.AppointmentInput{
		ProfessionalID: prof.ID,
		ServiceIDs:     []string{svc.ID},
		DateTime:       start,
		Notes:          "Agendamento online",
	}, ChannelBooking, func(ctx context.Context, tx port.LedgerTx, appt *domain.Appointment) error {
		appts, err := tx.ListAppointments(ctx, dayFilter(day))
		if err != nil {
			return err
		}
		if busyHours(appts, day.Location())[busyKey{prof.ID, start.Hour()}] {
			return &domain.ErrConflict{Message: fmt.Sprintf("%s is already booked at %s", prof.Name, req.Slot)}
		}
		client, created, err = findOrCreateClient(ctx, tx, req.Name, req.Phone)
		if err != nil {
			return err
		}
		appt.ClientID = client.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("client created from online booking", zap.String("client_id", client.ID))
	}
	s.logger.Info("online booking",
		zap.String("appointment_id", appt.ID),
		zap.String("client_id", client.ID),
		zap.String("slot", start.Format(time.RFC3339)),
	)
	return &domain.BookingConfirmation{
		AppointmentID:    appt.ID,
		ClientID:         client.ID,
		DateTime:         start.Format(time.RFC3339),
		ServiceName:      svc.Name,
		ProfessionalName: prof.Name,
		TotalValue:       domain.FormatBRL(appt.TotalValue),
	}, nil
}

// resolve returns the settings when slug is the salon's booking slug.
func (s *BookingService) resolve(ctx context.Context, slug string) (*domain.Settings, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if slug == "" || settings.BookingLinkSlug != slug {
		return nil, &domain.ErrNotFound{Resource: "salon", ID: slug}
	}
	return settings, nil
}

// bookingDay parses date in the salon timezone; empty means tomorrow.
func (s *BookingService) bookingDay(date string) (time.Time, error) {
	if date == "" {
		today, _ := parseDay("", s.ledger.Now(), s.ledger.Location())
		return today.AddDate(0, 0, 1), nil
	}
	return parseDay(date, s.ledger.Now(), s.ledger.Location())
}

type busyKey struct {
	professionalID string
	hour           int
}

// busyHours marks the local start hours taken by the active appointments.
func busyHours(appts []domain.Appointment, loc *time.Location) map[busyKey]bool {
	busy := make(map[busyKey]bool, len(appts))
	for _, a := range appts {
		if a.Status.IsActive() {
			busy[busyKey{a.ProfessionalID, a.DateTime.In(loc).Hour()}] = true
		}
	}
	return busy
}

// clientFinder is the part of a store findOrCreateClient needs.
type clientFinder interface {
	ListClients(ctx context.Context) ([]domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error
}

// findOrCreateClient matches a client by phone digits, creating one when
// none matches. It reports whether the client was created.
func findOrCreateClient(ctx context.Context, store clientFinder, name, phone string) (*domain.Client, bool, error) {
	clients, err := store.ListClients(ctx)
	if err != nil {
		return nil, false, err
	}
	want := messaging.Digits(phone)
	for i := range clients {
		if messaging.Digits(clients[i].Phone) == want {
			return &clients[i], false, nil
		}
	}
	c := newClient(name, phone)
	if err := store.CreateClient(ctx, c); err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// slotTime places an "HH:MM" booking slot on day.
func slotTime(day time.Time, slot string) (time.Time, bool) {
	for _, allowed := range domain.BookingSlots {
		if allowed != slot {
			continue
		}
		t, err := time.Parse("15:04", slot)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), true
	}
	return time.Time{}, false
}
