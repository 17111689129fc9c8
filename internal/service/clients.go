package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/messaging"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var clientTracer = otel.Tracer("service/clients")

// ClientStore is what the client service reads and writes.
type ClientStore interface {
	port.ClientStore
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	refSource
}

// ClientService manages the salon's client records. It never changes spend
// or loyalty points; only the ledger does.
type ClientService struct {
	store  ClientStore
	logger *zap.Logger
}

// NewClientService creates the client service.
func NewClientService(store ClientStore, logger *zap.Logger) *ClientService {
	return &ClientService{store: store, logger: logger}
}

// List returns every client, or those whose name contains query
// (case-insensitive) or whose phone contains it.
func (s *ClientService) List(ctx context.Context, query string) ([]domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.List")
	defer span.End()

	all, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	needle := strings.ToLower(query)
	digits := messaging.Digits(query)
	out := make([]domain.Client, 0, len(all))
	for _, c := range all {
		switch {
		case strings.Contains(strings.ToLower(c.Name), needle):
		case strings.Contains(c.Phone, query):
		case digits != "" && strings.Contains(messaging.Digits(c.Phone), digits):
		default:
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Get")
	defer span.End()

	return s.store.GetClient(ctx, id)
}

// Create registers a new client tagged "Novo" with no spend and no visits.
func (s *ClientService) Create(ctx context.Context, in domain.ClientInput) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Create")
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	c := newClient(in.Name, in.Phone)
	applyClientInput(c, in)
	if len(in.Tags) > 0 {
		c.Tags = append([]string(nil), in.Tags...)
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.String("client_id", c.ID))
	return c, nil
}

// Update edits contact fields, notes and tags on the stored record under
// the store's writer lock, so TotalSpent, LoyaltyPoints and LastVisit always
// keep what the ledger last posted.
func (s *ClientService) Update(ctx context.Context, id string, in domain.ClientInput) (*domain.Client, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.store.EditClient(ctx, id, func(c *domain.Client) error {
		c.Name = in.Name
		c.Phone = in.Phone
		applyClientInput(c, in)
		if in.Tags != nil {
			c.Tags = append([]string(nil), in.Tags...)
		}
		return nil
	})
}

// Delete removes a client. Their appointments stay and render the client as
// unknown; completing one of them posts nothing.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	ctx, span := clientTracer.Start(ctx, "ClientService.Delete")
	defer span.End()

	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

// History returns the client's appointments, newest first.
func (s *ClientService) History(ctx context.Context, id string) ([]domain.AppointmentView, error) {
	ctx, span := clientTracer.Start(ctx, "ClientService.History")
	defer span.End()

	if _, err := s.store.GetClient(ctx, id); err != nil {
		return nil, err
	}
	appts, err := s.store.ListAppointments(ctx, domain.AppointmentFilter{ClientID: id})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].DateTime.After(appts[j].DateTime)
	})
	r, err := loadRefs(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return r.views(appts), nil
}

func newClient(name, phone string) *domain.Client {
	return &domain.Client{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		Phone:      strings.TrimSpace(phone),
		Tags:       []string{domain.DefaultClientTag},
		TotalSpent: decimal.Zero,
	}
}

func applyClientInput(c *domain.Client, in domain.ClientInput) {
	c.Email = in.Email
	c.PhotoURL = in.PhotoURL
	c.BirthDate = in.BirthDate
	c.Allergies = in.Allergies
	c.ColorFormula = in.ColorFormula
	c.Notes = in.Notes
}
