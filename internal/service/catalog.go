package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var catalogTracer = otel.Tracer("service/catalog")

// CatalogService manages the services the salon offers.
type CatalogService struct {
	store        port.CatalogStore
	bookingCache port.Cache[*domain.BookingCatalog]
	logger       *zap.Logger
}

// NewCatalogService creates the catalog service. bookingCache may be nil.
func NewCatalogService(store port.CatalogStore, bookingCache port.Cache[*domain.BookingCatalog], logger *zap.Logger) *CatalogService {
	return &CatalogService{store: store, bookingCache: bookingCache, logger: logger}
}

// List returns the catalog, optionally only ACTIVE services.
func (s *CatalogService) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	all, err := s.store.ListServices(ctx)
	if err != nil || !activeOnly {
		return all, err
	}
	active := make([]domain.Service, 0, len(all))
	for _, svc := range all {
		if svc.Status == domain.ServiceActive {
			active = append(active, svc)
		}
	}
	return active, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Get")
	defer span.End()

	return s.store.GetService(ctx, id)
}

// Create adds a service. Price and duration are parsed from form text and
// rejected before anything is stored.
func (s *CatalogService) Create(ctx context.Context, in domain.ServiceInput) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Create")
	defer span.End()

	svc, err := buildService(uuid.NewString(), in)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	s.invalidate()
	s.logger.Info("service created", zap.String("service_id", svc.ID), zap.String("name", svc.Name))
	return svc, nil
}

// Update replaces a service. Existing appointments keep their frozen totals.
func (s *CatalogService) Update(ctx context.Context, id string, in domain.ServiceInput) (*domain.Service, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("service.id", id))

	svc, err := buildService(id, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateService(ctx, svc); err != nil {
		return nil, err
	}
	s.invalidate()
	return svc, nil
}

// Delete removes a service. Appointments that reference it are untouched.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Delete")
	defer span.End()

	if err := s.store.DeleteService(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("service deleted", zap.String("service_id", id))
	return nil
}

func (s *CatalogService) invalidate() {
	if s.bookingCache != nil {
		s.bookingCache.Purge()
	}
}

func buildService(id string, in domain.ServiceInput) (*domain.Service, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	price, err := parseMoney("price", in.Price)
	if err != nil {
		return nil, err
	}
	duration, err := parsePositiveInt("durationMinutes", in.DurationMinutes)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.ServiceActive
	}
	return &domain.Service{
		ID:              id,
		Name:            in.Name,
		Price:           price,
		DurationMinutes: duration,
		Category:        in.Category,
		Description:     in.Description,
		Status:          status,
	}, nil
}
