package service

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var professionalTracer = otel.Tracer("service/professionals")

// PresetColors is the palette offered for calendar colors.
var PresetColors = []string{
	"#ef4444", "#f97316", "#f59e0b", "#84cc16",
	"#10b981", "#06b6d4", "#3b82f6", "#6366f1",
	"#8b5cf6", "#d946ef", "#f43f5e", "#64748b",
}

// ProfessionalService manages staff who perform services.
type ProfessionalService struct {
	store        port.ProfessionalStore
	bookingCache port.Cache[*domain.BookingCatalog]
	logger       *zap.Logger
}

// NewProfessionalService creates the professional service. bookingCache may be nil.
func NewProfessionalService(store port.ProfessionalStore, bookingCache port.Cache[*domain.BookingCatalog], logger *zap.Logger) *ProfessionalService {
	return &ProfessionalService{store: store, bookingCache: bookingCache, logger: logger}
}

func (s *ProfessionalService) List(ctx context.Context) ([]domain.Professional, error) {
	ctx, span := professionalTracer.Start(ctx, "ProfessionalService.List")
	defer span.End()

	return s.store.ListProfessionals(ctx)
}

func (s *ProfessionalService) Get(ctx context.Context, id string) (*domain.Professional, error) {
	ctx, span := professionalTracer.Start(ctx, "ProfessionalService.Get")
	defer span.End()

	return s.store.GetProfessional(ctx, id)
}

// Create adds a professional. A missing color is picked from PresetColors.
func (s *ProfessionalService) Create(ctx context.Context, in domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := professionalTracer.Start(ctx, "ProfessionalService.Create")
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	p := buildProfessional(uuid.NewString(), in)
	if p.Color == "" {
		p.Color = PresetColors[rand.Intn(len(PresetColors))]
	}
	if err := s.store.CreateProfessional(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate()
	s.logger.Info("professional created", zap.String("professional_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// Update replaces a professional. A missing color keeps the current one.
func (s *ProfessionalService) Update(ctx context.Context, id string, in domain.ProfessionalInput) (*domain.Professional, error) {
	ctx, span := professionalTracer.Start(ctx, "ProfessionalService.Update")
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	current, err := s.store.GetProfessional(ctx, id)
	if err != nil {
		return nil, err
	}
	p := buildProfessional(id, in)
	if p.Color == "" {
		p.Color = current.Color
	}
	if err := s.store.UpdateProfessional(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate()
	return p, nil
}

// Delete removes a professional. Their appointments stay and render the
// professional as unknown.
func (s *ProfessionalService) Delete(ctx context.Context, id string) error {
	ctx, span := professionalTracer.Start(ctx, "ProfessionalService.Delete")
	defer span.End()

	if err := s.store.DeleteProfessional(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info("professional deleted", zap.String("professional_id", id))
	return nil
}

func (s *ProfessionalService) invalidate() {
	if s.bookingCache != nil {
		s.bookingCache.Purge()
	}
}

func buildProfessional(id string, in domain.ProfessionalInput) *domain.Professional {
	specialties := in.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return &domain.Professional{
		ID:          id,
		Name:        in.Name,
		PhotoURL:    in.PhotoURL,
		Color:       in.Color,
		Specialties: append([]string(nil), specialties...),
	}
}
