package service

import (
	"context"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

var settingsTracer = otel.Tracer("service/settings")

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// SettingsService reads and updates the salon profile.
type SettingsService struct {
	store        port.SettingsStore
	bookingCache port.Cache[*domain.BookingCatalog]
	logger       *zap.Logger
}

// NewSettingsService creates the settings service. bookingCache may be nil.
func NewSettingsService(store port.SettingsStore, bookingCache port.Cache[*domain.BookingCatalog], logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, bookingCache: bookingCache, logger: logger}
}

func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.Get")
	defer span.End()

	return s.store.GetSettings(ctx)
}

// Update applies the non-nil fields of u to the stored settings under the
// store's writer lock. Every field is checked before anything is saved.
func (s *SettingsService) Update(ctx context.Context, u domain.SettingsUpdate) (*domain.Settings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.Update")
	defer span.End()

	next, err := s.store.EditSettings(ctx, func(next *domain.Settings) error {
		return applySettingsUpdate(next, u)
	})
	if err != nil {
		return nil, err
	}
	if s.bookingCache != nil {
		s.bookingCache.Purge()
	}
	s.logger.Info("settings updated",
		zap.String("salon", next.SalonName),
		zap.String("slug", next.BookingLinkSlug),
		zap.String("points_per_currency", next.PointsPerCurrency.String()),
	)
	return next, nil
}

func applySettingsUpdate(next *domain.Settings, u domain.SettingsUpdate) error {
	if u.SalonName != nil {
		name := strings.TrimSpace(*u.SalonName)
		if name == "" {
			return &domain.ErrValidation{Field: "salonName", Message: "is required"}
		}
		next.SalonName = name
	}
	if u.Phone != nil {
		next.Phone = *u.Phone
	}
	if u.Address != nil {
		next.Address = *u.Address
	}
	if u.LogoURL != nil {
		next.LogoURL = *u.LogoURL
	}
	if u.LoyaltyEnabled != nil {
		next.LoyaltyEnabled = *u.LoyaltyEnabled
	}
	if u.PointsPerCurrency != nil {
		ppc, err := parseMoney("pointsPerCurrency", *u.PointsPerCurrency)
		if err != nil {
			return err
		}
		next.PointsPerCurrency = ppc
	}
	if u.LoyaltyRewardDescription != nil {
		next.LoyaltyRewardDescription = *u.LoyaltyRewardDescription
	}
	if u.BookingLinkSlug != nil {
		slug := strings.TrimSpace(*u.BookingLinkSlug)
		if !slugPattern.MatchString(slug) {
			return &domain.ErrValidation{Field: "bookingLinkSlug", Message: "may only contain lowercase letters, digits and dashes"}
		}
		next.BookingLinkSlug = slug
	}
	return nil
}
