package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/memory"
)

func ptr[T any](v T) *T { return &v }

func TestSettings_PartialUpdate(t *testing.T) {
	c := newBookingCache(t)
	svc := NewSettingsService(newSeededStore(t), c, zap.NewNop())
	ctx := context.Background()
	c.Set("beautypro-demo", &domain.BookingCatalog{})

	ppc := domain.FormValue("2.5")
	got, err := svc.Update(ctx, domain.SettingsUpdate{
		SalonName:         ptr("Studio Bela"),
		PointsPerCurrency: &ppc,
		BookingLinkSlug:   ptr("studio-bela-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Studio Bela", got.SalonName)
	assert.True(t, got.PointsPerCurrency.Equal(money("2.5")))
	assert.Equal(t, "studio-bela-2", got.BookingLinkSlug)
	assert.Equal(t, "11999990000", got.Phone, "untouched fields keep their value")
	assert.Equal(t, 0, c.Len())

	stored, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, *got, *stored)
}

func TestSettings_RejectsInvalidValues(t *testing.T) {
	store := newSeededStore(t)
	svc := NewSettingsService(store, nil, zap.NewNop())
	ctx := context.Background()

	neg := domain.FormValue("-1")
	tests := []struct {
		name  string
		in    domain.SettingsUpdate
		field string
	}{
		{"negative ratio", domain.SettingsUpdate{PointsPerCurrency: &neg}, "pointsPerCurrency"},
		{"uppercase slug", domain.SettingsUpdate{BookingLinkSlug: ptr("Studio")}, "bookingLinkSlug"},
		{"slug with space", domain.SettingsUpdate{BookingLinkSlug: ptr("meu salao")}, "bookingLinkSlug"},
		{"empty slug", domain.SettingsUpdate{BookingLinkSlug: ptr("")}, "bookingLinkSlug"},
		{"blank name", domain.SettingsUpdate{SalonName: ptr("  ")}, "salonName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.in)
			var ve *domain.ErrValidation
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "beautypro-demo", s.BookingLinkSlug)
}

// racingSettingsStore lets another settings update land while an update is
// in flight.
type racingSettingsStore struct {
	*memory.Store
	other func()
}

func (s *racingSettingsStore) race() {
	if s.other != nil {
		other := s.other
		s.other = nil
		other()
	}
}

func (s *racingSettingsStore) GetSettings(ctx context.Context) (*domain.Settings, error) {
	settings, err := s.Store.GetSettings(ctx)
	s.race()
	return settings, err
}

func (s *racingSettingsStore) EditSettings(ctx context.Context, fn func(s *domain.Settings) error) (*domain.Settings, error) {
	s.race()
	return s.Store.EditSettings(ctx, fn)
}

func TestSettings_InterleavedUpdatesKeepBothFields(t *testing.T) {
	inner := newSeededStore(t)
	store := &racingSettingsStore{Store: inner}
	svc := NewSettingsService(store, nil, zap.NewNop())
	ctx := context.Background()

	store.other = func() {
		_, err := NewSettingsService(inner, nil, zap.NewNop()).Update(ctx, domain.SettingsUpdate{
			LoyaltyRewardDescription: ptr("Escova grátis a cada 100 pontos"),
		})
		require.NoError(t, err)
	}
	_, err := svc.Update(ctx, domain.SettingsUpdate{SalonName: ptr("Studio Bela")})
	require.NoError(t, err)
	assert.Nil(t, store.other, "the other update ran during this one")

	got, err := inner.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Studio Bela", got.SalonName)
	assert.Equal(t, "Escova grátis a cada 100 pontos", got.LoyaltyRewardDescription)
}

func TestSettings_ConcurrentUpdates(t *testing.T) {
	store := newSeededStore(t)
	svc := NewSettingsService(store, nil, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Update(ctx, domain.SettingsUpdate{SalonName: ptr("Studio Bela")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Update(ctx, domain.SettingsUpdate{Phone: ptr("11955550000")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Studio Bela", got.SalonName)
	assert.Equal(t, "11955550000", got.Phone)
}

func TestSettings_FailedUpdateSavesNothing(t *testing.T) {
	store := newSeededStore(t)
	svc := NewSettingsService(store, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, domain.SettingsUpdate{
		SalonName:       ptr("Studio Bela"),
		BookingLinkSlug: ptr("Not A Slug"),
	})
	var ve *domain.ErrValidation
	require.ErrorAs(t, err, &ve)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BeautyPro Demo Salon", got.SalonName)
}
