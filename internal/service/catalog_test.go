package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/cache"
)

func clockAt(t time.Time) Clock { return func() time.Time { return t } }

func newBookingCache(t *testing.T) *cache.InMemory[*domain.BookingCatalog] {
	t.Helper()
	c := cache.New[*domain.BookingCatalog](time.Minute)
	t.Cleanup(c.Close)
	return c
}

func TestCatalog_CreateParsesFormText(t *testing.T) {
	svc := NewCatalogService(newSeededStore(t), nil, zap.NewNop())

	got, err := svc.Create(context.Background(), domain.ServiceInput{
		Name:            "Escova",
		Price:           "45,50",
		DurationMinutes: "30",
		Category:        "Geral",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.True(t, got.Price.Equal(money("45.50")))
	assert.Equal(t, 30, got.DurationMinutes)
	assert.Equal(t, domain.ServiceActive, got.Status)
}

func TestCatalog_RejectsBadNumbersBeforeWriting(t *testing.T) {
	store := newSeededStore(t)
	svc := NewCatalogService(store, nil, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name  string
		in    domain.ServiceInput
		field string
	}{
		{"non-numeric price", domain.ServiceInput{Name: "X", Price: "abc", DurationMinutes: "30", Category: "Geral"}, "price"},
		{"negative price", domain.ServiceInput{Name: "X", Price: "-1", DurationMinutes: "30", Category: "Geral"}, "price"},
		{"zero duration", domain.ServiceInput{Name: "X", Price: "10", DurationMinutes: "0", Category: "Geral"}, "durationMinutes"},
		{"fractional duration", domain.ServiceInput{Name: "X", Price: "10", DurationMinutes: "1.5", Category: "Geral"}, "durationMinutes"},
		{"missing name", domain.ServiceInput{Price: "10", DurationMinutes: "30", Category: "Geral"}, "name"},
		{"bad status", domain.ServiceInput{Name: "X", Price: "10", DurationMinutes: "30", Category: "Geral", Status: "PAUSED"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			var ve *domain.ErrValidation
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestCatalog_UpdateKeepsFrozenTotals(t *testing.T) {
	store := newSeededStore(t)
	svc := NewCatalogService(store, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, "s1", domain.ServiceInput{Name: "Corte Feminino", Price: "150", DurationMinutes: "60", Category: "Cabelo"})
	require.NoError(t, err)

	a1, err := store.GetAppointment(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a1.TotalValue.Equal(money("120")))

	_, err = svc.Update(ctx, "missing", domain.ServiceInput{Name: "X", Price: "1", DurationMinutes: "1", Category: "Geral"})
	assert.True(t, isNotFound(err))
}

func TestCatalog_ListActiveOnly(t *testing.T) {
	svc := NewCatalogService(newSeededStore(t), nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Update(ctx, "s6", domain.ServiceInput{Name: "Manicure", Price: "40", DurationMinutes: "45", Category: "Unhas", Status: domain.ServiceInactive})
	require.NoError(t, err)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 5)
	for _, s := range active {
		assert.NotEqual(t, "s6", s.ID)
	}
}

func TestCatalog_MutationsPurgeBookingCache(t *testing.T) {
	c := newBookingCache(t)
	svc := NewCatalogService(newSeededStore(t), c, zap.NewNop())
	ctx := context.Background()

	c.Set("beautypro-demo", &domain.BookingCatalog{})
	require.NoError(t, svc.Delete(ctx, "s6"))
	assert.Equal(t, 0, c.Len())

	c.Set("beautypro-demo", &domain.BookingCatalog{})
	_, err := svc.Create(ctx, domain.ServiceInput{Name: "Escova", Price: "45", DurationMinutes: "30", Category: "Geral"})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestProfessionals_CreatePicksPresetColor(t *testing.T) {
	svc := NewProfessionalService(newSeededStore(t), nil, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Create(ctx, domain.ProfessionalInput{Name: "Bia"})
	require.NoError(t, err)
	assert.Contains(t, PresetColors, p.Color)
	assert.NotNil(t, p.Specialties)

	p, err = svc.Create(ctx, domain.ProfessionalInput{Name: "Léo", Color: "#123abc", Specialties: []string{"s1"}})
	require.NoError(t, err)
	assert.Equal(t, "#123abc", p.Color)

	_, err = svc.Create(ctx, domain.ProfessionalInput{Name: "Zé", Color: "red"})
	var ve *domain.ErrValidation
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "color", ve.Field)
}

func TestProfessionals_UpdateKeepsColorAndDeleteKeepsAppointments(t *testing.T) {
	store := newSeededStore(t)
	svc := NewProfessionalService(store, nil, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Update(ctx, "p1", domain.ProfessionalInput{Name: "Ana S."})
	require.NoError(t, err)
	assert.Equal(t, "#fecdd3", p.Color)
	assert.Equal(t, "Ana S.", p.Name)

	require.NoError(t, svc.Delete(ctx, "p1"))
	_, err = store.GetAppointment(ctx, "a1")
	assert.NoError(t, err)
	assert.True(t, isNotFound(svc.Delete(ctx, "p1")))
}
