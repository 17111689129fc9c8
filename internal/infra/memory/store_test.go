package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/port"
)

func seeded(t *testing.T) *Store {
	t.Helper()
	s, err := NewSeeded(zap.NewNop(), SeedOptions{
		Now:      time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Location: time.UTC,
	})
	require.NoError(t, err)
	return s
}

func TestSeed_LoadsDemoSalon(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3)
	assert.Equal(t, "c1", clients[0].ID)

	appts, err := s.ListAppointments(ctx, domain.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, appts, 6)
	assert.Equal(t, 9, appts[0].DateTime.Hour())

	txs, err := s.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 3)

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "beautypro-demo", settings.BookingLinkSlug)
	assert.True(t, settings.PointsPerCurrency.Equal(decimal.NewFromInt(1)))
}

func TestStore_CopiesInAndOut(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	c, err := s.GetClient(ctx, "c1")
	require.NoError(t, err)
	c.Tags[0] = "mutated"
	c.Name = "mutated"

	again, err := s.GetClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Mariana Souza", again.Name)
	assert.Equal(t, "VIP", again.Tags[0])
}

func TestStore_NotFound(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	_, err := s.GetAppointment(ctx, "missing")
	var nf *domain.ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "appointment", nf.Resource)

	err = s.UpdateClient(ctx, &domain.Client{ID: "missing"})
	assert.True(t, errors.As(err, &nf))
}

func TestStore_AppendTransactionRefusesSecondPosting(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.AppendTransaction(ctx, &domain.Transaction{
		ID: "t-new", Type: domain.TransactionIncome, Value: decimal.NewFromInt(60), AppointmentID: "a3",
	})
	var dup *domain.ErrDuplicate
	assert.True(t, errors.As(err, &dup))

	// expenses never carry an appointment and always append
	err = s.AppendTransaction(ctx, &domain.Transaction{
		ID: "t-exp", Type: domain.TransactionExpense, Value: decimal.NewFromInt(10),
	})
	assert.NoError(t, err)
}

func TestStore_InTxRollsBackOnError(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx port.LedgerTx) error {
		a, err := tx.GetAppointment(ctx, "a1")
		require.NoError(t, err)
		a.Status = domain.StatusCompleted
		require.NoError(t, tx.UpdateAppointment(ctx, a))
		require.NoError(t, tx.AppendTransaction(ctx, &domain.Transaction{
			ID: "tx", Type: domain.TransactionIncome, Value: a.TotalValue, AppointmentID: a.ID,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := s.GetAppointment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, a.Status)

	txs, err := s.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}

func TestStore_InTxCommits(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	err := s.InTx(ctx, func(tx port.LedgerTx) error {
		c, err := tx.GetClient(ctx, "c2")
		if err != nil {
			return err
		}
		c.LoyaltyPoints += 5
		return tx.UpdateClient(ctx, c)
	})
	require.NoError(t, err)

	c, err := s.GetClient(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(15), c.LoyaltyPoints)
}

func TestStore_EditClient(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	got, err := s.EditClient(ctx, "c1", func(c *domain.Client) error {
		c.ID = "c9"
		c.Notes = "alérgica a amônia"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ID, "the id cannot be edited")

	stored, err := s.GetClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "alérgica a amônia", stored.Notes)
	_, err = s.GetClient(ctx, "c9")
	var nf *domain.ErrNotFound
	assert.ErrorAs(t, err, &nf)

	boom := errors.New("boom")
	_, err = s.EditClient(ctx, "c1", func(c *domain.Client) error {
		c.Notes = "lost"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	stored, err = s.GetClient(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "alérgica a amônia", stored.Notes)

	_, err = s.EditClient(ctx, "nope", func(*domain.Client) error { return nil })
	assert.ErrorAs(t, err, &nf)
}

func TestStore_EditSettings(t *testing.T) {
	s := seeded(t)
	ctx := context.Background()

	got, err := s.EditSettings(ctx, func(settings *domain.Settings) error {
		settings.SalonName = "Studio Bela"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Studio Bela", got.SalonName)

	_, err = s.EditSettings(ctx, func(settings *domain.Settings) error {
		settings.SalonName = "lost"
		return errors.New("boom")
	})
	assert.Error(t, err)

	stored, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Studio Bela", stored.SalonName)
}

func TestStore_CancelledContext(t *testing.T) {
	s := seeded(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListClients(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_UserByEmailIgnoresCase(t *testing.T) {
	s := seeded(t)

	u, err := s.GetUserByEmail(context.Background(), "ADMIN@beautypro.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, u.Role)
}

func TestAppointmentFilter_Window(t *testing.T) {
	s := seeded(t)
	from := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)

	appts, err := s.ListAppointments(context.Background(), domain.AppointmentFilter{From: &from, To: &to})
	require.NoError(t, err)

	ids := make([]string, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.ID)
	}
	// a2 starts at 13:00, excluded by the exclusive upper bound
	assert.Equal(t, []string{"a3", "a4"}, ids)
}
