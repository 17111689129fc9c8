package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/infra/memory"
	"github.com/boddenberg/beautypro-go/internal/infra/observability"
	"github.com/boddenberg/beautypro-go/internal/port"
)

// brt is the salon timezone used by the tests (UTC-3, no DST).
var brt = time.FixedZone("BRT", -3*60*60)

// fixedNow is 22:30 on 2024-03-10 in the salon, already 2024-03-11 in UTC.
var fixedNow = time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newSeededStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.NewSeeded(zap.NewNop(), memory.SeedOptions{Now: fixedNow, Location: brt})
	require.NoError(t, err)
	return s
}

func newTestLedger(store LedgerStore, opts LedgerOptions) *Ledger {
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	if opts.Location == nil {
		opts.Location = brt
	}
	return NewLedger(store, opts, observability.NewMetrics(), zap.NewNop())
}

func createAppt(t *testing.T, l *Ledger, clientID string, serviceIDs ...string) *domain.Appointment {
	t.Helper()
	a, err := l.Create(context.Background(), domain.AppointmentInput{
		ClientID:       clientID,
		ProfessionalID: "p1",
		ServiceIDs:     serviceIDs,
		DateTime:       time.Date(2024, 3, 12, 14, 0, 0, 0, brt),
	}, ChannelAdmin)
	require.NoError(t, err)
	return a
}

func txCount(t *testing.T, s *memory.Store) int {
	t.Helper()
	txs, err := s.ListTransactions(context.Background(), domain.TransactionFilter{})
	require.NoError(t, err)
	return len(txs)
}

func getClient(t *testing.T, s *memory.Store, id string) *domain.Client {
	t.Helper()
	c, err := s.GetClient(context.Background(), id)
	require.NoError(t, err)
	return c
}

func setPointsPerCurrency(t *testing.T, s *memory.Store, ppc string) {
	t.Helper()
	ctx := context.Background()
	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	settings.PointsPerCurrency = money(ppc)
	require.NoError(t, s.SaveSettings(ctx, settings))
}

// ============================================================
// Creation
// ============================================================

func TestLedger_Create_MissingServiceContributesZero(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateService(ctx, &domain.Service{
		ID: "s100", Name: "Escova", Price: money("100"), DurationMinutes: 30, Status: domain.ServiceActive,
	}))
	l := newTestLedger(store, LedgerOptions{})

	a := createAppt(t, l, "c1", "does-not-exist", "s100")

	assert.True(t, a.TotalValue.Equal(money("100")), a.TotalValue.String())
	assert.Equal(t, domain.StatusScheduled, a.Status)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, fixedNow, a.CreatedAt)
}

func TestLedger_Create_SumsPrices(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	a := createAppt(t, l, "c1", "s1", "s3")

	assert.True(t, a.TotalValue.Equal(money("210")))
}

func TestLedger_Create_AssignsFreshIDs(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		a := createAppt(t, l, "c1", "s1")
		require.False(t, seen[a.ID], "duplicate id %s", a.ID)
		seen[a.ID] = true
	}
}

func TestLedger_Create_Validation(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})
	ctx := context.Background()

	tests := []struct {
		name  string
		in    domain.AppointmentInput
		field string
	}{
		{"no services", domain.AppointmentInput{ClientID: "c1", ProfessionalID: "p1", DateTime: fixedNow}, "serviceIds"},
		{"blank service id", domain.AppointmentInput{ClientID: "c1", ProfessionalID: "p1", ServiceIDs: []string{""}, DateTime: fixedNow}, "serviceIds[0]"},
		{"no client", domain.AppointmentInput{ProfessionalID: "p1", ServiceIDs: []string{"s1"}, DateTime: fixedNow}, "clientId"},
		{"no date", domain.AppointmentInput{ClientID: "c1", ProfessionalID: "p1", ServiceIDs: []string{"s1"}}, "dateTime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Create(ctx, tt.in, ChannelAdmin)
			var ve *domain.ErrValidation
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLedger_Create_DoubleBookingAllowedByDefault(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	createAppt(t, l, "c1", "s1")
	createAppt(t, l, "c2", "s1")
}

func TestLedger_Create_DetectOverlaps(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{DetectOverlaps: true})
	ctx := context.Background()

	// s2 lasts 120 minutes: 14:00-16:00
	first, err := l.Create(ctx, domain.AppointmentInput{
		ClientID: "c1", ProfessionalID: "p1", ServiceIDs: []string{"s2"},
		DateTime: time.Date(2024, 3, 12, 14, 0, 0, 0, brt),
	}, ChannelAdmin)
	require.NoError(t, err)

	_, err = l.Create(ctx, domain.AppointmentInput{
		ClientID: "c2", ProfessionalID: "p1", ServiceIDs: []string{"s1"},
		DateTime: time.Date(2024, 3, 12, 15, 0, 0, 0, brt),
	}, ChannelAdmin)
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)

	// back to back is fine
	_, err = l.Create(ctx, domain.AppointmentInput{
		ClientID: "c2", ProfessionalID: "p1", ServiceIDs: []string{"s1"},
		DateTime: time.Date(2024, 3, 12, 16, 0, 0, 0, brt),
	}, ChannelAdmin)
	require.NoError(t, err)

	// another professional is free
	_, err = l.Create(ctx, domain.AppointmentInput{
		ClientID: "c2", ProfessionalID: "p2", ServiceIDs: []string{"s5"},
		DateTime: time.Date(2024, 3, 12, 15, 0, 0, 0, brt),
	}, ChannelAdmin)
	require.NoError(t, err)

	// a cancelled appointment frees its slot
	_, err = l.SetStatus(ctx, first.ID, domain.StatusCancelled)
	require.NoError(t, err)
	_, err = l.Create(ctx, domain.AppointmentInput{
		ClientID: "c3", ProfessionalID: "p1", ServiceIDs: []string{"s1"},
		DateTime: time.Date(2024, 3, 12, 14, 30, 0, 0, brt),
	}, ChannelAdmin)
	require.NoError(t, err)
}

// ============================================================
// Completion posting
// ============================================================

func TestLedger_Complete_PostsIncomeAndClientStats(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	before := getClient(t, store, "c1")
	a := createAppt(t, l, "c1", "s1") // 120

	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)

	assert.True(t, res.Posted)
	assert.Equal(t, domain.OutcomePosted, res.Outcome)
	assert.Equal(t, domain.StatusScheduled, res.PreviousStatus)
	assert.Equal(t, domain.StatusCompleted, res.Appointment.Status)
	assert.Equal(t, int64(12), res.PointsEarned)

	require.NotNil(t, res.Transaction)
	txn := res.Transaction
	assert.Equal(t, domain.TransactionIncome, txn.Type)
	assert.True(t, txn.Value.Equal(money("120")))
	assert.Equal(t, "Service - Mariana Souza", txn.Description)
	assert.Equal(t, "Services", txn.Category)
	assert.Equal(t, fixedNow, txn.Date, "posting date is the completion instant, not the scheduled time")
	assert.Equal(t, a.ID, txn.AppointmentID)
	assert.Equal(t, txn.ID, res.Appointment.PostedTransactionID)

	after := getClient(t, store, "c1")
	assert.True(t, after.TotalSpent.Equal(before.TotalSpent.Add(money("120"))))
	assert.Equal(t, before.LoyaltyPoints+12, after.LoyaltyPoints)
	assert.Equal(t, "2024-03-10", after.LastVisit, "last visit is today in the salon timezone")
	assert.Equal(t, 4, txCount(t, store))
}

func TestLedger_Complete_UsesFrozenTotal(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	a := createAppt(t, l, "c1", "s1") // 120

	svc, err := store.GetService(ctx, "s1")
	require.NoError(t, err)
	svc.Price = money("999")
	require.NoError(t, store.UpdateService(ctx, svc))
	require.NoError(t, store.DeleteService(ctx, "s1"))

	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, res.Transaction.Value.Equal(money("120")))
}

func TestLedger_OtherTransitionsDoNotPost(t *testing.T) {
	for _, st := range []domain.AppointmentStatus{
		domain.StatusScheduled, domain.StatusConfirmed, domain.StatusArrived, domain.StatusNoShow, domain.StatusCancelled,
	} {
		t.Run(string(st), func(t *testing.T) {
			store := newSeededStore(t)
			l := newTestLedger(store, LedgerOptions{})
			before := getClient(t, store, "c1")
			a := createAppt(t, l, "c1", "s1")

			res, err := l.SetStatus(context.Background(), a.ID, st)
			require.NoError(t, err)

			assert.False(t, res.Posted)
			assert.Equal(t, domain.OutcomeNone, res.Outcome)
			assert.Equal(t, st, res.Appointment.Status)
			assert.Equal(t, 3, txCount(t, store))
			after := getClient(t, store, "c1")
			assert.True(t, after.TotalSpent.Equal(before.TotalSpent))
			assert.Equal(t, before.LoyaltyPoints, after.LoyaltyPoints)
		})
	}
}

func TestLedger_LoyaltyPoints(t *testing.T) {
	tests := []struct {
		name  string
		ppc   string
		total string
		want  int64
	}{
		{"one point per currency", "1", "100", 10},
		{"zero ratio falls back to divisor 10", "0", "100", 10},
		{"negative ratio falls back to divisor 10", "-2", "100", 10},
		{"fractional total floors", "1", "99.99", 9},
		{"ratio 2 halves the divisor", "2", "95", 19},
		{"ratio 3 is exact, no float drift", "3", "100", 30},
		{"ratio 0.5", "0.5", "250", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.LoyaltyPoints(money(tt.total), money(tt.ppc)))
		})
	}
}

func TestLedger_PointsRatioFromSettings(t *testing.T) {
	store := newSeededStore(t)
	setPointsPerCurrency(t, store, "0")
	l := newTestLedger(store, LedgerOptions{})
	before := getClient(t, store, "c3")

	ctx := context.Background()
	require.NoError(t, store.CreateService(ctx, &domain.Service{ID: "s100", Name: "X", Price: money("100"), DurationMinutes: 30}))
	a := createAppt(t, l, "c3", "s100")

	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.PointsEarned)
	assert.Equal(t, before.LoyaltyPoints+10, getClient(t, store, "c3").LoyaltyPoints)
}

func TestLedger_AccumulatesAcrossCompletions(t *testing.T) {
	store := newSeededStore(t)
	setPointsPerCurrency(t, store, "1")
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	before := getClient(t, store, "c2")

	serviceSets := [][]string{{"s1"}, {"s2", "s4"}, {"s6"}, {"s3", "s5"}}
	wantSpent := before.TotalSpent
	wantPoints := before.LoyaltyPoints
	for _, ids := range serviceSets {
		a := createAppt(t, l, "c2", ids...)
		_, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
		require.NoError(t, err)
		wantSpent = wantSpent.Add(a.TotalValue)
		wantPoints += domain.LoyaltyPoints(a.TotalValue, money("1"))
	}

	after := getClient(t, store, "c2")
	assert.True(t, after.TotalSpent.Equal(wantSpent), "spent %s want %s", after.TotalSpent, wantSpent)
	assert.Equal(t, wantPoints, after.LoyaltyPoints)
	assert.Equal(t, 3+len(serviceSets), txCount(t, store))
}

// ============================================================
// Idempotence
// ============================================================

func TestLedger_CompletingTwicePostsOnce(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	a := createAppt(t, l, "c1", "s1")

	_, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	afterFirst := getClient(t, store, "c1")

	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, res.Posted)
	assert.Equal(t, domain.OutcomeAlreadyPosted, res.Outcome)
	assert.Nil(t, res.Transaction)

	assert.Equal(t, 4, txCount(t, store))
	afterSecond := getClient(t, store, "c1")
	assert.True(t, afterSecond.TotalSpent.Equal(afterFirst.TotalSpent))
	assert.Equal(t, afterFirst.LoyaltyPoints, afterSecond.LoyaltyPoints)
}

func TestLedger_ReopenAndCompleteAgainPostsOnceAndNeverReverses(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	a := createAppt(t, l, "c1", "s1")

	_, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	posted := getClient(t, store, "c1")

	res, err := l.SetStatus(ctx, a.ID, domain.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Appointment.Status)
	reopened := getClient(t, store, "c1")
	assert.True(t, reopened.TotalSpent.Equal(posted.TotalSpent), "leaving COMPLETED never claws back")
	assert.Equal(t, posted.LoyaltyPoints, reopened.LoyaltyPoints)
	assert.Equal(t, 4, txCount(t, store))

	res, err = l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, res.Appointment.Status)
	assert.Equal(t, domain.OutcomeAlreadyPosted, res.Outcome)
	assert.Equal(t, 4, txCount(t, store))
}

func TestLedger_SeededCompletedAppointmentIsAlreadyPosted(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})

	res, err := l.SetStatus(context.Background(), "a3", domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyPosted, res.Outcome)
	assert.Equal(t, 3, txCount(t, store))
}

func TestLedger_ConcurrentCompletionsPostOnce(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	a := createAppt(t, l, "c1", "s2")
	before := getClient(t, store, "c1")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.SetStatus(context.Background(), a.ID, domain.StatusCompleted)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, txCount(t, store))
	after := getClient(t, store, "c1")
	assert.True(t, after.TotalSpent.Equal(before.TotalSpent.Add(money("250"))))
}

// ============================================================
// Missing references and errors
// ============================================================

func TestLedger_CompleteWithoutClientSkipsPosting(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	a := createAppt(t, l, "ghost", "s1")

	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)

	assert.False(t, res.Posted)
	assert.Equal(t, domain.OutcomeSkippedNoClient, res.Outcome)
	assert.Equal(t, domain.StatusCompleted, res.Appointment.Status)
	assert.Equal(t, 3, txCount(t, store))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 3, "no placeholder client is synthesized")
}

func TestLedger_SetStatus_UnknownAppointment(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	_, err := l.SetStatus(context.Background(), "nope", domain.StatusCompleted)
	var nf *domain.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "appointment", nf.Resource)
}

func TestLedger_SetStatus_UnknownStatus(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	_, err := l.SetStatus(context.Background(), "a1", domain.AppointmentStatus("DONE"))
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}

func TestLedger_StrictPolicy(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{Policy: domain.StrictPolicy{}})
	ctx := context.Background()
	a := createAppt(t, l, "c1", "s1")

	_, err := l.SetStatus(ctx, a.ID, domain.StatusArrived)
	require.NoError(t, err)
	_, err = l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)

	// same-status write is allowed and does not post again
	res, err := l.SetStatus(ctx, a.ID, domain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyPosted, res.Outcome)

	_, err = l.SetStatus(ctx, a.ID, domain.StatusScheduled)
	var inv *domain.ErrInvalidTransition
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, domain.StatusCompleted, inv.From)
	assert.Equal(t, domain.StatusScheduled, inv.To)

	got, err := store.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}

// failingTx makes every client update fail inside a ledger transaction.
type failingTx struct {
	port.LedgerTx
}

func (failingTx) UpdateClient(context.Context, *domain.Client) error {
	return errors.New("disk full")
}

type failingStore struct {
	*memory.Store
}

func (s failingStore) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	return s.Store.InTx(ctx, func(tx port.LedgerTx) error {
		return fn(failingTx{tx})
	})
}

func TestLedger_PostingIsAtomic(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(failingStore{store}, LedgerOptions{})
	ctx := context.Background()
	before := getClient(t, store, "c1")

	_, err := l.SetStatus(ctx, "a1", domain.StatusCompleted)
	require.Error(t, err)

	a, err := store.GetAppointment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, a.Status, "status change rolled back")
	assert.False(t, a.IsPosted())
	assert.Equal(t, 3, txCount(t, store), "income not posted")
	assert.True(t, getClient(t, store, "c1").TotalSpent.Equal(before.TotalSpent))
}

// ============================================================
// Cycle and queries
// ============================================================

func TestLedger_AdvanceCycle(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	a := createAppt(t, l, "c2", "s5")

	want := []domain.AppointmentStatus{domain.StatusConfirmed, domain.StatusCompleted, domain.StatusScheduled, domain.StatusConfirmed}
	for _, st := range want {
		res, err := l.Advance(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, st, res.Appointment.Status)
	}
	assert.Equal(t, 4, txCount(t, store), "the cycle posts exactly once")

	_, err := l.SetStatus(ctx, a.ID, domain.StatusNoShow)
	require.NoError(t, err)
	res, err := l.Advance(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, res.Appointment.Status)
}

func TestLedger_GetResolvesDanglingReferences(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	ctx := context.Background()
	require.NoError(t, store.DeleteService(ctx, "s2"))
	require.NoError(t, store.DeleteProfessional(ctx, "p1"))

	v, err := l.Get(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "Camila Santos", v.ClientName)
	assert.Equal(t, domain.UnknownRef, v.ProfessionalName)
	assert.Equal(t, []string{domain.UnknownRef}, v.ServiceNames)
	assert.Equal(t, "Agendado", v.StatusLabel)
}

func TestLedger_ListByDayAndProfessional(t *testing.T) {
	l := newTestLedger(newSeededStore(t), LedgerOptions{})

	views, err := l.List(context.Background(), AppointmentQuery{Date: "2024-03-10", ProfessionalID: "p1"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "a1", views[0].ID)
	assert.Equal(t, "a2", views[1].ID)

	views, err = l.List(context.Background(), AppointmentQuery{Date: "2024-03-11"})
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = l.List(context.Background(), AppointmentQuery{Date: "10/03/2024"})
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}
