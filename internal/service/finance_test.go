package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

func TestFinance_RecordManualEntry(t *testing.T) {
	store := newSeededStore(t)
	later := fixedNow.Add(time.Hour)
	svc := NewFinanceService(store, brt, clockAt(later), zap.NewNop())
	ctx := context.Background()

	tx, err := svc.Record(ctx, domain.TransactionInput{
		Type: domain.TransactionExpense, Value: "89,90", Description: "Luvas", Category: "Estoque",
	})
	require.NoError(t, err)
	assert.True(t, tx.Value.Equal(money("89.90")))
	assert.Empty(t, tx.AppointmentID)

	list, err := svc.List(ctx, TransactionQuery{})
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, tx.ID, list[0].ID, "newest first")
}

func TestFinance_RecordValidates(t *testing.T) {
	svc := NewFinanceService(newSeededStore(t), brt, clockAt(fixedNow), zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		in    domain.TransactionInput
		field string
	}{
		{domain.TransactionInput{Type: "REFUND", Value: "1", Description: "x", Category: "y"}, "type"},
		{domain.TransactionInput{Type: domain.TransactionExpense, Value: "0", Description: "x", Category: "y"}, "value"},
		{domain.TransactionInput{Type: domain.TransactionExpense, Value: "dez", Description: "x", Category: "y"}, "value"},
		{domain.TransactionInput{Type: domain.TransactionIncome, Value: "10", Category: "y"}, "description"},
	}
	for _, tt := range tests {
		_, err := svc.Record(ctx, tt.in)
		var ve *domain.ErrValidation
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, tt.field, ve.Field)
	}
}

func TestFinance_FiltersAndSummary(t *testing.T) {
	svc := NewFinanceService(newSeededStore(t), brt, clockAt(fixedNow), zap.NewNop())
	ctx := context.Background()

	income, err := svc.List(ctx, TransactionQuery{Type: "INCOME"})
	require.NoError(t, err)
	assert.Len(t, income, 2)

	none, err := svc.List(ctx, TransactionQuery{From: "2024-03-11"})
	require.NoError(t, err)
	assert.Empty(t, none, "seeded entries are dated 2024-03-10 in the salon")

	day, err := svc.List(ctx, TransactionQuery{From: "2024-03-10", To: "2024-03-10"})
	require.NoError(t, err)
	assert.Len(t, day, 3)

	sum, err := svc.Summary(ctx, TransactionQuery{})
	require.NoError(t, err)
	assert.True(t, sum.Income.Equal(money("180")))
	assert.True(t, sum.Expense.Equal(money("500")))
	assert.True(t, sum.Balance.Equal(money("-320")))
	assert.True(t, sum.ByCategory["Estoque"].Equal(money("500")))
	assert.Equal(t, 3, sum.Count)

	_, err = svc.List(ctx, TransactionQuery{To: "ontem"})
	var ve *domain.ErrValidation
	assert.ErrorAs(t, err, &ve)
}
