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

var owner = domain.Principal{UserID: "u1", Role: domain.RoleOwner}

func cellIDs(c domain.ScheduleCell) []string {
	ids := make([]string, 0, len(c.Appointments))
	for _, a := range c.Appointments {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestSchedule_GridBucketsByHourAndProfessional(t *testing.T) {
	svc := NewScheduleService(newSeededStore(t), brt, clockAt(fixedNow), zap.NewNop())

	grid, err := svc.Grid(context.Background(), owner, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", grid.Date)
	require.Len(t, grid.Professionals, 3)
	require.Len(t, grid.Rows, 13)
	assert.Equal(t, "08:00", grid.Rows[0].Label)
	assert.Equal(t, 20, grid.Rows[12].Hour)

	assert.Equal(t, []string{"a1"}, cellIDs(grid.Rows[9-8].Cells[0]))
	assert.Equal(t, []string{"a2"}, cellIDs(grid.Rows[13-8].Cells[0]))
	assert.Equal(t, []string{"a3"}, cellIDs(grid.Rows[10-8].Cells[1]))
	assert.Equal(t, []string{"a6"}, cellIDs(grid.Rows[16-8].Cells[2]))
	assert.Empty(t, grid.Rows[0].Cells[0].Appointments)
	assert.Empty(t, grid.OffGrid)
}

func TestSchedule_OffGridAppointments(t *testing.T) {
	store := newSeededStore(t)
	l := newTestLedger(store, LedgerOptions{})
	svc := NewScheduleService(store, brt, clockAt(fixedNow), zap.NewNop())
	ctx := context.Background()

	for _, at := range []time.Time{
		time.Date(2024, 3, 10, 7, 30, 0, 0, brt),
		time.Date(2024, 3, 10, 21, 0, 0, 0, brt),
		time.Date(2024, 3, 10, 20, 45, 0, 0, brt),
	} {
		_, err := l.Create(ctx, domain.AppointmentInput{ClientID: "c1", ProfessionalID: "p2", ServiceIDs: []string{"s4"}, DateTime: at}, ChannelAdmin)
		require.NoError(t, err)
	}

	grid, err := svc.Grid(ctx, owner, "2024-03-10", "")
	require.NoError(t, err)
	assert.Len(t, grid.OffGrid, 2)
	assert.Len(t, grid.Rows[12].Cells[1].Appointments, 1, "20:45 belongs to the 20:00 row")
}

func TestSchedule_ProfessionalSeesOnlyOwnColumn(t *testing.T) {
	svc := NewScheduleService(newSeededStore(t), brt, clockAt(fixedNow), zap.NewNop())
	ana := domain.Principal{UserID: "u2", Role: domain.RoleProfessional, ProfessionalID: "p1"}

	grid, err := svc.Grid(context.Background(), ana, "2024-03-10", "p2")
	require.NoError(t, err)
	require.Len(t, grid.Professionals, 1)
	assert.Equal(t, "p1", grid.Professionals[0].ID)
	for _, row := range grid.Rows {
		require.Len(t, row.Cells, 1)
	}

	_, err = svc.Grid(context.Background(), domain.Principal{Role: domain.RoleProfessional}, "", "")
	var fe *domain.ErrForbidden
	assert.ErrorAs(t, err, &fe)
}

func TestSchedule_FilterByProfessional(t *testing.T) {
	svc := NewScheduleService(newSeededStore(t), brt, clockAt(fixedNow), zap.NewNop())

	grid, err := svc.Grid(context.Background(), owner, "2024-03-10", "p3")
	require.NoError(t, err)
	require.Len(t, grid.Professionals, 1)
	assert.Equal(t, []string{"a4"}, cellIDs(grid.Rows[11-8].Cells[0]))

	grid, err = svc.Grid(context.Background(), owner, "2024-03-10", "gone")
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownRef, grid.Professionals[0].Name)
}
