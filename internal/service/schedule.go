package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

var scheduleTracer = otel.Tracer("service/schedule")

// ScheduleStore is what the agenda grid reads.
type ScheduleStore interface {
	ListAppointments(ctx context.Context, f domain.AppointmentFilter) ([]domain.Appointment, error)
	refSource
}

// ScheduleService builds the agenda grid.
type ScheduleService struct {
	store  ScheduleStore
	loc    *time.Location
	now    Clock
	logger *zap.Logger
}

// NewScheduleService creates the schedule service.
func NewScheduleService(store ScheduleStore, loc *time.Location, now Clock, logger *zap.Logger) *ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{store: store, loc: loc, now: now, logger: logger}
}

// Grid buckets the appointments of date (YYYY-MM-DD, empty for today) by
// professional and local start hour. A PROFESSIONAL principal only ever sees
// their own column, whatever professionalID asks for.
func (s *ScheduleService) Grid(ctx context.Context, p domain.Principal, date, professionalID string) (*domain.ScheduleGrid, error) {
	ctx, span := scheduleTracer.Start(ctx, "ScheduleService.Grid")
	defer span.End()

	if p.Role == domain.RoleProfessional {
		if p.ProfessionalID == "" {
			return nil, &domain.ErrForbidden{Action: "view schedule without a linked professional"}
		}
		professionalID = p.ProfessionalID
	}
	span.SetAttributes(attribute.String("date", date), attribute.String("professional.id", professionalID))

	day, err := parseDay(date, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	f := dayFilter(day)
	f.ProfessionalID = professionalID
	appts, err := s.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, err
	}
	sortByTime(appts)

	r, err := loadRefs(ctx, s.store)
	if err != nil {
		return nil, err
	}
	profs, err := s.store.ListProfessionals(ctx)
	if err != nil {
		return nil, err
	}
	if professionalID != "" {
		profs = filterProfessionals(profs, professionalID)
	}

	grid := &domain.ScheduleGrid{
		Date:          day.Format(DateLayout),
		Professionals: profs,
		Rows:          make([]domain.ScheduleRow, 0, domain.ScheduleLastHour-domain.ScheduleFirstHour+1),
		OffGrid:       []domain.AppointmentView{},
	}
	column := make(map[string]int, len(profs))
	for i, prof := range profs {
		column[prof.ID] = i
	}
	for h := domain.ScheduleFirstHour; h <= domain.ScheduleLastHour; h++ {
		row := domain.ScheduleRow{Hour: h, Label: fmt.Sprintf("%02d:00", h), Cells: make([]domain.ScheduleCell, len(profs))}
		for i, prof := range profs {
			row.Cells[i] = domain.ScheduleCell{ProfessionalID: prof.ID, Appointments: []domain.AppointmentView{}}
		}
		grid.Rows = append(grid.Rows, row)
	}

	for _, a := range appts {
		v := r.view(a)
		h := a.DateTime.In(s.loc).Hour()
		col, ok := column[a.ProfessionalID]
		if !ok || h < domain.ScheduleFirstHour || h > domain.ScheduleLastHour {
			grid.OffGrid = append(grid.OffGrid, v)
			continue
		}
		cell := &grid.Rows[h-domain.ScheduleFirstHour].Cells[col]
		cell.Appointments = append(cell.Appointments, v)
	}
	return grid, nil
}

// filterProfessionals keeps the column for id. A professional that no longer
// exists still gets an empty-named column so its appointments stay visible.
func filterProfessionals(profs []domain.Professional, id string) []domain.Professional {
	for _, p := range profs {
		if p.ID == id {
			return []domain.Professional{p}
		}
	}
	return []domain.Professional{{ID: id, Name: domain.UnknownRef, Specialties: []string{}}}
}
