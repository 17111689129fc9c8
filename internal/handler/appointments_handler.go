package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/service"
)

// ============================================================
// Agenda: appointments and the schedule grid
// ============================================================

func scheduleHandler(svc *service.ScheduleService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/schedule")
		defer span.End()

		p, _ := PrincipalFromContext(ctx)
		q := r.URL.Query()
		grid, err := svc.Grid(ctx, p, q.Get("date"), q.Get("professionalId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, grid)
	}
}

func listAppointmentsHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/appointments")
		defer span.End()

		q := r.URL.Query()
		query := service.AppointmentQuery{
			Date:           q.Get("date"),
			ProfessionalID: q.Get("professionalId"),
			ClientID:       q.Get("clientId"),
		}
		if p, _ := PrincipalFromContext(ctx); p.Role == domain.RoleProfessional {
			query.ProfessionalID = p.ProfessionalID
		}

		views, err := ledger.List(ctx, query)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeList(w, views)
	}
}

func getAppointmentHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/appointments/{appointmentId}")
		defer span.End()

		id := chi.URLParam(r, "appointmentId")
		span.SetAttributes(attribute.String("appointment.id", id))

		view, err := ledger.Get(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if p, _ := PrincipalFromContext(ctx); !p.OwnsAppointmentOf(view.ProfessionalID) {
			handleServiceError(w, &domain.ErrForbidden{Action: "open another professional's appointment"}, logger)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

func createAppointmentHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/appointments")
		defer span.End()

		var in domain.AppointmentInput
		if !decodeJSON(w, r, &in) {
			return
		}
		if p, _ := PrincipalFromContext(ctx); !p.OwnsAppointmentOf(in.ProfessionalID) {
			handleServiceError(w, &domain.ErrForbidden{Action: "book for another professional"}, logger)
			return
		}

		appt, err := ledger.Create(ctx, in, service.ChannelAdmin)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func setStatusHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/appointments/{appointmentId}/status")
		defer span.End()

		id := chi.URLParam(r, "appointmentId")
		var req domain.StatusChangeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		span.SetAttributes(attribute.String("appointment.id", id), attribute.String("status", req.Status))
		if err := checkOwnAppointment(ctx, ledger, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := ledger.SetStatus(ctx, id, domain.AppointmentStatus(req.Status))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func advanceStatusHandler(ledger *service.Ledger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/appointments/{appointmentId}/advance")
		defer span.End()

		id := chi.URLParam(r, "appointmentId")
		if err := checkOwnAppointment(ctx, ledger, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		res, err := ledger.Advance(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

// checkOwnAppointment rejects a PROFESSIONAL changing an appointment of
// another professional.
func checkOwnAppointment(ctx context.Context, ledger *service.Ledger, id string) error {
	p, _ := PrincipalFromContext(ctx)
	if p.Role != domain.RoleProfessional {
		return nil
	}
	view, err := ledger.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.OwnsAppointmentOf(view.ProfessionalID) {
		return &domain.ErrForbidden{Action: "change another professional's appointment"}
	}
	return nil
}

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		p, _ := PrincipalFromContext(ctx)
		d, err := svc.Get(ctx, p)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}
