package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/service"
)

// ============================================================
// Services catalog
// ============================================================

func listServicesHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services")
		defer span.End()

		services, err := svc.List(ctx, r.URL.Query().Get("status") == string(domain.ServiceActive))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeList(w, services)
	}
}

func getServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/services/{serviceId}")
		defer span.End()

		s, err := svc.Get(ctx, chi.URLParam(r, "serviceId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, s)
	}
}

func createServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/services")
		defer span.End()

		var in domain.ServiceInput
		if !decodeJSON(w, r, &in) {
			return
		}

		s, err := svc.Create(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, s)
	}
}

func updateServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/services/{serviceId}")
		defer span.End()

		var in domain.ServiceInput
		if !decodeJSON(w, r, &in) {
			return
		}

		s, err := svc.Update(ctx, chi.URLParam(r, "serviceId"), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, s)
	}
}

func deleteServiceHandler(svc *service.CatalogService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/services/{serviceId}")
		defer span.End()

		id := chi.URLParam(r, "serviceId")
		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "service deleted", ID: id})
	}
}

// ============================================================
// Professionals
// ============================================================

func listProfessionalsHandler(svc *service.ProfessionalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/professionals")
		defer span.End()

		profs, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeList(w, profs)
	}
}

func getProfessionalHandler(svc *service.ProfessionalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/professionals/{professionalId}")
		defer span.End()

		p, err := svc.Get(ctx, chi.URLParam(r, "professionalId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func createProfessionalHandler(svc *service.ProfessionalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/professionals")
		defer span.End()

		var in domain.ProfessionalInput
		if !decodeJSON(w, r, &in) {
			return
		}

		p, err := svc.Create(ctx, in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, p)
	}
}

func updateProfessionalHandler(svc *service.ProfessionalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/professionals/{professionalId}")
		defer span.End()

		var in domain.ProfessionalInput
		if !decodeJSON(w, r, &in) {
			return
		}

		p, err := svc.Update(ctx, chi.URLParam(r, "professionalId"), in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, p)
	}
}

func deleteProfessionalHandler(svc *service.ProfessionalService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/professionals/{professionalId}")
		defer span.End()

		id := chi.URLParam(r, "professionalId")
		if err := svc.Delete(ctx, id); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "professional deleted", ID: id})
	}
}
