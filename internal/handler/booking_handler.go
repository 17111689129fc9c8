package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/service"
)

// ============================================================
// Public booking page (no auth)
// ============================================================

func bookingCatalogHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/book/{slug}")
		defer span.End()

		cat, err := svc.Catalog(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, cat)
	}
}

func bookingSlotsHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/book/{slug}/slots")
		defer span.End()

		q := r.URL.Query()
		resp, err := svc.Slots(ctx, chi.URLParam(r, "slug"), q.Get("date"), q.Get("professionalId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookingCreateHandler(svc *service.BookingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/book/{slug}")
		defer span.End()

		slug := chi.URLParam(r, "slug")
		span.SetAttributes(attribute.String("slug", slug))

		var req domain.BookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		conf, err := svc.Book(ctx, slug, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, conf)
	}
}
