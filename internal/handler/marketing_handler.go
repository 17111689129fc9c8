package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/boddenberg/beautypro-go/internal/domain"
	"github.com/boddenberg/beautypro-go/internal/service"
)

// ============================================================
// Marketing campaigns and WhatsApp links
// ============================================================

func listCampaignsHandler(svc *service.MarketingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/marketing/campaigns")
		defer span.End()

		campaigns, err := svc.Campaigns(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeList(w, campaigns)
	}
}

func getCampaignHandler(svc *service.MarketingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/marketing/campaigns/{campaignId}")
		defer span.End()

		c, err := svc.Campaign(ctx, domain.CampaignID(chi.URLParam(r, "campaignId")))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, c)
	}
}

func sendCampaignHandler(svc *service.MarketingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/marketing/campaigns/{campaignId}/send")
		defer span.End()

		res, err := svc.Send(ctx, domain.CampaignID(chi.URLParam(r, "campaignId")))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func whatsAppLinkHandler(svc *service.MarketingService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.WhatsAppLinkRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		resp, err := svc.WhatsAppLink(req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
