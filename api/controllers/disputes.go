package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/api/responses"
	"github.com/disputedesk/disputedesk-backend/api/validators"
	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/internal/explanations"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

// ListDisputes returns the caller's open and recent disputes from Stripe.
func ListDisputes(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = parsed
		}

		list, err := svc.ListDisputes(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetDispute(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, id)
		}

		dp, err := svc.GetDispute(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dp)
	}
}

// GetDisputeTemplate returns the evidence checklist for the dispute's reason.
func GetDisputeTemplate(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, id)
		}

		tpl, err := svc.GetTemplate(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tpl)
	}
}

func GetExplanation(svc explanations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "id")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		row, err := svc.GetExplanation(ctx, userID, disputeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

type putExplanationRequest struct {
	Body string `json:"body" validate:"required"`
}

func PutExplanation(svc explanations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "id")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		var payload putExplanationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		row, err := svc.SaveExplanation(ctx, userID, disputeID, payload.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}
