package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/api/responses"
	"github.com/disputedesk/disputedesk-backend/internal/packets"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

// GeneratePacket builds a fresh evidence packet PDF for the dispute.
func GeneratePacket(svc packets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "disputeId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		packet, err := svc.GeneratePacket(ctx, userID, disputeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, packet)
	}
}

func GetLatestPacket(svc packets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "disputeId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		packet, err := svc.GetLatestPacket(ctx, userID, disputeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, packet)
	}
}

// DownloadPacket streams the stored PDF as an attachment.
func DownloadPacket(svc packets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		packetID, err := uuid.Parse(chi.URLParam(r, "packetId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid packet id"))
			return
		}

		dl, err := svc.DownloadPacket(r.Context(), userID, packetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer dl.Content.Close()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.FileName))
		if _, err := io.Copy(w, dl.Content); err != nil && logg != nil {
			logg.Error(r.Context(), "stream packet", err)
		}
	}
}
