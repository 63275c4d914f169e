package controllers

import (
	"net/http"

	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/api/responses"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

// AuthUser echoes the resolved caller identity so the client can confirm
// which account its rows are scoped to.
func AuthUser(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if userID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"id": userID})
	}
}
