package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/disputedesk/disputedesk-backend/api/middleware"
	"github.com/disputedesk/disputedesk-backend/api/responses"
	"github.com/disputedesk/disputedesk-backend/internal/evidence"
	"github.com/disputedesk/disputedesk-backend/pkg/enums"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
)

// multipart framing overhead on top of the configured file size ceiling
const uploadFormSlack = 64 << 10

func ListEvidence(svc evidence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "disputeId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		rows, err := svc.ListEvidence(ctx, userID, disputeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// UploadEvidence accepts a multipart form with a `file` part and a `kind`
// field. The request body is capped before parsing so an oversized upload is
// rejected without buffering it all.
func UploadEvidence(svc evidence.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		disputeID := chi.URLParam(r, "disputeId")
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDisputeID(ctx, disputeID)
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+uploadFormSlack)
		if err := r.ParseMultipartForm(maxUploadBytes + uploadFormSlack); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds the size limit"))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		kind, err := enums.ParseEvidenceKind(strings.TrimSpace(r.FormValue("kind")))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part required"))
			return
		}
		defer file.Close()

		created, err := svc.UploadEvidence(ctx, userID, disputeID, evidence.UploadInput{
			Kind:     kind,
			FileName: header.Filename,
			Content:  file,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func DeleteEvidence(svc evidence.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		fileID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid evidence id"))
			return
		}

		if err := svc.DeleteEvidence(r.Context(), userID, fileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
