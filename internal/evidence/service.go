package evidence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	"github.com/disputedesk/disputedesk-backend/pkg/enums"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
	"github.com/disputedesk/disputedesk-backend/pkg/storage/local"
)

// Image uploads only. The sniffed type decides, not the client's header.
var extByMime = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type evidenceRepository interface {
	Create(ctx context.Context, file *models.EvidenceFile) (*models.EvidenceFile, error)
	List(ctx context.Context, userID, disputeID string) ([]models.EvidenceFile, error)
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.EvidenceFile, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) error
}

type blobStore interface {
	Save(ctx context.Context, class local.Class, name string, r io.Reader) (string, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, storedPath string) error
}

// UploadInput carries one file from the HTTP layer.
type UploadInput struct {
	Kind     enums.EvidenceKind
	FileName string
	Content  io.Reader
}

// Service exposes evidence listing, upload, and deletion.
type Service interface {
	ListEvidence(ctx context.Context, userID, disputeID string) ([]models.EvidenceFile, error)
	UploadEvidence(ctx context.Context, userID, disputeID string, input UploadInput) (*models.EvidenceFile, error)
	DeleteEvidence(ctx context.Context, userID string, fileID uuid.UUID) error
}

type service struct {
	repo     evidenceRepository
	blobs    blobStore
	maxBytes int64
	logg     *logger.Logger
}

// NewService builds an evidence service over the repository and blob store.
func NewService(repo evidenceRepository, blobs blobStore, maxBytes int64, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("evidence repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{repo: repo, blobs: blobs, maxBytes: maxBytes, logg: logg}, nil
}

func (s *service) ListEvidence(ctx context.Context, userID, disputeID string) ([]models.EvidenceFile, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, userID, disputeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list evidence")
	}
	return rows, nil
}

// UploadEvidence sniffs the payload, writes the blob, then records the row.
// The blob is removed again if the row cannot be written, so a failed upload
// leaves nothing behind.
func (s *service) UploadEvidence(ctx context.Context, userID, disputeID string, input UploadInput) (*models.EvidenceFile, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown evidence kind %q", input.Kind))
	}
	if input.Content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content required")
	}

	data, err := io.ReadAll(io.LimitReader(input.Content, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.maxBytes))
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}

	detected := mimetype.Detect(data)
	ext, ok := extByMime[detected.String()]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported file type %q, only PNG and JPEG images are accepted", detected.String()))
	}

	id := uuid.New()
	storedPath, err := s.blobs.Save(ctx, local.ClassUpload, id.String()+ext, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}

	row := &models.EvidenceFile{
		ID:         id,
		UserID:     userID,
		DisputeID:  disputeID,
		Kind:       input.Kind,
		FileName:   sanitizeFileName(input.FileName, id.String()+ext),
		StoredPath: storedPath,
		SizeBytes:  int64(len(data)),
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, storedPath); rmErr != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orphaned upload blob %s: %v", storedPath, rmErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record upload")
	}
	return created, nil
}

// DeleteEvidence removes the row first, then the blob best-effort. A stale
// blob is recoverable garbage, a stale row is a broken listing. Deleting a
// row that does not exist, or that belongs to another user, is a no-op.
func (s *service) DeleteEvidence(ctx context.Context, userID string, fileID uuid.UUID) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if fileID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "evidence id required")
	}

	row, err := s.repo.FindByIDForUser(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find evidence")
	}

	if err := s.repo.Delete(ctx, fileID, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete evidence")
	}
	if err := s.blobs.Remove(ctx, row.StoredPath); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("evidence blob %s left behind: %v", row.StoredPath, err))
	}
	return nil
}

func requireScope(userID, disputeID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(disputeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "dispute id required")
	}
	return nil
}

// sanitizeFileName keeps the client's display name but strips any path
// components it arrived with.
func sanitizeFileName(name, fallback string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
