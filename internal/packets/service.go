package packets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/disputedesk/disputedesk-backend/internal/disputes"
	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	"github.com/disputedesk/disputedesk-backend/pkg/logger"
	"github.com/disputedesk/disputedesk-backend/pkg/storage/local"
)

type disputeGateway interface {
	Retrieve(ctx context.Context, id string) (*disputes.Dispute, error)
}

type evidenceLister interface {
	List(ctx context.Context, userID, disputeID string) ([]models.EvidenceFile, error)
}

type explanationGetter interface {
	Get(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error)
}

type packetsRepository interface {
	Create(ctx context.Context, packet *models.PdfPacket) (*models.PdfPacket, error)
	GetLatest(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error)
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.PdfPacket, error)
}

type blobStore interface {
	Save(ctx context.Context, class local.Class, name string, r io.Reader) (string, error)
	Open(ctx context.Context, storedPath string) (io.ReadCloser, error)
	Remove(ctx context.Context, storedPath string) error
}

// Download pairs a packet's bytes with its download metadata.
type Download struct {
	FileName string
	Content  io.ReadCloser
}

// Service generates, lists, and serves dispute evidence packets.
type Service interface {
	GeneratePacket(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error)
	GetLatestPacket(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error)
	DownloadPacket(ctx context.Context, userID string, packetID uuid.UUID) (*Download, error)
}

type service struct {
	gateway      disputeGateway
	evidence     evidenceLister
	explanations explanationGetter
	repo         packetsRepository
	blobs        blobStore
	logg         *logger.Logger
	now          func() time.Time
}

// NewService wires the packet generator to its upstream stores.
func NewService(gateway disputeGateway, evidence evidenceLister, explanations explanationGetter, repo packetsRepository, blobs blobStore, logg *logger.Logger) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("dispute gateway required")
	}
	if evidence == nil {
		return nil, fmt.Errorf("evidence store required")
	}
	if explanations == nil {
		return nil, fmt.Errorf("explanation store required")
	}
	if repo == nil {
		return nil, fmt.Errorf("packet repository required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	return &service{
		gateway:      gateway,
		evidence:     evidence,
		explanations: explanations,
		repo:         repo,
		blobs:        blobs,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// GeneratePacket assembles the PDF from live dispute data plus the user's
// stored evidence and explanation. The blob is written first; the row is
// only inserted once the bytes are safely on disk.
func (s *service) GeneratePacket(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}

	dp, err := s.gateway.Retrieve(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	files, err := s.evidence.List(ctx, userID, disputeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list evidence for packet")
	}

	explanation := ""
	row, err := s.explanations.Get(ctx, userID, disputeID)
	switch {
	case err == nil:
		explanation = row.Body
	case errors.Is(err, gorm.ErrRecordNotFound):
		// boilerplate text is substituted at render time
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load explanation for packet")
	}

	generatedAt := s.now()
	pdfBytes, err := renderPacket(ctx, renderInput{
		dispute:     dp,
		explanation: explanation,
		files:       files,
		openBlob:    s.blobs.Open,
		generatedAt: generatedAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render packet")
	}

	fileName := fmt.Sprintf("dispute_%s_%d.pdf", disputeID, generatedAt.UnixMilli())
	storedPath, err := s.blobs.Save(ctx, local.ClassPacket, fileName, bytes.NewReader(pdfBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store packet")
	}

	packet, err := s.repo.Create(ctx, &models.PdfPacket{
		ID:         uuid.New(),
		UserID:     userID,
		DisputeID:  disputeID,
		FileName:   fileName,
		StoredPath: storedPath,
	})
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, storedPath); rmErr != nil && s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orphaned packet blob %s: %v", storedPath, rmErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record packet")
	}
	return packet, nil
}

// GetLatestPacket returns the newest packet row, or nil when none has been
// generated yet. Clients treat the nil payload as "nothing to show".
func (s *service) GetLatestPacket(ctx context.Context, userID, disputeID string) (*models.PdfPacket, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}
	packet, err := s.repo.GetLatest(ctx, userID, disputeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get latest packet")
	}
	return packet, nil
}

// DownloadPacket streams a previously generated packet. Lookup is by packet
// id and owner together, so one query answers both existence and ownership.
func (s *service) DownloadPacket(ctx context.Context, userID string, packetID uuid.UUID) (*Download, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if packetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "packet id required")
	}

	packet, err := s.repo.FindByIDForUser(ctx, packetID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "packet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find packet")
	}

	content, err := s.blobs.Open(ctx, packet.StoredPath)
	if err != nil {
		if pkgerrors.As(err).Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "packet file missing from storage")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open packet")
	}
	return &Download{FileName: packet.FileName, Content: content}, nil
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
