package explanations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/disputedesk/disputedesk-backend/pkg/db/models"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
)

type explanationsRepository interface {
	Get(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error)
	Upsert(ctx context.Context, row *models.DisputeExplanation) (*models.DisputeExplanation, error)
}

// Service exposes reading and writing merchant explanations.
type Service interface {
	GetExplanation(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error)
	SaveExplanation(ctx context.Context, userID, disputeID, body string) (*models.DisputeExplanation, error)
}

type service struct {
	repo explanationsRepository
}

// NewService builds an explanation service over the repository.
func NewService(repo explanationsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("explanation repository required")
	}
	return &service{repo: repo}, nil
}

// GetExplanation returns the stored explanation, or nil when the merchant
// has not written one yet.
func (s *service) GetExplanation(ctx context.Context, userID, disputeID string) (*models.DisputeExplanation, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, userID, disputeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get explanation")
	}
	return row, nil
}

// SaveExplanation creates or replaces the explanation for the dispute.
func (s *service) SaveExplanation(ctx context.Context, userID, disputeID, body string) (*models.DisputeExplanation, error) {
	if err := requireScope(userID, disputeID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "explanation body required")
	}

	row, err := s.repo.Upsert(ctx, &models.DisputeExplanation{
		ID:        uuid.New(),
		UserID:    userID,
		DisputeID: disputeID,
		Body:      body,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save explanation")
	}
	return row, nil
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
