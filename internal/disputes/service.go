package disputes

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
)

// Service exposes dispute listing, lookup, and template resolution.
type Service interface {
	ListDisputes(ctx context.Context, limit int) ([]Dispute, error)
	GetDispute(ctx context.Context, id string) (*Dispute, error)
	GetTemplate(ctx context.Context, disputeID string) (*Template, error)
}

type service struct {
	gateway Gateway
}

// NewService builds a dispute service over the provided gateway.
func NewService(gateway Gateway) (Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("dispute gateway required")
	}
	return &service{gateway: gateway}, nil
}

func (s *service) ListDisputes(ctx context.Context, limit int) ([]Dispute, error) {
	return s.gateway.List(ctx, limit)
}

func (s *service) GetDispute(ctx context.Context, id string) (*Dispute, error) {
	if strings.TrimSpace(id) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute id required")
	}
	return s.gateway.Retrieve(ctx, id)
}

// GetTemplate resolves the evidence checklist for the dispute's reason. The
// dispute is fetched first so a bogus id surfaces as not found rather than a
// generic checklist.
func (s *service) GetTemplate(ctx context.Context, disputeID string) (*Template, error) {
	dp, err := s.GetDispute(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	tpl := TemplateForReason(dp.Reason)
	return &tpl, nil
}
