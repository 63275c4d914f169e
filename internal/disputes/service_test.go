package disputes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/disputedesk/disputedesk-backend/pkg/config"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	pkgstripe "github.com/disputedesk/disputedesk-backend/pkg/stripe"
)

func stripeTestConfig() config.StripeConfig {
	return config.StripeConfig{Env: "test"}
}

type stubGateway struct {
	listFn     func(ctx context.Context, limit int) ([]Dispute, error)
	retrieveFn func(ctx context.Context, id string) (*Dispute, error)
}

func (s *stubGateway) List(ctx context.Context, limit int) ([]Dispute, error) {
	return s.listFn(ctx, limit)
}

func (s *stubGateway) Retrieve(ctx context.Context, id string) (*Dispute, error) {
	return s.retrieveFn(ctx, id)
}

func TestNewServiceRequiresGateway(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil gateway")
	}
}

func TestGetDisputeRejectsBlankID(t *testing.T) {
	svc, err := NewService(&stubGateway{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	_, err = svc.GetDispute(context.Background(), "   ")
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetTemplateUsesDisputeReason(t *testing.T) {
	gw := &stubGateway{
		retrieveFn: func(_ context.Context, id string) (*Dispute, error) {
			if id != "dp_123" {
				t.Fatalf("unexpected id %q", id)
			}
			return &Dispute{ID: id, Reason: "product_not_received"}, nil
		},
	}
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tpl, err := svc.GetTemplate(context.Background(), "dp_123")
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if tpl.Reason != "product_not_received" {
		t.Fatalf("reason = %q", tpl.Reason)
	}
	if len(tpl.Required) == 0 || tpl.Required[0] != "Shipping tracking" {
		t.Fatalf("unexpected required list %v", tpl.Required)
	}
}

func TestGetTemplatePropagatesNotFound(t *testing.T) {
	gw := &stubGateway{
		retrieveFn: func(_ context.Context, _ string) (*Dispute, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispute not found")
		},
	}
	svc, _ := NewService(gw)
	_, err := svc.GetTemplate(context.Background(), "dp_missing")
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnconfiguredGatewayReportsUnavailable(t *testing.T) {
	client, err := pkgstripe.NewClient(context.Background(), stripeTestConfig(), nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	gw := NewStripeGateway(client)

	if _, err := gw.List(context.Background(), 10); pkgerrors.As(err).Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected unavailable from List, got %v", err)
	}
	if _, err := gw.Retrieve(context.Background(), "dp_1"); pkgerrors.As(err).Code() != pkgerrors.CodeUnavailable {
		t.Fatalf("expected unavailable from Retrieve, got %v", err)
	}
}

func TestMapStripeError(t *testing.T) {
	missing := &stripe.Error{Code: stripe.ErrorCodeResourceMissing}
	if got := pkgerrors.As(mapStripeError(missing, "retrieve dispute")).Code(); got != pkgerrors.CodeNotFound {
		t.Fatalf("resource_missing mapped to %v", got)
	}

	rate := &stripe.Error{Code: stripe.ErrorCodeRateLimit}
	if got := pkgerrors.As(mapStripeError(rate, "list disputes")).Code(); got != pkgerrors.CodeUpstream {
		t.Fatalf("rate limit mapped to %v", got)
	}

	if got := pkgerrors.As(mapStripeError(errors.New("dial tcp"), "list disputes")).Code(); got != pkgerrors.CodeUpstream {
		t.Fatalf("transport error mapped to %v", got)
	}
}

func TestFromStripeMapsFields(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	dp := &stripe.Dispute{
		ID:       "dp_42",
		Amount:   2550,
		Currency: stripe.CurrencyUSD,
		Reason:   stripe.DisputeReasonFraudulent,
		Status:   stripe.DisputeStatusNeedsResponse,
		Created:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Charge:   &stripe.Charge{ID: "ch_1"},
		EvidenceDetails: &stripe.DisputeEvidenceDetails{
			DueBy: due.Unix(),
		},
		Evidence: &stripe.DisputeEvidence{
			CustomerName:         "Ada Lovelace",
			CustomerEmailAddress: "ada@example.com",
			CustomerPurchaseIP:   "203.0.113.7",
		},
	}

	got := fromStripe(dp)
	if got.ID != "dp_42" || got.ChargeID != "ch_1" {
		t.Fatalf("ids not mapped: %+v", got)
	}
	if got.Amount != 2550 || got.Currency != "usd" {
		t.Fatalf("amount/currency not mapped: %+v", got)
	}
	if got.DueBy == nil || !got.DueBy.Equal(due) {
		t.Fatalf("due by not mapped: %v", got.DueBy)
	}
	if got.CustomerEvidence.CustomerEmail != "ada@example.com" {
		t.Fatalf("evidence not mapped: %+v", got.CustomerEvidence)
	}
}
