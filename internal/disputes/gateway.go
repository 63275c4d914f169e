package disputes

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/dispute"

	"github.com/disputedesk/disputedesk-backend/pkg/enums"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
	pkgstripe "github.com/disputedesk/disputedesk-backend/pkg/stripe"
)

const (
	defaultListLimit = 50
	maxListLimit     = 50
)

// Gateway exposes the subset of Stripe dispute operations the service needs.
type Gateway interface {
	List(ctx context.Context, limit int) ([]Dispute, error)
	Retrieve(ctx context.Context, id string) (*Dispute, error)
}

type stripeGateway struct {
	client *pkgstripe.Client
}

// NewStripeGateway wraps the shared Stripe client. An unconfigured client is
// accepted: calls then fail with an unavailable error instead of panicking.
func NewStripeGateway(client *pkgstripe.Client) Gateway {
	return &stripeGateway{client: client}
}

func (g *stripeGateway) ready() error {
	if !g.client.Configured() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "stripe credential not configured")
	}
	return nil
}

// List returns the newest disputes first, capped at maxListLimit.
func (g *stripeGateway) List(ctx context.Context, limit int) ([]Dispute, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	params := &stripe.DisputeListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(limit))

	out := make([]Dispute, 0, limit)
	iter := dispute.List(params)
	for iter.Next() {
		out = append(out, fromStripe(iter.Dispute()))
		if len(out) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError(err, "list disputes")
	}
	return out, nil
}

// Retrieve fetches a single dispute by its Stripe ID.
func (g *stripeGateway) Retrieve(ctx context.Context, id string) (*Dispute, error) {
	if err := g.ready(); err != nil {
		return nil, err
	}

	params := &stripe.DisputeParams{}
	params.Context = ctx

	dp, err := dispute.Get(id, params)
	if err != nil {
		return nil, mapStripeError(err, "retrieve dispute")
	}
	mapped := fromStripe(dp)
	return &mapped, nil
}

func fromStripe(dp *stripe.Dispute) Dispute {
	if dp == nil {
		return Dispute{}
	}
	out := Dispute{
		ID:        dp.ID,
		Reason:    string(dp.Reason),
		Amount:    dp.Amount,
		Currency:  string(dp.Currency),
		Status:    enums.DisputeStatus(dp.Status),
		CreatedAt: time.Unix(dp.Created, 0).UTC(),
	}
	if dp.Charge != nil {
		out.ChargeID = dp.Charge.ID
	}
	if dp.PaymentIntent != nil {
		out.PaymentIntentID = dp.PaymentIntent.ID
	}
	if dp.EvidenceDetails != nil && dp.EvidenceDetails.DueBy > 0 {
		due := time.Unix(dp.EvidenceDetails.DueBy, 0).UTC()
		out.DueBy = &due
	}
	if ev := dp.Evidence; ev != nil {
		out.CustomerEvidence = DisputeContext{
			CustomerName:       ev.CustomerName,
			CustomerEmail:      ev.CustomerEmailAddress,
			BillingAddress:     ev.BillingAddress,
			ShippingAddress:    ev.ShippingAddress,
			ProductDescription: ev.ProductDescription,
			PurchaseIP:         ev.CustomerPurchaseIP,
		}
	}
	return out
}

// mapStripeError translates Stripe failures into typed errors so the HTTP
// layer can pick the right status without inspecting Stripe types.
func mapStripeError(err error, op string) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "dispute not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op+" failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, op+" failed")
}
