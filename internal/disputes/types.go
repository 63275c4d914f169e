package disputes

import (
	"time"

	"github.com/disputedesk/disputedesk-backend/pkg/enums"
)

// Dispute is the API-facing view of a charge dispute. Amounts stay in the
// smallest currency unit; formatting happens at render time.
type Dispute struct {
	ID               string              `json:"id"`
	ChargeID         string              `json:"chargeId,omitempty"`
	PaymentIntentID  string              `json:"paymentIntentId,omitempty"`
	Reason           string              `json:"reason"`
	Amount           int64               `json:"amount"`
	Currency         string              `json:"currency"`
	Status           enums.DisputeStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	DueBy            *time.Time          `json:"dueBy,omitempty"`
	CustomerEvidence DisputeContext      `json:"customerEvidence"`
}

// DisputeContext carries the cardholder details Stripe attaches to a dispute.
type DisputeContext struct {
	CustomerName       string `json:"customerName,omitempty"`
	CustomerEmail      string `json:"customerEmail,omitempty"`
	BillingAddress     string `json:"billingAddress,omitempty"`
	ShippingAddress    string `json:"shippingAddress,omitempty"`
	ProductDescription string `json:"productDescription,omitempty"`
	PurchaseIP         string `json:"purchaseIp,omitempty"`
}

// Template lists the evidence a merchant should gather for a dispute reason.
type Template struct {
	Reason   string   `json:"reason"`
	Required []string `json:"required"`
	Optional []string `json:"optional"`
}
