package disputes

// reasonTemplates maps Stripe dispute reasons to the evidence a merchant
// should assemble before responding. Unknown reasons fall back to general.
var reasonTemplates = map[string]Template{
	"fraudulent": {
		Required: []string{"Invoice", "Customer communication", "Proof of delivery"},
		Optional: []string{"Shipping tracking", "Customer login history", "Terms of service"},
	},
	"product_not_received": {
		Required: []string{"Shipping tracking", "Proof of delivery", "Invoice"},
		Optional: []string{"Customer communication", "Return policy"},
	},
	"unrecognized": {
		Required: []string{"Invoice", "Customer communication", "Proof of delivery"},
		Optional: []string{"Customer login history", "Terms of service"},
	},
	"duplicate": {
		Required: []string{"Invoice", "Payment receipt", "Customer communication"},
		Optional: []string{"Order confirmation", "Shipping tracking"},
	},
	"subscription_canceled": {
		Required: []string{"Terms of service", "Cancellation policy", "Customer communication"},
		Optional: []string{"Invoice", "Usage logs"},
	},
	"product_unacceptable": {
		Required: []string{"Product description", "Customer communication", "Return policy"},
		Optional: []string{"Invoice", "Proof of delivery"},
	},
	"credit_not_processed": {
		Required: []string{"Refund receipt", "Customer communication"},
		Optional: []string{"Invoice", "Return tracking"},
	},
	"general": {
		Required: []string{"Invoice", "Customer communication"},
		Optional: []string{"Terms of service", "Proof of delivery"},
	},
}

// TemplateForReason resolves the evidence checklist for a dispute reason.
func TemplateForReason(reason string) Template {
	tpl, ok := reasonTemplates[reason]
	if !ok {
		tpl = reasonTemplates["general"]
		tpl.Reason = reason
		if reason == "" {
			tpl.Reason = "general"
		}
		return tpl
	}
	tpl.Reason = reason
	return tpl
}
