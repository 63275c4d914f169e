package enums

// DisputeStatus mirrors the lifecycle states the payment provider reports
// for a dispute. Disputes are never persisted locally, so unknown values
// pass through untouched rather than failing the request.
type DisputeStatus string

const (
	DisputeStatusNeedsResponse        DisputeStatus = "needs_response"
	DisputeStatusUnderReview          DisputeStatus = "under_review"
	DisputeStatusWarningNeedsResponse DisputeStatus = "warning_needs_response"
	DisputeStatusWarningUnderReview   DisputeStatus = "warning_under_review"
	DisputeStatusWarningClosed        DisputeStatus = "warning_closed"
	DisputeStatusChargeRefunded       DisputeStatus = "charge_refunded"
	DisputeStatusLost                 DisputeStatus = "lost"
	DisputeStatusWon                  DisputeStatus = "won"
)

// String returns the literal string for the status.
func (s DisputeStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the provider's known states.
func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeStatusNeedsResponse,
		DisputeStatusUnderReview,
		DisputeStatusWarningNeedsResponse,
		DisputeStatusWarningUnderReview,
		DisputeStatusWarningClosed,
		DisputeStatusChargeRefunded,
		DisputeStatusLost,
		DisputeStatusWon:
		return true
	}
	return false
}
