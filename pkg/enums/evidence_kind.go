package enums

import "fmt"

// EvidenceKind classifies an uploaded evidence file.
type EvidenceKind string

const (
	EvidenceKindInvoice    EvidenceKind = "invoice"
	EvidenceKindTracking   EvidenceKind = "tracking"
	EvidenceKindChat       EvidenceKind = "chat"
	EvidenceKindTOS        EvidenceKind = "tos"
	EvidenceKindScreenshot EvidenceKind = "screenshot"
	EvidenceKindOther      EvidenceKind = "other"
)

var validEvidenceKinds = []EvidenceKind{
	EvidenceKindInvoice,
	EvidenceKindTracking,
	EvidenceKindChat,
	EvidenceKindTOS,
	EvidenceKindScreenshot,
	EvidenceKindOther,
}

// String returns the literal string for the kind.
func (k EvidenceKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is known.
func (k EvidenceKind) IsValid() bool {
	for _, candidate := range validEvidenceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseEvidenceKind converts raw input into an EvidenceKind.
func ParseEvidenceKind(value string) (EvidenceKind, error) {
	for _, candidate := range validEvidenceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid evidence kind %q", value)
}
