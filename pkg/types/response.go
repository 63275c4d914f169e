package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the wire shape for every failed request: a
// human-readable message plus the machine code that produced it.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
