package types

// SuccessEnvelope wraps every successful API payload under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError carries the machine-readable code alongside a human message.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the failure counterpart of SuccessEnvelope.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
