// Package types holds the wire envelopes shared by every endpoint. A
// response is either data or a coded error, never both.
package types

// SuccessEnvelope wraps every successful response body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine-readable error shape. Details is populated for
// errors safe to elaborate on, such as an insufficient-stock rejection
// reporting the available balance.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed response body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
