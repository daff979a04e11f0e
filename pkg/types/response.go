package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// Flash is a one-shot message surfaced to the storefront after a redirect.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RedirectBody is written alongside 302 responses so API clients can follow the target.
type RedirectBody struct {
	Location string  `json:"location"`
	Flashes  []Flash `json:"flashes,omitempty"`
}
