package types

// SuccessEnvelope wraps every 2xx body as {"data": ...}.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine readable half of a failure response. Code is one of
// the pkg/errors codes; Details is only set for codes that allow it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// WebhookAck is returned to the gateway for every accepted delivery,
// including duplicates and ignored event types.
type WebhookAck struct {
	Received bool `json:"received"`
}

// HealthStatus is the body of the liveness and readiness probes. Checks maps
// a dependency name to ok, down or disabled.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
