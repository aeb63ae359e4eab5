package errors

// ErrorInfo carries the error portion of an error response body.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MetaInfo carries request metadata echoed back on errors.
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the envelope returned for all error responses.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorInfo `json:"error"`
	Meta    MetaInfo  `json:"meta"`
}
