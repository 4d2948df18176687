// Package api defines the response bodies shared by the HTTP handlers.
package api

// ErrorResponse is the body returned for every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}
