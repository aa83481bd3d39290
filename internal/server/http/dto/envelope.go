package dto

// Envelope wraps every API response. Status mirrors the HTTP status code.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
