package types

// Envelope is the top-level shape every backend response shares: a success
// flag plus an error string on failure. Endpoint payloads embed it.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
