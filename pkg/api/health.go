package api

import (
	"context"
	"net/http"
)

type healthResponse struct {
	envelopeResponse
	Status string `json:"status"`
}

// Health checks backend liveness. Returns the reported status string.
func (c *Client) Health(ctx context.Context) (string, error) {
	var resp healthResponse
	err := c.do(ctx, requestSpec{
		op:     "health",
		method: http.MethodGet,
		path:   "/health/",
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}
