package api

import (
	"context"
	"net/http"
	"net/url"
)

type checkoutSessionResponse struct {
	envelopeResponse
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// CheckoutSession is a hosted payment page for a token package purchase.
type CheckoutSession struct {
	URL       string
	SessionID string
}

// CreateCheckoutSession starts a token package purchase. Payment itself
// happens on the processor's hosted page; the client only opens the URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, packageID int) (*CheckoutSession, error) {
	var resp checkoutSessionResponse
	err := c.do(ctx, requestSpec{
		op:     "payment.create_checkout",
		method: http.MethodPost,
		path:   "/payment/create-checkout/",
		body:   map[string]int{"package_id": packageID},
		fields: map[string]any{"package_id": packageID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{URL: resp.CheckoutURL, SessionID: resp.SessionID}, nil
}

type verifyPaymentResponse struct {
	envelopeResponse
	TokensAdded int `json:"tokens_added"`
	Balance     int `json:"balance"`
}

// VerifyPayment confirms a completed payment session and reports the credited
// tokens plus the fresh balance.
func (c *Client) VerifyPayment(ctx context.Context, sessionID string) (added, balance int, err error) {
	query := url.Values{}
	query.Set("session_id", sessionID)

	var resp verifyPaymentResponse
	err = c.do(ctx, requestSpec{
		op:     "payment.verify",
		method: http.MethodGet,
		path:   "/payment/verify/",
		query:  query,
	}, &resp)
	if err != nil {
		return 0, 0, err
	}
	return resp.TokensAdded, resp.Balance, nil
}
