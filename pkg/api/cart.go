package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// CartView is the full server-side cart state.
type CartView struct {
	Items []types.CartItem
	Count int
}

type cartResponse struct {
	envelopeResponse
	CartItems []types.CartItem `json:"cart_items"`
	Count     int              `json:"count"`
}

// ViewCart fetches the cart. Callers replace any local cache wholesale; the
// server owns cart contents.
func (c *Client) ViewCart(ctx context.Context) (*CartView, error) {
	var resp cartResponse
	err := c.do(ctx, requestSpec{
		op:     "cart.view",
		method: http.MethodGet,
		path:   "/cart/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &CartView{Items: resp.CartItems, Count: resp.Count}, nil
}

// AddToCart stages a design for checkout.
func (c *Client) AddToCart(ctx context.Context, designID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "cart.add",
		method: http.MethodPost,
		path:   fmt.Sprintf("/cart/add/%d/", designID),
		fields: map[string]any{"design_id": designID},
	}, &resp)
}

// RemoveCartItem deletes one cart item.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "cart.remove",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/cart/%d/remove/", itemID),
		fields: map[string]any{"item_id": itemID},
	}, &resp)
}

// ClearCart drops every item.
func (c *Client) ClearCart(ctx context.Context) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "cart.clear",
		method: http.MethodPost,
		path:   "/cart/clear/",
	}, &resp)
}

// ValidateCart runs the backend's pre-checkout checks without placing orders.
func (c *Client) ValidateCart(ctx context.Context) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "cart.validate",
		method: http.MethodPost,
		path:   "/cart/validate/",
	}, &resp)
}

type checkoutResponse struct {
	envelopeResponse
	Orders []types.Order `json:"orders"`
}

// Checkout converts the cart into orders, one format set applied to the whole
// order. The server clears the cart and deducts tokens on success.
func (c *Client) Checkout(ctx context.Context, requestedFormats []string) ([]types.Order, error) {
	var resp checkoutResponse
	err := c.do(ctx, requestSpec{
		op:     "cart.checkout",
		method: http.MethodPost,
		path:   "/cart/checkout/",
		body:   map[string]any{"requested_formats": requestedFormats},
		fields: map[string]any{"formats": requestedFormats},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
