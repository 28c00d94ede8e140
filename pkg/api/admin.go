package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// Staff-only surface. The backend enforces the role; these calls simply fail
// with FORBIDDEN for ordinary users.

// AdminListOrders fetches orders across all customers.
func (c *Client) AdminListOrders(ctx context.Context, page pagination.Params) ([]types.Order, error) {
	var resp ordersResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.orders.list",
		method: http.MethodGet,
		path:   "/admin/orders/",
		query:  page.Query(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// AdminGetOrder fetches any customer's order.
func (c *Client) AdminGetOrder(ctx context.Context, orderID int) (*types.Order, error) {
	var resp orderResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.orders.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/admin/orders/%d/", orderID),
		fields: map[string]any{"order_id": orderID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// AdminUpdateOrderStatus moves an order to the given status.
func (c *Client) AdminUpdateOrderStatus(ctx context.Context, orderID int, status string) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.orders.update_status",
		method: http.MethodPost,
		path:   fmt.Sprintf("/admin/orders/%d/update-status/", orderID),
		body:   map[string]string{"status": status},
		fields: map[string]any{"order_id": orderID, "status": status},
	}, &resp)
}

type resourcesResponse struct {
	envelopeResponse
	Resources []types.OrderResource `json:"resources"`
}

// AdminOrderResources lists the produced files attached to an order.
func (c *Client) AdminOrderResources(ctx context.Context, orderID int) ([]types.OrderResource, error) {
	var resp resourcesResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.orders.resources",
		method: http.MethodGet,
		path:   fmt.Sprintf("/admin/orders/%d/resources/", orderID),
		fields: map[string]any{"order_id": orderID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Resources, nil
}

// AdminDeleteResource removes a produced file from an order.
func (c *Client) AdminDeleteResource(ctx context.Context, resourceID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.resources.delete",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/admin/resources/%d/delete/", resourceID),
		fields: map[string]any{"resource_id": resourceID},
	}, &resp)
}

type pricingTiersResponse struct {
	envelopeResponse
	Tiers []types.SizePricingTier `json:"tiers"`
}

type pricingTierResponse struct {
	envelopeResponse
	Tier types.SizePricingTier `json:"tier"`
}

// SizePricingParams creates or updates a pricing tier.
type SizePricingParams struct {
	MinSizeCm int             `json:"min_size_cm"`
	MaxSizeCm int             `json:"max_size_cm"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
}

// ListSizePricing fetches the embroidery size pricing tiers.
func (c *Client) ListSizePricing(ctx context.Context) ([]types.SizePricingTier, error) {
	var resp pricingTiersResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.pricing.list",
		method: http.MethodGet,
		path:   "/admin/embroidery-size-pricing/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Tiers, nil
}

// CreateSizePricing adds a pricing tier.
func (c *Client) CreateSizePricing(ctx context.Context, params SizePricingParams) (*types.SizePricingTier, error) {
	var resp pricingTierResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.pricing.create",
		method: http.MethodPost,
		path:   "/admin/embroidery-size-pricing/",
		body:   params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Tier, nil
}

// UpdateSizePricing rewrites a pricing tier.
func (c *Client) UpdateSizePricing(ctx context.Context, tierID int, params SizePricingParams) (*types.SizePricingTier, error) {
	var resp pricingTierResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.pricing.update",
		method: http.MethodPut,
		path:   fmt.Sprintf("/admin/embroidery-size-pricing/%d/", tierID),
		body:   params,
		fields: map[string]any{"tier_id": tierID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Tier, nil
}

// DeleteSizePricing removes a pricing tier.
func (c *Client) DeleteSizePricing(ctx context.Context, tierID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.pricing.delete",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/admin/embroidery-size-pricing/%d/", tierID),
		fields: map[string]any{"tier_id": tierID},
	}, &resp)
}

// AdminTokenCosts fetches the editable action price table.
func (c *Client) AdminTokenCosts(ctx context.Context) (types.TokenCosts, error) {
	var resp costsResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.token_costs.get",
		method: http.MethodGet,
		path:   "/admin/token-costs/",
	}, &resp)
	if err != nil {
		return types.TokenCosts{}, err
	}
	return resp.Costs, nil
}

// AdminSetTokenCosts rewrites the action price table.
func (c *Client) AdminSetTokenCosts(ctx context.Context, costs types.TokenCosts) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.token_costs.set",
		method: http.MethodPost,
		path:   "/admin/token-costs/",
		body:   map[string]types.TokenCosts{"costs": costs},
	}, &resp)
}

// TokenPackageParams creates or updates a purchasable token bundle.
type TokenPackageParams struct {
	Name     string          `json:"name"`
	Tokens   int             `json:"tokens"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
	IsActive bool            `json:"is_active"`
}

type tokenPackageResponse struct {
	envelopeResponse
	Package types.TokenPackage `json:"package"`
}

// ManageTokenPackages lists every package, active or not.
func (c *Client) ManageTokenPackages(ctx context.Context) ([]types.TokenPackage, error) {
	var resp packagesResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.packages.list",
		method: http.MethodGet,
		path:   "/token-packages/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

// CreateTokenPackage adds a purchasable bundle.
func (c *Client) CreateTokenPackage(ctx context.Context, params TokenPackageParams) (*types.TokenPackage, error) {
	var resp tokenPackageResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.packages.create",
		method: http.MethodPost,
		path:   "/token-packages/",
		body:   params,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Package, nil
}

// UpdateTokenPackage rewrites a bundle.
func (c *Client) UpdateTokenPackage(ctx context.Context, packageID int, params TokenPackageParams) (*types.TokenPackage, error) {
	var resp tokenPackageResponse
	err := c.do(ctx, requestSpec{
		op:     "admin.packages.update",
		method: http.MethodPut,
		path:   fmt.Sprintf("/token-packages/%d/", packageID),
		body:   params,
		fields: map[string]any{"package_id": packageID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Package, nil
}

// DeleteTokenPackage retires a bundle.
func (c *Client) DeleteTokenPackage(ctx context.Context, packageID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.packages.delete",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/token-packages/%d/", packageID),
		fields: map[string]any{"package_id": packageID},
	}, &resp)
}

// SetPackagePopular toggles the highlighted flag on a bundle.
func (c *Client) SetPackagePopular(ctx context.Context, packageID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "admin.packages.popularity",
		method: http.MethodPost,
		path:   fmt.Sprintf("/token-packages/%d/popularity/", packageID),
		fields: map[string]any{"package_id": packageID},
	}, &resp)
}
