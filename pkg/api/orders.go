package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type ordersResponse struct {
	envelopeResponse
	Orders []types.Order `json:"orders"`
}

// ListOrders fetches the user's orders, newest first.
func (c *Client) ListOrders(ctx context.Context, page pagination.Params) ([]types.Order, error) {
	var resp ordersResponse
	err := c.do(ctx, requestSpec{
		op:     "orders.list",
		method: http.MethodGet,
		path:   "/orders/list/",
		query:  page.Query(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

type orderResponse struct {
	envelopeResponse
	Order types.Order `json:"order"`
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID int) (*types.Order, error) {
	var resp orderResponse
	err := c.do(ctx, requestSpec{
		op:     "orders.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/orders/%d/", orderID),
		fields: map[string]any{"order_id": orderID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// RetryOrder asks the backend to reprocess a failed order.
func (c *Client) RetryOrder(ctx context.Context, orderID int) (*types.Order, error) {
	var resp orderResponse
	err := c.do(ctx, requestSpec{
		op:     "orders.retry",
		method: http.MethodPost,
		path:   fmt.Sprintf("/orders/%d/retry/", orderID),
		fields: map[string]any{"order_id": orderID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// DownloadOrderFile streams a produced embroidery file into w. Unlike the
// JSON endpoints the payload here is the raw file body.
func (c *Client) DownloadOrderFile(ctx context.Context, orderID int, format string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/download/%s/", orderID, format), nil, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.transportError(ctx, "orders.download", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return c.handleUnauthorized(ctx, "orders.download")
	}
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(domainCodeForStatus(resp.StatusCode),
			fmt.Sprintf("download failed with status %d", resp.StatusCode))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stream order file")
	}
	return nil
}
