package api

import (
	"context"
	"net/http"

	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type balanceResponse struct {
	envelopeResponse
	Tokens int `json:"tokens"`
}

// TokenBalance fetches the user's current token balance.
func (c *Client) TokenBalance(ctx context.Context) (int, error) {
	var resp balanceResponse
	err := c.do(ctx, requestSpec{
		op:     "tokens.balance",
		method: http.MethodGet,
		path:   "/tokens/balance/",
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Tokens, nil
}

type costsResponse struct {
	envelopeResponse
	Costs types.TokenCosts `json:"costs"`
}

// TokenCosts fetches the current action price table.
func (c *Client) TokenCosts(ctx context.Context) (types.TokenCosts, error) {
	var resp costsResponse
	err := c.do(ctx, requestSpec{
		op:     "tokens.costs",
		method: http.MethodGet,
		path:   "/tokens/costs/",
	}, &resp)
	if err != nil {
		return types.TokenCosts{}, err
	}
	return resp.Costs, nil
}

type packagesResponse struct {
	envelopeResponse
	Packages []types.TokenPackage `json:"packages"`
}

// TokenPackages lists the purchasable token bundles.
func (c *Client) TokenPackages(ctx context.Context) ([]types.TokenPackage, error) {
	var resp packagesResponse
	err := c.do(ctx, requestSpec{
		op:     "tokens.packages",
		method: http.MethodGet,
		path:   "/tokens/packages/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Packages, nil
}

type transactionsResponse struct {
	envelopeResponse
	Transactions []types.TokenTransaction `json:"transactions"`
}

// TokenTransactions lists ledger entries for the user's token account.
func (c *Client) TokenTransactions(ctx context.Context, page pagination.Params) ([]types.TokenTransaction, error) {
	var resp transactionsResponse
	err := c.do(ctx, requestSpec{
		op:     "tokens.transactions",
		method: http.MethodGet,
		path:   "/tokens/transactions/",
		query:  page.Query(),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}
