package devserver

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

func (s *Server) handleAdminListOrders(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	orders := make([]types.Order, 0)
	for _, acct := range s.state.accounts {
		for _, order := range acct.orders {
			orders = append(orders, *order)
		}
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"orders": orders})
}

func (s *Server) handleAdminGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	s.state.mu.Lock()
	_, order := s.state.findOrder(orderID)
	var snapshot types.Order
	if order != nil {
		snapshot = *order
	}
	s.state.mu.Unlock()
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeSuccess(w, map[string]any{"order": snapshot})
}

func (s *Server) handleAdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := enums.ParseOrderStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	_, order := s.state.findOrder(orderID)
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	order.Status = status
	order.UpdatedAt = s.state.now()
	writeSuccess(w, map[string]any{"order": *order})
}

func (s *Server) handleAdminResources(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	s.state.mu.Lock()
	resources := make([]types.OrderResource, 0)
	for _, res := range s.state.resources {
		if res.OrderID == orderID {
			resources = append(resources, *res)
		}
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"resources": resources})
}

func (s *Server) handleAdminDeleteResource(w http.ResponseWriter, r *http.Request) {
	resourceID, err := urlInt(r, "resourceID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := s.state.resources[resourceID]; !ok {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	delete(s.state.resources, resourceID)
	writeSuccess(w, map[string]any{"message": "resource deleted"})
}

type tierBody struct {
	MinSizeCm int             `json:"min_size_cm"`
	MaxSizeCm int             `json:"max_size_cm"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency"`
}

func (s *Server) handleListTiers(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	tiers := make([]types.SizePricingTier, 0, len(s.state.tiers))
	for _, tier := range s.state.tiers {
		tiers = append(tiers, *tier)
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"tiers": tiers})
}

func (s *Server) handleCreateTier(w http.ResponseWriter, r *http.Request) {
	var body tierBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.MinSizeCm < 1 || body.MaxSizeCm <= body.MinSizeCm {
		writeError(w, http.StatusBadRequest, "invalid size range")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	tier := &types.SizePricingTier{
		ID:        s.state.id(),
		MinSizeCm: body.MinSizeCm,
		MaxSizeCm: body.MaxSizeCm,
		Price:     body.Price,
		Currency:  body.Currency,
	}
	s.state.tiers[tier.ID] = tier
	writeSuccess(w, map[string]any{"tier": *tier})
}

func (s *Server) handleUpdateTier(w http.ResponseWriter, r *http.Request) {
	tierID, err := urlInt(r, "tierID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tier id")
		return
	}
	var body tierBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	tier, ok := s.state.tiers[tierID]
	if !ok {
		writeError(w, http.StatusNotFound, "pricing tier not found")
		return
	}
	tier.MinSizeCm = body.MinSizeCm
	tier.MaxSizeCm = body.MaxSizeCm
	tier.Price = body.Price
	tier.Currency = body.Currency
	writeSuccess(w, map[string]any{"tier": *tier})
}

func (s *Server) handleDeleteTier(w http.ResponseWriter, r *http.Request) {
	tierID, err := urlInt(r, "tierID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tier id")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := s.state.tiers[tierID]; !ok {
		writeError(w, http.StatusNotFound, "pricing tier not found")
		return
	}
	delete(s.state.tiers, tierID)
	writeSuccess(w, map[string]any{"message": "pricing tier deleted"})
}

func (s *Server) handleAdminCosts(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	costs := s.state.costs
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"costs": costs})
}

func (s *Server) handleAdminSetCosts(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Costs types.TokenCosts `json:"costs"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Costs.AIImageGeneration < 1 || body.Costs.OrderPlacement < 1 {
		writeError(w, http.StatusBadRequest, "token costs must be at least 1")
		return
	}

	s.state.mu.Lock()
	s.state.costs = body.Costs
	costs := s.state.costs
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"costs": costs})
}

type packageBody struct {
	Name     string          `json:"name"`
	Tokens   int             `json:"tokens"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	IsActive bool            `json:"is_active"`
}

func (s *Server) handleCreatePackage(w http.ResponseWriter, r *http.Request) {
	var body packageBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" || body.Tokens < 1 {
		writeError(w, http.StatusBadRequest, "name and a positive token amount are required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	pkg := &types.TokenPackage{
		ID:       s.state.id(),
		Name:     body.Name,
		Tokens:   body.Tokens,
		Price:    body.Price,
		Currency: body.Currency,
		IsActive: body.IsActive,
	}
	s.state.packages[pkg.ID] = pkg
	writeSuccess(w, map[string]any{"package": *pkg})
}

func (s *Server) handleUpdatePackage(w http.ResponseWriter, r *http.Request) {
	packageID, err := urlInt(r, "packageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid package id")
		return
	}
	var body packageBody
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	pkg, ok := s.state.packages[packageID]
	if !ok {
		writeError(w, http.StatusNotFound, "token package not found")
		return
	}
	pkg.Name = body.Name
	pkg.Tokens = body.Tokens
	pkg.Price = body.Price
	pkg.Currency = body.Currency
	pkg.IsActive = body.IsActive
	writeSuccess(w, map[string]any{"package": *pkg})
}

func (s *Server) handleDeletePackage(w http.ResponseWriter, r *http.Request) {
	packageID, err := urlInt(r, "packageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid package id")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := s.state.packages[packageID]; !ok {
		writeError(w, http.StatusNotFound, "token package not found")
		return
	}
	delete(s.state.packages, packageID)
	writeSuccess(w, map[string]any{"message": "token package deleted"})
}

func (s *Server) handleMarkPopular(w http.ResponseWriter, r *http.Request) {
	packageID, err := urlInt(r, "packageID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid package id")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	pkg, ok := s.state.packages[packageID]
	if !ok {
		writeError(w, http.StatusNotFound, "token package not found")
		return
	}

	// Popularity is a single highlight slot.
	for _, other := range s.state.packages {
		other.IsPopular = false
	}
	pkg.IsPopular = true
	writeSuccess(w, map[string]any{"package": *pkg})
}
