package devserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	acct, ok := s.state.accounts[body.Username]
	if !ok || acct.password != body.Password {
		s.state.mu.Unlock()
		writeError(w, http.StatusBadRequest, "invalid username or password")
		return
	}
	profile := acct.profile
	s.state.mu.Unlock()

	s.writeTokenPair(w, profile)
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := decode(r, &body); err != nil || body.IDToken == "" {
		writeError(w, http.StatusBadRequest, "id_token is required")
		return
	}

	// Any non-empty token signs in the seeded customer account.
	s.state.mu.Lock()
	profile := s.state.accounts["stitcher"].profile
	s.state.mu.Unlock()

	s.writeTokenPair(w, profile)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.accounts[body.Username]; exists {
		writeError(w, http.StatusBadRequest, "username already taken")
		return
	}
	acct := &account{
		profile: types.UserProfile{
			ID:       s.state.id(),
			Username: body.Username,
			Email:    body.Email,
			FullName: body.FullName,
		},
		password:      body.Password,
		designs:       map[int]*types.Design{},
		orders:        map[int]*types.Order{},
		conversations: map[int]*conversation{},
	}
	s.state.accounts[body.Username] = acct

	writeSuccess(w, map[string]any{
		"message": "registered, check your email to verify the account",
		"user":    acct.profile,
	})
}

func (s *Server) writeTokenPair(w http.ResponseWriter, profile types.UserProfile) {
	access, err := s.issueToken(profile.Username, time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	refresh, err := s.issueToken(profile.Username, 24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token signing failed")
		return
	}
	writeSuccess(w, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          profile,
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.state.mu.Lock()
	profile := acct.profile
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"user": profile})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var body map[string]any
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	if v, ok := body["first_name"].(string); ok {
		acct.profile.FirstName = v
	}
	if v, ok := body["full_name"].(string); ok {
		acct.profile.FullName = v
	}
	if v, ok := body["email"].(string); ok && v != "" {
		acct.profile.Email = v
		acct.profile.EmailVerified = false
	}
	profile := acct.profile
	s.state.mu.Unlock()

	writeSuccess(w, map[string]any{"user": profile})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var body struct {
		Current string `json:"current_password"`
		Next    string `json:"new_password"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if acct.password != body.Current {
		writeError(w, http.StatusBadRequest, "current password is incorrect")
		return
	}
	if len(body.Next) < 8 {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}
	acct.password = body.Next
	writeSuccess(w, map[string]any{"message": "password changed"})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	balance := acct.balance
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"tokens": balance})
}

func (s *Server) handleCosts(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	costs := s.state.costs
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"costs": costs})
}

func (s *Server) handlePackages(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	packages := make([]types.TokenPackage, 0, len(s.state.packages))
	for _, pkg := range s.state.packages {
		packages = append(packages, *pkg)
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"packages": packages})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	transactions := make([]types.TokenTransaction, len(acct.transactions))
	copy(transactions, acct.transactions)
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"transactions": transactions})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	var body struct {
		DesignID         *int   `json:"design_id"`
		Prompt           string `json:"prompt"`
		MachineBrand     string `json:"machine_brand"`
		RequestedFormat  string `json:"requested_format"`
		EmbroiderySizeCm int    `json:"embroidery_size_cm"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	cost := s.state.costs.AIImageGeneration
	if !s.state.charge(acct, cost, "AI image generation") {
		writeError(w, http.StatusPaymentRequired,
			fmt.Sprintf("Insufficient token balance: %d required, %d available", cost, acct.balance))
		return
	}

	var design *types.Design
	if body.DesignID != nil {
		design = acct.designs[*body.DesignID]
	}
	if design == nil {
		design = &types.Design{ID: s.state.id(), CreatedAt: s.state.now()}
		acct.designs[design.ID] = design
	}
	design.Prompt = body.Prompt
	design.MachineBrand = body.MachineBrand
	design.RequestedFormat = body.RequestedFormat
	design.EmbroiderySizeCm = body.EmbroiderySizeCm
	design.NormalImage = fmt.Sprintf("/media/designs/%d/normal.png", design.ID)
	design.Status = "generated"
	design.UpdatedAt = s.state.now()

	writeSuccess(w, map[string]any{"design": *design})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	var body struct {
		DesignID int `json:"design_id"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	design, ok := acct.designs[body.DesignID]
	if !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	design.EmbroideryPreview = fmt.Sprintf("/media/designs/%d/preview.png", design.ID)
	design.UpdatedAt = s.state.now()
	writeSuccess(w, map[string]any{"design": *design})
}

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	designs := make([]types.Design, 0, len(acct.designs))
	for _, d := range acct.designs {
		designs = append(designs, *d)
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"designs": designs})
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	designID, err := urlInt(r, "designID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid design id")
		return
	}
	s.state.mu.Lock()
	design, ok := acct.designs[designID]
	var snapshot types.Design
	if ok {
		snapshot = *design
	}
	s.state.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	writeSuccess(w, map[string]any{"design": snapshot})
}

func (s *Server) handleUpdateDesign(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	designID, err := urlInt(r, "designID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid design id")
		return
	}
	var settings types.DesignSettings
	if err := decode(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	design, ok := acct.designs[designID]
	if !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	if settings.Name != "" {
		design.Name = settings.Name
	}
	if settings.MachineBrand != "" {
		design.MachineBrand = settings.MachineBrand
	}
	if settings.RequestedFormat != "" {
		design.RequestedFormat = settings.RequestedFormat
	}
	if settings.EmbroiderySizeCm > 0 {
		design.EmbroiderySizeCm = settings.EmbroiderySizeCm
	}
	design.UpdatedAt = s.state.now()
	writeSuccess(w, map[string]any{"design": *design})
}

func (s *Server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	designID, err := urlInt(r, "designID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid design id")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := acct.designs[designID]; !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	delete(acct.designs, designID)
	delete(s.state.designFeatures, designID)
	writeSuccess(w, map[string]any{"message": "design deleted"})
}

func (s *Server) handleAvailableFeatures(w http.ResponseWriter, _ *http.Request) {
	s.state.mu.Lock()
	features := make([]types.DesignFeature, 0, len(s.state.features))
	for _, f := range s.state.features {
		if f.IsActive {
			features = append(features, *f)
		}
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"features": features})
}

func (s *Server) handleAttachFeature(w http.ResponseWriter, r *http.Request) {
	s.mutateFeature(w, r, true)
}

func (s *Server) handleDetachFeature(w http.ResponseWriter, r *http.Request) {
	s.mutateFeature(w, r, false)
}

func (s *Server) mutateFeature(w http.ResponseWriter, r *http.Request, attach bool) {
	acct := s.account(r)
	var body struct {
		DesignID  int `json:"design_id"`
		FeatureID int `json:"feature_id"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, ok := acct.designs[body.DesignID]; !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	feature, ok := s.state.features[body.FeatureID]
	if !ok {
		writeError(w, http.StatusNotFound, "feature not found")
		return
	}

	attached := s.state.designFeatures[body.DesignID]
	if attach {
		for _, id := range attached {
			if id == body.FeatureID {
				writeError(w, http.StatusBadRequest, "feature already added")
				return
			}
		}
		if !s.state.charge(acct, feature.TokenCost, "feature: "+feature.Name) {
			writeError(w, http.StatusPaymentRequired,
				fmt.Sprintf("Insufficient token balance: %d required, %d available", feature.TokenCost, acct.balance))
			return
		}
		s.state.designFeatures[body.DesignID] = append(attached, body.FeatureID)
		writeSuccess(w, map[string]any{"message": "feature added"})
		return
	}

	kept := attached[:0]
	for _, id := range attached {
		if id != body.FeatureID {
			kept = append(kept, id)
		}
	}
	s.state.designFeatures[body.DesignID] = kept
	writeSuccess(w, map[string]any{"message": "feature removed"})
}

func (s *Server) handleDesignFeatures(w http.ResponseWriter, r *http.Request) {
	designID, err := urlInt(r, "designID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid design id")
		return
	}
	s.state.mu.Lock()
	features := make([]types.DesignFeature, 0)
	for _, id := range s.state.designFeatures[designID] {
		if f, ok := s.state.features[id]; ok {
			features = append(features, *f)
		}
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"features": features})
}

func (s *Server) handleViewCart(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	items := cartSnapshot(acct)
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"cart_items": items, "count": len(items)})
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	designID, err := urlInt(r, "designID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid design id")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	design, ok := acct.designs[designID]
	if !ok {
		writeError(w, http.StatusNotFound, "design not found")
		return
	}
	for _, item := range acct.cart {
		if item.DesignID == designID {
			writeError(w, http.StatusBadRequest, "design is already in the cart")
			return
		}
	}
	acct.cart = append(acct.cart, types.CartItem{
		ID:            s.state.id(),
		DesignID:      designID,
		DesignDetails: designDetails(design),
	})
	writeSuccess(w, map[string]any{"cart_items": cartSnapshot(acct), "count": len(acct.cart)})
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	itemID, err := urlInt(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	kept := acct.cart[:0]
	found := false
	for _, item := range acct.cart {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	acct.cart = kept
	if !found {
		writeError(w, http.StatusNotFound, "cart item not found")
		return
	}
	writeSuccess(w, map[string]any{"cart_items": cartSnapshot(acct), "count": len(acct.cart)})
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	acct.cart = nil
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"cart_items": []types.CartItem{}, "count": 0})
}

func (s *Server) handleValidateCart(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	kept := acct.cart[:0]
	for _, item := range acct.cart {
		if _, ok := acct.designs[item.DesignID]; ok {
			kept = append(kept, item)
		}
	}
	acct.cart = kept
	writeSuccess(w, map[string]any{"cart_items": cartSnapshot(acct), "count": len(acct.cart)})
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	var body struct {
		RequestedFormats []string `json:"requested_formats"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if len(acct.cart) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if len(body.RequestedFormats) == 0 {
		writeError(w, http.StatusBadRequest, "at least one format is required")
		return
	}
	for _, format := range body.RequestedFormats {
		if _, err := enums.ParseFormatCode(format); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	cost := s.state.costs.OrderPlacement * len(acct.cart)
	if !s.state.charge(acct, cost, "order placement") {
		writeError(w, http.StatusPaymentRequired,
			fmt.Sprintf("Insufficient token balance: %d required, %d available", cost, acct.balance))
		return
	}

	order := &types.Order{
		ID:               s.state.id(),
		Status:           enums.OrderStatusSubmitted,
		RequestedFormats: body.RequestedFormats,
		TokensSpent:      cost,
		CreatedAt:        s.state.now(),
		UpdatedAt:        s.state.now(),
	}
	for _, item := range acct.cart {
		order.Items = append(order.Items, types.OrderItem{
			ID:            s.state.id(),
			DesignID:      item.DesignID,
			DesignDetails: item.DesignDetails,
		})
	}
	acct.orders[order.ID] = order
	acct.cart = nil

	writeSuccess(w, map[string]any{"orders": []types.Order{*order}})
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	orders := make([]types.Order, 0, len(acct.orders))
	for _, order := range acct.orders {
		orders = append(orders, *order)
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"orders": orders})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	s.state.mu.Lock()
	order, ok := acct.orders[orderID]
	var snapshot types.Order
	if ok {
		snapshot = *order
	}
	s.state.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeSuccess(w, map[string]any{"order": snapshot})
}

func (s *Server) handleRetryOrder(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	order, ok := acct.orders[orderID]
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if order.Status != enums.OrderStatusFailed {
		writeError(w, http.StatusBadRequest, "only failed orders can be retried")
		return
	}
	order.Status = enums.OrderStatusSubmitted
	order.UpdatedAt = s.state.now()
	writeSuccess(w, map[string]any{"order": *order})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	orderID, err := urlInt(r, "orderID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	format := chi.URLParam(r, "format")
	if _, err := enums.ParseFormatCode(format); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.state.mu.Lock()
	order, ok := acct.orders[orderID]
	var done bool
	if ok {
		done = order.Status == enums.OrderStatusCompleted || order.Status == enums.OrderStatusSubmitted
	}
	s.state.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if !done {
		writeError(w, http.StatusConflict, "order files are not ready yet")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%d.%s", orderID, format))
	fmt.Fprintf(w, "STUB-EMBROIDERY-FILE order=%d format=%s", orderID, format)
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	var body struct {
		PackageID int `json:"package_id"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	pkg, ok := s.state.packages[body.PackageID]
	if !ok || !pkg.IsActive {
		writeError(w, http.StatusNotFound, "token package not found")
		return
	}
	sessionID := fmt.Sprintf("dev_session_%d", s.state.id())
	s.state.payments[sessionID] = pendingPayment{
		username:  acct.profile.Username,
		packageID: pkg.ID,
	}
	writeSuccess(w, map[string]any{
		"checkout_url": "https://pay.example.com/session/" + sessionID,
		"session_id":   sessionID,
	})
}

func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	payment, ok := s.state.payments[sessionID]
	if !ok {
		writeError(w, http.StatusNotFound, "payment session not found")
		return
	}
	acct, ok := s.state.accounts[payment.username]
	if !ok {
		writeError(w, http.StatusNotFound, "payment session not found")
		return
	}
	pkg, ok := s.state.packages[payment.packageID]
	if !ok {
		writeError(w, http.StatusNotFound, "token package not found")
		return
	}
	delete(s.state.payments, sessionID)
	s.state.credit(acct, pkg.Tokens, "package: "+pkg.Name)

	writeSuccess(w, map[string]any{
		"tokens_added": pkg.Tokens,
		"balance":      acct.balance,
	})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	conversations := make([]types.Conversation, 0, len(acct.conversations))
	for _, conv := range acct.conversations {
		conversations = append(conversations, conv.meta)
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"conversations": conversations})
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	conversationID, err := urlInt(r, "conversationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	conv, ok := acct.conversations[conversationID]
	if !ok {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	conv.meta.UnreadCount = 0
	messages := make([]types.ChatMessage, len(conv.messages))
	copy(messages, conv.messages)
	writeSuccess(w, map[string]any{
		"conversation": conv.meta,
		"messages":     messages,
	})
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	conversationID, err := urlInt(r, "conversationID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation id")
		return
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := decode(r, &body); err != nil || strings.TrimSpace(body.Body) == "" {
		writeError(w, http.StatusBadRequest, "message body is required")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	conv, ok := acct.conversations[conversationID]
	if !ok {
		conv = &conversation{meta: types.Conversation{ID: conversationID}}
		acct.conversations[conversationID] = conv
	}
	message := types.ChatMessage{
		ID:        s.state.id(),
		Sender:    acct.profile.Username,
		Body:      strings.TrimSpace(body.Body),
		CreatedAt: s.state.now(),
	}
	conv.messages = append(conv.messages, message)
	conv.meta.UpdatedAt = message.CreatedAt
	writeSuccess(w, map[string]any{"chat_message": message})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	acct := s.account(r)
	s.state.mu.Lock()
	count := 0
	for _, conv := range acct.conversations {
		count += conv.meta.UnreadCount
	}
	s.state.mu.Unlock()
	writeSuccess(w, map[string]any{"count": count})
}
