package tokens

import (
	"context"
	"fmt"
	"sync"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// Fallback action prices, used until the backend's table loads. They match
// the backend's own seeded defaults.
const (
	DefaultGenerationCost = 2
	DefaultOrderCost      = 1
)

type backend interface {
	TokenBalance(ctx context.Context) (int, error)
	TokenCosts(ctx context.Context) (types.TokenCosts, error)
	TokenPackages(ctx context.Context) ([]types.TokenPackage, error)
	TokenTransactions(ctx context.Context, page pagination.Params) ([]types.TokenTransaction, error)
	CreateCheckoutSession(ctx context.Context, packageID int) (*api.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID string) (added, balance int, err error)
}

// Service tracks the user's token balance and the price of token-costing
// actions. The balance is a local mirror of the backend's ledger: refreshed
// on demand, nudged optimistically after local spends, and corrected by the
// next refresh.
type Service interface {
	Refresh(ctx context.Context) (int, error)
	Balance() int
	SpendLocally(amount int)
	CreditLocally(amount int)
	Costs(ctx context.Context) types.TokenCosts
	Packages(ctx context.Context) ([]types.TokenPackage, error)
	Transactions(ctx context.Context, page pagination.Params) ([]types.TokenTransaction, error)
	StartPurchase(ctx context.Context, packageID int) (*api.CheckoutSession, error)
	CompletePurchase(ctx context.Context, sessionID string) (added int, err error)
	Forget()
}

type service struct {
	backend backend
	logger  *logger.Logger

	mu      sync.RWMutex
	balance int
	loaded  bool
	costs   *types.TokenCosts
}

// NewService builds the token service.
func NewService(b backend, logg *logger.Logger) (Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: b, logger: logg}, nil
}

// Refresh pulls the authoritative balance and replaces the local mirror.
func (s *service) Refresh(ctx context.Context) (int, error) {
	balance, err := s.backend.TokenBalance(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.balance = balance
	s.loaded = true
	s.mu.Unlock()
	return balance, nil
}

// Balance returns the mirrored balance, zero before the first refresh.
func (s *service) Balance() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// SpendLocally decrements the mirror after an action the backend already
// charged for. Never goes below zero.
func (s *service) SpendLocally(amount int) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	s.balance -= amount
	if s.balance < 0 {
		s.balance = 0
	}
	s.mu.Unlock()
}

// CreditLocally bumps the mirror after a confirmed purchase.
func (s *service) CreditLocally(amount int) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	s.balance += amount
	s.mu.Unlock()
}

// Costs returns the action price table, fetching it once and falling back to
// the seeded defaults when the backend is unreachable. A fallback is not
// cached, so the next call retries.
func (s *service) Costs(ctx context.Context) types.TokenCosts {
	s.mu.RLock()
	cached := s.costs
	s.mu.RUnlock()
	if cached != nil {
		return *cached
	}

	costs, err := s.backend.TokenCosts(ctx)
	if err != nil {
		s.logger.Warn(ctx, "token costs unavailable, using defaults")
		return types.TokenCosts{
			AIImageGeneration: DefaultGenerationCost,
			OrderPlacement:    DefaultOrderCost,
		}
	}
	if costs.AIImageGeneration <= 0 {
		costs.AIImageGeneration = DefaultGenerationCost
	}
	if costs.OrderPlacement <= 0 {
		costs.OrderPlacement = DefaultOrderCost
	}

	s.mu.Lock()
	s.costs = &costs
	s.mu.Unlock()
	return costs
}

func (s *service) Packages(ctx context.Context) ([]types.TokenPackage, error) {
	return s.backend.TokenPackages(ctx)
}

func (s *service) Transactions(ctx context.Context, page pagination.Params) ([]types.TokenTransaction, error) {
	return s.backend.TokenTransactions(ctx, page)
}

// StartPurchase opens a hosted payment session for the chosen package. The
// user completes payment in the browser; CompletePurchase settles it.
func (s *service) StartPurchase(ctx context.Context, packageID int) (*api.CheckoutSession, error) {
	return s.backend.CreateCheckoutSession(ctx, packageID)
}

// CompletePurchase verifies the payment session and syncs the mirror to the
// balance the backend reports.
func (s *service) CompletePurchase(ctx context.Context, sessionID string) (int, error) {
	added, balance, err := s.backend.VerifyPayment(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.balance = balance
	s.loaded = true
	s.mu.Unlock()
	return added, nil
}

// Forget drops local state on sign-out.
func (s *service) Forget() {
	s.mu.Lock()
	s.balance = 0
	s.loaded = false
	s.costs = nil
	s.mu.Unlock()
}
