package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	Checkout(ctx context.Context, requestedFormats []string) ([]types.Order, error)
}

type cartMirror interface {
	Count() int
	SelectedFormats() []string
	Forget()
}

type balanceMirror interface {
	Balance() int
	Costs(ctx context.Context) types.TokenCosts
	SpendLocally(amount int)
}

type viewSwitcher interface {
	Switch(view enums.ViewID)
}

// Orchestrator turns the cart into orders. The balance precondition runs
// locally first so an obviously unaffordable checkout never reaches the wire;
// the server remains the authoritative check behind it.
type Orchestrator struct {
	backend backend
	cart    cartMirror
	tokens  balanceMirror
	nav     viewSwitcher
	logger  *logger.Logger

	redirectDelay time.Duration
}

// NewOrchestrator builds the checkout orchestrator.
func NewOrchestrator(b backend, cart cartMirror, tokens balanceMirror, nav viewSwitcher, cfg config.CheckoutConfig, logg *logger.Logger) (*Orchestrator, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if cart == nil {
		return nil, fmt.Errorf("cart mirror required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token mirror required")
	}
	if nav == nil {
		return nil, fmt.Errorf("view switcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	delay := cfg.OrdersRedirectDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	return &Orchestrator{
		backend:       b,
		cart:          cart,
		tokens:        tokens,
		nav:           nav,
		logger:        logg,
		redirectDelay: delay,
	}, nil
}

// TotalCost returns what placing the current cart costs in tokens.
func (o *Orchestrator) TotalCost(ctx context.Context) int {
	return o.cart.Count() * o.tokens.Costs(ctx).OrderPlacement
}

// CanPlaceOrder is the advisory button-state check: a non-empty cart and a
// mirrored balance covering the total cost.
func (o *Orchestrator) CanPlaceOrder(ctx context.Context) bool {
	count := o.cart.Count()
	return count > 0 && o.tokens.Balance() >= count*o.tokens.Costs(ctx).OrderPlacement
}

// PlaceOrder converts the cart into orders. On success the cart mirror empties,
// the balance mirror drops by the computed cost, and the shell switches to the
// orders view after the redirect delay. On failure both mirrors are untouched
// and the server's error surfaces verbatim.
func (o *Orchestrator) PlaceOrder(ctx context.Context) ([]types.Order, error) {
	count := o.cart.Count()
	if count == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	cost := count * o.tokens.Costs(ctx).OrderPlacement
	if o.tokens.Balance() < cost {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientTokens,
			fmt.Sprintf("insufficient token balance: need %d, have %d", cost, o.tokens.Balance()))
	}

	orders, err := o.backend.Checkout(ctx, o.cart.SelectedFormats())
	if err != nil {
		return nil, err
	}

	o.cart.Forget()
	o.tokens.SpendLocally(cost)
	o.logger.Info(o.logger.WithField(ctx, "order_count", len(orders)), "checkout complete")

	// Leave the confirmation on screen briefly before moving on.
	time.AfterFunc(o.redirectDelay, func() {
		o.nav.Switch(enums.ViewOrders)
	})
	return orders, nil
}
