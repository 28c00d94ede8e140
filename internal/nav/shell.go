package nav

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// DeriveActiveView maps a dashboard path to a panel: the last non-empty
// segment when it names a view, the new-design view for anything else.
func DeriveActiveView(path string) enums.ViewID {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := strings.TrimSpace(segments[i])
		if segment == "" {
			continue
		}
		if view, err := enums.ParseViewID(segment); err == nil {
			return view
		}
		break
	}
	return enums.ViewNewDesign
}

var pageTitles = map[enums.ViewID]string{
	enums.ViewNewDesign: "New Design",
	enums.ViewMyDesigns: "My Designs",
	enums.ViewCart:      "Cart",
	enums.ViewOrders:    "Orders",
	enums.ViewBuyTokens: "Buy Tokens",
	enums.ViewSettings:  "Settings",
	enums.ViewChat:      "Support Chat",
	enums.ViewAdmin:     "Admin",
}

// PageTitle returns the human title of a panel.
func PageTitle(view enums.ViewID) string {
	if title, ok := pageTitles[view]; ok {
		return title
	}
	return pageTitles[enums.ViewNewDesign]
}

type cartCounter interface {
	Count() int
}

type redirectStore interface {
	AdminRedirected(ctx context.Context) bool
	MarkAdminRedirected(ctx context.Context)
}

// Shell keeps the active panel, the cart badge, and the one-time staff
// redirect in one place. View changes fan out to registered listeners.
type Shell struct {
	cart   cartCounter
	store  redirectStore
	logger *logger.Logger

	mu        sync.RWMutex
	view      enums.ViewID
	listeners []func(enums.ViewID)
}

// NewShell builds the navigation shell, starting on the new-design view.
func NewShell(cart cartCounter, store redirectStore, logg *logger.Logger) (*Shell, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart counter required")
	}
	if store == nil {
		return nil, fmt.Errorf("redirect store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Shell{
		cart:   cart,
		store:  store,
		logger: logg,
		view:   enums.ViewNewDesign,
	}, nil
}

// Current returns the active panel.
func (s *Shell) Current() enums.ViewID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Title returns the active panel's page title.
func (s *Shell) Title() string {
	return PageTitle(s.Current())
}

// Badge returns the cart item count shown next to the cart entry.
func (s *Shell) Badge() int {
	return s.cart.Count()
}

// OnSwitch registers a listener invoked after every view change.
func (s *Shell) OnSwitch(fn func(enums.ViewID)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Switch activates a panel directly.
func (s *Shell) Switch(view enums.ViewID) {
	if !view.IsValid() {
		view = enums.ViewNewDesign
	}
	s.mu.Lock()
	changed := s.view != view
	s.view = view
	listeners := make([]func(enums.ViewID), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(view)
	}
}

// Navigate derives the panel from a path and activates it.
func (s *Shell) Navigate(path string) enums.ViewID {
	view := DeriveActiveView(path)
	s.Switch(view)
	return view
}

// ApplyProfile lands staff on the admin panel once per signed-in session.
// After that a staff user navigates freely, including away from admin.
func (s *Shell) ApplyProfile(ctx context.Context, profile *types.UserProfile) {
	if profile == nil || !profile.IsAdmin() {
		return
	}
	if s.Current() == enums.ViewAdmin || s.store.AdminRedirected(ctx) {
		return
	}
	s.store.MarkAdminRedirected(ctx)
	s.logger.Info(s.logger.WithUserID(ctx, profile.Username), "staff account, opening admin")
	s.Switch(enums.ViewAdmin)
}
