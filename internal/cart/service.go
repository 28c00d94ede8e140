package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	ViewCart(ctx context.Context) (*api.CartView, error)
	AddToCart(ctx context.Context, designID int) error
	RemoveCartItem(ctx context.Context, itemID int) error
	ClearCart(ctx context.Context) error
	ValidateCart(ctx context.Context) error
}

type draft interface {
	Settings() (designID *int, settings types.DesignSettings)
	Save(ctx context.Context) (string, error)
	MarkAddedToCart()
}

type formatStore interface {
	SaveSelectedFormats(ctx context.Context, formats []string)
	LoadSelectedFormats(ctx context.Context) []string
}

// Service mirrors the server-side cart. The mirror is replaced wholesale on
// every load, never merged, and every mutation goes through the server before
// the mirror changes.
type Service struct {
	backend backend
	draft   draft
	store   formatStore
	logger  *logger.Logger

	mu      sync.RWMutex
	items   []types.CartItem
	formats []string
}

// NewService builds the cart service.
func NewService(b backend, d draft, store formatStore, logg *logger.Logger) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if d == nil {
		return nil, fmt.Errorf("draft controller required")
	}
	if store == nil {
		return nil, fmt.Errorf("format store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{backend: b, draft: d, store: store, logger: logg}, nil
}

// Load replaces the mirror with the server's cart and re-seeds the checkout
// format selection: the first item's requested format when present, otherwise
// the single default. Format seeding only looks at the first item; one format
// set applies to the whole order.
func (s *Service) Load(ctx context.Context) ([]types.CartItem, error) {
	view, err := s.backend.ViewCart(ctx)
	if err != nil {
		return nil, err
	}

	formats := seedFormats(view.Items)

	s.mu.Lock()
	s.items = view.Items
	s.formats = formats
	s.mu.Unlock()

	s.store.SaveSelectedFormats(ctx, formats)
	return view.Items, nil
}

func seedFormats(items []types.CartItem) []string {
	if len(items) > 0 && items[0].DesignDetails.RequestedFormat != "" {
		return []string{items[0].DesignDetails.RequestedFormat}
	}
	return []string{enums.DefaultFormat.String()}
}

// Items returns the mirrored cart contents.
func (s *Service) Items() []types.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]types.CartItem, len(s.items))
	copy(items, s.items)
	return items
}

// Count returns the mirrored item count, feeding the navigation badge.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// SelectedFormats returns the current checkout format selection.
func (s *Service) SelectedFormats() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	formats := make([]string, len(s.formats))
	copy(formats, s.formats)
	return formats
}

// ToggleFormat adds or removes a format from the checkout selection. The
// selection never empties: removing the last format is a no-op.
func (s *Service) ToggleFormat(ctx context.Context, value string) error {
	format, err := enums.ParseFormatCode(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown file format")
	}
	code := format.String()

	s.mu.Lock()
	idx := -1
	for i, f := range s.formats {
		if f == code {
			idx = i
			break
		}
	}
	switch {
	case idx >= 0 && len(s.formats) == 1:
		// Last one stays.
	case idx >= 0:
		s.formats = append(s.formats[:idx], s.formats[idx+1:]...)
	default:
		s.formats = append(s.formats, code)
	}
	formats := make([]string, len(s.formats))
	copy(formats, s.formats)
	s.mu.Unlock()

	s.store.SaveSelectedFormats(ctx, formats)
	return nil
}

// AddActiveDraft stages the draft for checkout. The settings are saved to the
// design record first so the cart snapshot reflects what the user sees, then
// the design is added. Server-reported refusals (not ready, already in cart)
// surface verbatim.
func (s *Service) AddActiveDraft(ctx context.Context) error {
	designID, _ := s.draft.Settings()
	if designID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "generate a design before adding it to the cart")
	}
	if _, err := s.draft.Save(ctx); err != nil {
		return err
	}
	if err := s.backend.AddToCart(ctx, *designID); err != nil {
		return err
	}
	s.draft.MarkAddedToCart()

	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn(s.logger.WithDesignID(ctx, *designID), "cart reload after add failed")
	}
	return nil
}

// Add stages an already saved design by id.
func (s *Service) Add(ctx context.Context, designID int) error {
	if err := s.backend.AddToCart(ctx, designID); err != nil {
		return err
	}
	if _, err := s.Load(ctx); err != nil {
		s.logger.Warn(s.logger.WithDesignID(ctx, designID), "cart reload after add failed")
	}
	return nil
}

// Remove deletes one item. The mirror only changes after the server confirms,
// so a failed removal never hides an item that is still in the cart.
func (s *Service) Remove(ctx context.Context, itemID int) error {
	if err := s.backend.RemoveCartItem(ctx, itemID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()
	return nil
}

// Clear empties the cart server-side and locally.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.backend.ClearCart(ctx); err != nil {
		return err
	}
	s.Forget()
	return nil
}

// Validate asks the server whether every staged design is still orderable.
func (s *Service) Validate(ctx context.Context) error {
	return s.backend.ValidateCart(ctx)
}

// Forget drops the local mirror without touching the server. Used after
// checkout clears the cart server-side, and on sign-out.
func (s *Service) Forget() {
	s.mu.Lock()
	s.items = nil
	s.formats = nil
	s.mu.Unlock()
}
