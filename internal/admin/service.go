package admin

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	AdminListOrders(ctx context.Context, page pagination.Params) ([]types.Order, error)
	AdminGetOrder(ctx context.Context, orderID int) (*types.Order, error)
	AdminUpdateOrderStatus(ctx context.Context, orderID int, status string) error
	AdminOrderResources(ctx context.Context, orderID int) ([]types.OrderResource, error)
	AdminDeleteResource(ctx context.Context, resourceID int) error

	ListSizePricing(ctx context.Context) ([]types.SizePricingTier, error)
	CreateSizePricing(ctx context.Context, params api.SizePricingParams) (*types.SizePricingTier, error)
	UpdateSizePricing(ctx context.Context, tierID int, params api.SizePricingParams) (*types.SizePricingTier, error)
	DeleteSizePricing(ctx context.Context, tierID int) error

	AdminTokenCosts(ctx context.Context) (types.TokenCosts, error)
	AdminSetTokenCosts(ctx context.Context, costs types.TokenCosts) error

	ManageTokenPackages(ctx context.Context) ([]types.TokenPackage, error)
	CreateTokenPackage(ctx context.Context, params api.TokenPackageParams) (*types.TokenPackage, error)
	UpdateTokenPackage(ctx context.Context, packageID int, params api.TokenPackageParams) (*types.TokenPackage, error)
	DeleteTokenPackage(ctx context.Context, packageID int) error
	SetPackagePopular(ctx context.Context, packageID int) error
}

// Service is the staff console: order oversight, size pricing, and the token
// economy. It validates locally what it can; authorization stays with the
// backend.
type Service struct {
	backend backend
	logger  *logger.Logger
}

// NewService builds the admin service.
func NewService(b backend, logg *logger.Logger) (*Service, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{backend: b, logger: logg}, nil
}

// Orders lists all customers' orders.
func (s *Service) Orders(ctx context.Context, page pagination.Params) ([]types.Order, error) {
	return s.backend.AdminListOrders(ctx, page)
}

// Order fetches one order.
func (s *Service) Order(ctx context.Context, orderID int) (*types.Order, error) {
	return s.backend.AdminGetOrder(ctx, orderID)
}

// SetOrderStatus moves an order to a known status. Terminal orders stay put.
func (s *Service) SetOrderStatus(ctx context.Context, orderID int, value string) error {
	status, err := enums.ParseOrderStatus(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status")
	}
	current, err := s.backend.AdminGetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if current.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("order %d is already %s", orderID, current.Status))
	}
	if err := s.backend.AdminUpdateOrderStatus(ctx, orderID, status.String()); err != nil {
		return err
	}
	s.logger.Info(s.logger.WithFields(ctx, map[string]any{"order_id": orderID, "status": status.String()}), "order status updated")
	return nil
}

// OrderResources lists the produced files on an order.
func (s *Service) OrderResources(ctx context.Context, orderID int) ([]types.OrderResource, error) {
	return s.backend.AdminOrderResources(ctx, orderID)
}

// DeleteResource removes a produced file.
func (s *Service) DeleteResource(ctx context.Context, resourceID int) error {
	return s.backend.AdminDeleteResource(ctx, resourceID)
}

// PricingTierInput is a size band and its price.
type PricingTierInput struct {
	MinSizeCm int
	MaxSizeCm int
	Price     decimal.Decimal
	Currency  string
}

func (in PricingTierInput) validate() error {
	if in.MinSizeCm < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum size must be at least 1 cm")
	}
	if in.MaxSizeCm <= in.MinSizeCm {
		return pkgerrors.New(pkgerrors.CodeValidation, "maximum size must exceed minimum size")
	}
	if in.Price.IsNegative() || in.Price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return nil
}

// PricingTiers lists the embroidery size pricing bands.
func (s *Service) PricingTiers(ctx context.Context) ([]types.SizePricingTier, error) {
	return s.backend.ListSizePricing(ctx)
}

// CreatePricingTier adds a band after checking it does not overlap an
// existing one.
func (s *Service) CreatePricingTier(ctx context.Context, input PricingTierInput) (*types.SizePricingTier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	existing, err := s.backend.ListSizePricing(ctx)
	if err != nil {
		return nil, err
	}
	for _, tier := range existing {
		if input.MinSizeCm < tier.MaxSizeCm && tier.MinSizeCm < input.MaxSizeCm {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("size band %d-%d cm overlaps existing %d-%d cm tier", input.MinSizeCm, input.MaxSizeCm, tier.MinSizeCm, tier.MaxSizeCm))
		}
	}
	return s.backend.CreateSizePricing(ctx, api.SizePricingParams{
		MinSizeCm: input.MinSizeCm,
		MaxSizeCm: input.MaxSizeCm,
		Price:     input.Price,
		Currency:  input.Currency,
	})
}

// UpdatePricingTier rewrites a band.
func (s *Service) UpdatePricingTier(ctx context.Context, tierID int, input PricingTierInput) (*types.SizePricingTier, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	return s.backend.UpdateSizePricing(ctx, tierID, api.SizePricingParams{
		MinSizeCm: input.MinSizeCm,
		MaxSizeCm: input.MaxSizeCm,
		Price:     input.Price,
		Currency:  input.Currency,
	})
}

// DeletePricingTier removes a band.
func (s *Service) DeletePricingTier(ctx context.Context, tierID int) error {
	return s.backend.DeleteSizePricing(ctx, tierID)
}

// TokenCosts fetches the editable action price table.
func (s *Service) TokenCosts(ctx context.Context) (types.TokenCosts, error) {
	return s.backend.AdminTokenCosts(ctx)
}

// SetTokenCosts rewrites the action price table. Zero or negative prices
// would make paid actions free; both are rejected.
func (s *Service) SetTokenCosts(ctx context.Context, costs types.TokenCosts) error {
	if costs.AIImageGeneration < 1 || costs.OrderPlacement < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "token costs must be at least 1")
	}
	return s.backend.AdminSetTokenCosts(ctx, costs)
}

// PackageInput is a purchasable token bundle.
type PackageInput struct {
	Name     string
	Tokens   int
	Price    decimal.Decimal
	Currency string
	IsActive bool
}

func (in PackageInput) validate() error {
	if in.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}
	if in.Tokens < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "package must grant at least 1 token")
	}
	if in.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return nil
}

// Packages lists every token bundle, active or retired.
func (s *Service) Packages(ctx context.Context) ([]types.TokenPackage, error) {
	return s.backend.ManageTokenPackages(ctx)
}

// CreatePackage adds a token bundle.
func (s *Service) CreatePackage(ctx context.Context, input PackageInput) (*types.TokenPackage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	return s.backend.CreateTokenPackage(ctx, api.TokenPackageParams{
		Name:     input.Name,
		Tokens:   input.Tokens,
		Price:    input.Price,
		Currency: input.Currency,
		IsActive: input.IsActive,
	})
}

// UpdatePackage rewrites a token bundle.
func (s *Service) UpdatePackage(ctx context.Context, packageID int, input PackageInput) (*types.TokenPackage, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	return s.backend.UpdateTokenPackage(ctx, packageID, api.TokenPackageParams{
		Name:     input.Name,
		Tokens:   input.Tokens,
		Price:    input.Price,
		Currency: input.Currency,
		IsActive: input.IsActive,
	})
}

// DeletePackage retires a token bundle.
func (s *Service) DeletePackage(ctx context.Context, packageID int) error {
	return s.backend.DeleteTokenPackage(ctx, packageID)
}

// MarkPopular highlights a bundle on the purchase screen.
func (s *Service) MarkPopular(ctx context.Context, packageID int) error {
	return s.backend.SetPackagePopular(ctx, packageID)
}
