package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenCosts prices the two token-consuming actions. Zero-valued entries fall
// back to the documented defaults at the consumer.
type TokenCosts struct {
	AIImageGeneration int `json:"ai_image_generation"`
	OrderPlacement    int `json:"order_placement"`
}

// TokenPackage is a purchasable token bundle.
type TokenPackage struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Tokens    int             `json:"tokens"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
	IsPopular bool            `json:"is_popular"`
	IsActive  bool            `json:"is_active"`
}

// TokenTransaction is one ledger entry on the user's token account.
type TokenTransaction struct {
	ID          int       `json:"id"`
	Amount      int       `json:"amount"`
	Kind        string    `json:"kind,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// SizePricingTier maps an embroidery size band to a money price. Admin-managed.
type SizePricingTier struct {
	ID        int             `json:"id"`
	MinSizeCm int             `json:"min_size_cm"`
	MaxSizeCm int             `json:"max_size_cm"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency,omitempty"`
}
