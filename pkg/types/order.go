package types

import (
	"time"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
)

// Order is created by checkout. Status transitions are server-driven; the
// client only re-fetches.
type Order struct {
	ID               int               `json:"id"`
	Status           enums.OrderStatus `json:"status"`
	RequestedFormats []string          `json:"requested_formats,omitempty"`
	TokensSpent      int               `json:"tokens_spent,omitempty"`
	Items            []OrderItem       `json:"items,omitempty"`
	CreatedAt        time.Time         `json:"created_at,omitzero"`
	UpdatedAt        time.Time         `json:"updated_at,omitzero"`
}

// OrderItem snapshots one cart item at checkout time.
type OrderItem struct {
	ID            int           `json:"id"`
	DesignID      int           `json:"design_id,omitempty"`
	DesignDetails DesignDetails `json:"design_details"`
}

// OrderResource is an admin-uploaded produced file attached to an order.
type OrderResource struct {
	ID       int    `json:"id"`
	OrderID  int    `json:"order_id"`
	Format   string `json:"format,omitempty"`
	FileName string `json:"file_name,omitempty"`
}
