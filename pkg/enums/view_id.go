package enums

import "fmt"

// ViewID names one of the mutually exclusive dashboard panels.
type ViewID string

const (
	ViewNewDesign ViewID = "new-design"
	ViewMyDesigns ViewID = "my-designs"
	ViewCart      ViewID = "cart"
	ViewOrders    ViewID = "orders"
	ViewBuyTokens ViewID = "buy-tokens"
	ViewSettings  ViewID = "settings"
	ViewChat      ViewID = "chat"
	ViewAdmin     ViewID = "admin"
)

var validViewIDs = []ViewID{
	ViewNewDesign,
	ViewMyDesigns,
	ViewCart,
	ViewOrders,
	ViewBuyTokens,
	ViewSettings,
	ViewChat,
	ViewAdmin,
}

// String implements fmt.Stringer.
func (v ViewID) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ViewID.
func (v ViewID) IsValid() bool {
	for _, candidate := range validViewIDs {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseViewID converts raw input into a ViewID.
func ParseViewID(value string) (ViewID, error) {
	for _, candidate := range validViewIDs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid view id %q", value)
}
