package enums

// DraftState tracks the design currently being authored.
type DraftState string

const (
	DraftStateEmpty       DraftState = "empty"
	DraftStateGenerating  DraftState = "generating"
	DraftStateHasPreview  DraftState = "has_preview"
	DraftStateSaved       DraftState = "saved"
	DraftStateAddedToCart DraftState = "added_to_cart"
)

// String implements fmt.Stringer.
func (d DraftState) String() string {
	return string(d)
}
