package types

// DesignDetails is the nested design snapshot carried on each cart item.
type DesignDetails struct {
	Name              string `json:"name,omitempty"`
	Prompt            string `json:"prompt,omitempty"`
	RequestedFormat   string `json:"requested_format,omitempty"`
	NormalImage       string `json:"normal_image,omitempty"`
	EmbroideryPreview string `json:"embroidery_preview,omitempty"`
}

// CartItem is a design staged for checkout. The server is the sole owner; the
// client holds a read-through cache invalidated after every cart mutation.
type CartItem struct {
	ID            int           `json:"id"`
	DesignID      int           `json:"design_id,omitempty"`
	DesignDetails DesignDetails `json:"design_details"`
}
