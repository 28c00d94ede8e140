package types

import "time"

// Design is the server-side record of an authored design. The backend owns
// every field; the client treats image refs and status as authoritative.
type Design struct {
	ID                int       `json:"id"`
	Name              string    `json:"name,omitempty"`
	Prompt            string    `json:"prompt,omitempty"`
	MachineBrand      string    `json:"machine_brand,omitempty"`
	RequestedFormat   string    `json:"requested_format,omitempty"`
	EmbroiderySizeCm  int       `json:"embroidery_size_cm,omitempty"`
	NormalImage       string    `json:"normal_image,omitempty"`
	EmbroideryPreview string    `json:"embroidery_preview,omitempty"`
	Status            string    `json:"status,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitzero"`
	UpdatedAt         time.Time `json:"updated_at,omitzero"`
}

// DesignSettings is the user-editable scalar slice of a design.
type DesignSettings struct {
	Name             string `json:"name,omitempty"`
	MachineBrand     string `json:"machine_brand"`
	RequestedFormat  string `json:"requested_format"`
	EmbroiderySizeCm int    `json:"embroidery_size_cm"`
}

// DesignFeature is an optional add-on from the feature catalog.
type DesignFeature struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TokenCost   int    `json:"token_cost"`
	IsActive    bool   `json:"is_active"`
}
