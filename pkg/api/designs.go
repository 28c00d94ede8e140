package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// GenerateParams is the AI generation request. DesignID, when set, asks the
// backend to update the existing draft in place instead of creating a
// duplicate record.
type GenerateParams struct {
	DesignID         *int   `json:"design_id,omitempty"`
	Prompt           string `json:"prompt"`
	MachineBrand     string `json:"machine_brand"`
	RequestedFormat  string `json:"requested_format"`
	EmbroiderySizeCm int    `json:"embroidery_size_cm"`
}

type designResponse struct {
	envelopeResponse
	Design types.Design `json:"design"`
}

// GenerateAIImage runs the paid AI generation call. It carries its own longer
// deadline because synthesis routinely exceeds the ordinary request timeout.
// Repeating the call consumes tokens again; there is deliberately no
// server-side deduplication, regeneration is a paid action.
func (c *Client) GenerateAIImage(ctx context.Context, params GenerateParams) (*types.Design, error) {
	ctx, cancel := c.generationContext(ctx)
	defer cancel()

	var resp designResponse
	err := c.do(ctx, requestSpec{
		op:     "designs.generate",
		method: http.MethodPost,
		path:   "/designs/generate-ai-image/",
		body:   params,
		fields: map[string]any{
			"design_id":     params.DesignID,
			"machine_brand": params.MachineBrand,
			"format":        params.RequestedFormat,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Design, nil
}

// GenerateEmbroideryPreview re-renders the stitch preview of an existing
// design without touching its settings.
func (c *Client) GenerateEmbroideryPreview(ctx context.Context, designID int) (*types.Design, error) {
	ctx, cancel := c.generationContext(ctx)
	defer cancel()

	var resp designResponse
	err := c.do(ctx, requestSpec{
		op:     "designs.preview",
		method: http.MethodPost,
		path:   "/designs/generate-embroidery-preview/",
		body:   map[string]int{"design_id": designID},
		fields: map[string]any{"design_id": designID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Design, nil
}

func (c *Client) generationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.generateTimeout)
}

type designsResponse struct {
	envelopeResponse
	Designs []types.Design `json:"designs"`
}

// ListDesigns fetches the user's stored designs.
func (c *Client) ListDesigns(ctx context.Context) ([]types.Design, error) {
	var resp designsResponse
	err := c.do(ctx, requestSpec{
		op:     "designs.list",
		method: http.MethodGet,
		path:   "/designs/list/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Designs, nil
}

// GetDesign fetches one design by id.
func (c *Client) GetDesign(ctx context.Context, designID int) (*types.Design, error) {
	var resp designResponse
	err := c.do(ctx, requestSpec{
		op:     "designs.get",
		method: http.MethodGet,
		path:   fmt.Sprintf("/designs/%d/", designID),
		fields: map[string]any{"design_id": designID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Design, nil
}

// UpdateDesign persists the user-editable settings of a design.
func (c *Client) UpdateDesign(ctx context.Context, designID int, settings types.DesignSettings) (*types.Design, error) {
	var resp designResponse
	err := c.do(ctx, requestSpec{
		op:     "designs.update",
		method: http.MethodPut,
		path:   fmt.Sprintf("/designs/%d/update/", designID),
		body:   settings,
		fields: map[string]any{"design_id": designID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Design, nil
}

// DeleteDesign removes a stored design.
func (c *Client) DeleteDesign(ctx context.Context, designID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "designs.delete",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/designs/%d/delete/", designID),
		fields: map[string]any{"design_id": designID},
	}, &resp)
}
