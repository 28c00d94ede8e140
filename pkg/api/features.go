package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type featuresResponse struct {
	envelopeResponse
	Features []types.DesignFeature `json:"features"`
}

// AvailableFeatures lists the add-ons a customer can attach to a design.
func (c *Client) AvailableFeatures(ctx context.Context) ([]types.DesignFeature, error) {
	var resp featuresResponse
	err := c.do(ctx, requestSpec{
		op:     "features.available",
		method: http.MethodGet,
		path:   "/features/available/",
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Features, nil
}

// AddFeatureToDesign attaches a catalog feature to a design.
func (c *Client) AddFeatureToDesign(ctx context.Context, designID, featureID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "features.attach",
		method: http.MethodPost,
		path:   "/designs/features/add/",
		body: map[string]int{
			"design_id":  designID,
			"feature_id": featureID,
		},
		fields: map[string]any{"design_id": designID, "feature_id": featureID},
	}, &resp)
}

// RemoveFeatureFromDesign detaches a feature from a design.
func (c *Client) RemoveFeatureFromDesign(ctx context.Context, designID, featureID int) error {
	var resp envelopeResponse
	return c.do(ctx, requestSpec{
		op:     "features.detach",
		method: http.MethodPost,
		path:   "/designs/features/remove/",
		body: map[string]int{
			"design_id":  designID,
			"feature_id": featureID,
		},
		fields: map[string]any{"design_id": designID, "feature_id": featureID},
	}, &resp)
}

// DesignFeatures lists the features attached to one design.
func (c *Client) DesignFeatures(ctx context.Context, designID int) ([]types.DesignFeature, error) {
	var resp featuresResponse
	err := c.do(ctx, requestSpec{
		op:     "features.usages",
		method: http.MethodGet,
		path:   fmt.Sprintf("/designs/%d/features/", designID),
		fields: map[string]any{"design_id": designID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Features, nil
}
