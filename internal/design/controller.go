package design

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/stitchforge/embroidery-studio/internal/session"
	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type backend interface {
	GenerateAIImage(ctx context.Context, params api.GenerateParams) (*types.Design, error)
	GenerateEmbroideryPreview(ctx context.Context, designID int) (*types.Design, error)
	GetDesign(ctx context.Context, designID int) (*types.Design, error)
	UpdateDesign(ctx context.Context, designID int, settings types.DesignSettings) (*types.Design, error)
	ListDesigns(ctx context.Context) ([]types.Design, error)
	DeleteDesign(ctx context.Context, designID int) error
	AvailableFeatures(ctx context.Context) ([]types.DesignFeature, error)
	DesignFeatures(ctx context.Context, designID int) ([]types.DesignFeature, error)
	AddFeatureToDesign(ctx context.Context, designID, featureID int) error
	RemoveFeatureFromDesign(ctx context.Context, designID, featureID int) error
}

type draftStore interface {
	SaveDraftRef(ctx context.Context, ref session.DraftRef)
	LoadDraftRef(ctx context.Context) session.DraftRef
	ClearDraftRef(ctx context.Context)
}

type balanceMirror interface {
	Refresh(ctx context.Context) (int, error)
	SpendLocally(amount int)
	Costs(ctx context.Context) types.TokenCosts
}

// Draft is the design currently being authored. ID stays nil until the first
// successful generation; the backend assigns it then.
type Draft struct {
	ID                *int
	Prompt            string
	MachineBrand      enums.MachineBrand
	RequestedFormat   enums.FormatCode
	EmbroiderySizeCm  int
	NormalImage       string
	EmbroideryPreview string
	State             enums.DraftState
}

// Controller owns the draft and reconciles it against the backend. All
// mutation flows through it so the persisted ref and the in-memory state
// never drift apart.
type Controller struct {
	backend  backend
	store    draftStore
	tokens   balanceMirror
	defaults config.DefaultsConfig
	logger   *logger.Logger

	mu         sync.RWMutex
	draft      Draft
	generating atomic.Bool
}

// ErrGenerationInFlight rejects a second generation while one is running.
// Generation is a paid action; the guard is what keeps a double-submit from
// costing double.
var ErrGenerationInFlight = pkgerrors.New(pkgerrors.CodeConflict, "a generation is already running")

// NewController builds the draft controller with defaulted settings.
func NewController(b backend, store draftStore, tokens balanceMirror, defaults config.DefaultsConfig, logg *logger.Logger) (*Controller, error) {
	if b == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token mirror required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	c := &Controller{
		backend:  b,
		store:    store,
		tokens:   tokens,
		defaults: defaults,
		logger:   logg,
	}
	c.draft = c.emptyDraft()
	return c, nil
}

func (c *Controller) emptyDraft() Draft {
	brand, err := enums.ParseMachineBrand(c.defaults.MachineBrand)
	if err != nil {
		brand = enums.BrandBrother
	}
	format, err := enums.ParseFormatCode(c.defaults.Format)
	if err != nil || !brand.Supports(format) {
		format = enums.DefaultFormat
	}
	size := c.defaults.EmbroiderySizeCm
	if size <= 0 {
		size = 10
	}
	return Draft{
		MachineBrand:     brand,
		RequestedFormat:  format,
		EmbroiderySizeCm: size,
		State:            enums.DraftStateEmpty,
	}
}

// Restore rehydrates the draft after a restart. Locally cached scalar
// settings stay as the editable values; the fetched record only contributes
// server-owned fields (images, id). A draft that no longer exists on the
// backend is dropped along with its ref.
func (c *Controller) Restore(ctx context.Context) {
	ref := c.store.LoadDraftRef(ctx)

	draft := c.emptyDraft()
	if brand, err := enums.ParseMachineBrand(ref.MachineBrand); err == nil {
		draft.MachineBrand = brand
	}
	if format, err := enums.ParseFormatCode(ref.RequestedFormat); err == nil && draft.MachineBrand.Supports(format) {
		draft.RequestedFormat = format
	}
	if ref.EmbroiderySizeCm > 0 {
		draft.EmbroiderySizeCm = ref.EmbroiderySizeCm
	}

	if ref.DesignID != nil {
		record, err := c.backend.GetDesign(ctx, *ref.DesignID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				c.store.ClearDraftRef(ctx)
			} else {
				c.logger.Warn(c.logger.WithDesignID(ctx, *ref.DesignID), "draft rehydration fetch failed")
			}
		} else {
			id := record.ID
			draft.ID = &id
			draft.Prompt = record.Prompt
			draft.NormalImage = record.NormalImage
			draft.EmbroideryPreview = record.EmbroideryPreview
			draft.State = enums.DraftStateHasPreview
		}
	}

	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()
}

// Snapshot returns a copy of the current draft.
func (c *Controller) Snapshot() Draft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	draft := c.draft
	if c.generating.Load() {
		draft.State = enums.DraftStateGenerating
	}
	return draft
}

// SetPrompt updates the prompt text without touching persisted settings.
func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	c.draft.Prompt = prompt
	c.mu.Unlock()
}

// SetMachineBrand switches the target machine. A format the new brand cannot
// stitch snaps to the brand's first supported format.
func (c *Controller) SetMachineBrand(ctx context.Context, value string) error {
	brand, err := enums.ParseMachineBrand(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown machine brand")
	}
	c.mu.Lock()
	c.draft.MachineBrand = brand
	if !brand.Supports(c.draft.RequestedFormat) {
		if supported := brand.SupportedFormats(); len(supported) > 0 {
			c.draft.RequestedFormat = supported[0]
		} else {
			c.draft.RequestedFormat = enums.DefaultFormat
		}
	}
	c.mu.Unlock()
	c.persistRef(ctx)
	return nil
}

// SetFormat selects the output file format, validated against the brand.
func (c *Controller) SetFormat(ctx context.Context, value string) error {
	format, err := enums.ParseFormatCode(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown file format")
	}
	c.mu.Lock()
	if !c.draft.MachineBrand.Supports(format) {
		brand := c.draft.MachineBrand
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s machines cannot stitch %s files", brand, format))
	}
	c.draft.RequestedFormat = format
	c.mu.Unlock()
	c.persistRef(ctx)
	return nil
}

// SetSize sets the embroidery size in centimeters.
func (c *Controller) SetSize(ctx context.Context, sizeCm int) error {
	if sizeCm < 1 || sizeCm > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "embroidery size must be between 1 and 100 cm")
	}
	c.mu.Lock()
	c.draft.EmbroiderySizeCm = sizeCm
	c.mu.Unlock()
	c.persistRef(ctx)
	return nil
}

// Generate runs AI generation for the current prompt. Repeated calls are each
// charged; the in-flight guard only stops overlapping submissions, not
// deliberate regeneration. On any failure the draft keeps its prior state.
func (c *Controller) Generate(ctx context.Context) (*Draft, error) {
	c.mu.RLock()
	draft := c.draft
	c.mu.RUnlock()

	if strings.TrimSpace(draft.Prompt) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}

	if !c.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer c.generating.Store(false)

	params := api.GenerateParams{
		DesignID:         draft.ID,
		Prompt:           draft.Prompt,
		MachineBrand:     draft.MachineBrand.String(),
		RequestedFormat:  draft.RequestedFormat.String(),
		EmbroiderySizeCm: draft.EmbroiderySizeCm,
	}
	record, err := c.backend.GenerateAIImage(ctx, params)
	if err != nil {
		return nil, err
	}

	id := record.ID
	c.mu.Lock()
	c.draft.ID = &id
	c.draft.NormalImage = record.NormalImage
	if record.EmbroideryPreview != "" {
		c.draft.EmbroideryPreview = record.EmbroideryPreview
	}
	c.draft.State = enums.DraftStateHasPreview
	updated := c.draft
	c.mu.Unlock()

	c.persistRef(ctx)
	c.settleSpend(ctx, c.tokens.Costs(ctx).AIImageGeneration)

	c.logger.Info(c.logger.WithDesignID(ctx, id), "design generated")
	return &updated, nil
}

// GeneratePreview re-renders the stitch preview of the existing draft. It
// never touches the editable settings.
func (c *Controller) GeneratePreview(ctx context.Context) (*Draft, error) {
	c.mu.RLock()
	idPtr := c.draft.ID
	c.mu.RUnlock()
	if idPtr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no design to preview yet")
	}

	if !c.generating.CompareAndSwap(false, true) {
		return nil, ErrGenerationInFlight
	}
	defer c.generating.Store(false)

	record, err := c.backend.GenerateEmbroideryPreview(ctx, *idPtr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.draft.EmbroideryPreview = record.EmbroideryPreview
	if c.draft.State == enums.DraftStateEmpty {
		c.draft.State = enums.DraftStateHasPreview
	}
	updated := c.draft
	c.mu.Unlock()
	return &updated, nil
}

// Save writes the editable settings to the backend record. With no draft id
// there is nothing to save; that is an expected state and comes back as a
// message, not an error.
func (c *Controller) Save(ctx context.Context) (string, error) {
	c.mu.RLock()
	draft := c.draft
	c.mu.RUnlock()

	if draft.ID == nil {
		return "nothing to save yet", nil
	}

	_, err := c.backend.UpdateDesign(ctx, *draft.ID, types.DesignSettings{
		MachineBrand:     draft.MachineBrand.String(),
		RequestedFormat:  draft.RequestedFormat.String(),
		EmbroiderySizeCm: draft.EmbroiderySizeCm,
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.draft.State = enums.DraftStateSaved
	c.mu.Unlock()
	c.persistRef(ctx)
	return "design saved", nil
}

// Clear resets the draft to a fresh one and purges the persisted ref.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	c.draft = c.emptyDraft()
	c.mu.Unlock()
	c.store.ClearDraftRef(ctx)
}

// MarkAddedToCart records that the draft went into the cart.
func (c *Controller) MarkAddedToCart() {
	c.mu.Lock()
	c.draft.State = enums.DraftStateAddedToCart
	c.mu.Unlock()
}

// Settings returns the editable scalars in wire form, for callers that save
// before acting on the design.
func (c *Controller) Settings() (designID *int, settings types.DesignSettings) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft.ID, types.DesignSettings{
		MachineBrand:     c.draft.MachineBrand.String(),
		RequestedFormat:  c.draft.RequestedFormat.String(),
		EmbroiderySizeCm: c.draft.EmbroiderySizeCm,
	}
}

// List fetches the user's saved designs.
func (c *Controller) List(ctx context.Context) ([]types.Design, error) {
	return c.backend.ListDesigns(ctx)
}

// Delete removes a saved design. Deleting the active draft clears it.
func (c *Controller) Delete(ctx context.Context, designID int) error {
	if err := c.backend.DeleteDesign(ctx, designID); err != nil {
		return err
	}
	c.mu.RLock()
	isActive := c.draft.ID != nil && *c.draft.ID == designID
	c.mu.RUnlock()
	if isActive {
		c.Clear(ctx)
	}
	return nil
}

// Open loads a saved design into the draft for further editing.
func (c *Controller) Open(ctx context.Context, designID int) (*Draft, error) {
	record, err := c.backend.GetDesign(ctx, designID)
	if err != nil {
		return nil, err
	}

	draft := c.emptyDraft()
	id := record.ID
	draft.ID = &id
	draft.Prompt = record.Prompt
	draft.NormalImage = record.NormalImage
	draft.EmbroideryPreview = record.EmbroideryPreview
	draft.State = enums.DraftStateHasPreview
	if brand, err := enums.ParseMachineBrand(record.MachineBrand); err == nil {
		draft.MachineBrand = brand
	}
	if format, err := enums.ParseFormatCode(record.RequestedFormat); err == nil && draft.MachineBrand.Supports(format) {
		draft.RequestedFormat = format
	}
	if record.EmbroiderySizeCm > 0 {
		draft.EmbroiderySizeCm = record.EmbroiderySizeCm
	}

	c.mu.Lock()
	c.draft = draft
	c.mu.Unlock()
	c.persistRef(ctx)
	return &draft, nil
}

// AvailableFeatures lists the add-on features a design can carry.
func (c *Controller) AvailableFeatures(ctx context.Context) ([]types.DesignFeature, error) {
	return c.backend.AvailableFeatures(ctx)
}

// Features lists the features attached to the active draft.
func (c *Controller) Features(ctx context.Context) ([]types.DesignFeature, error) {
	c.mu.RLock()
	idPtr := c.draft.ID
	c.mu.RUnlock()
	if idPtr == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no design to inspect yet")
	}
	return c.backend.DesignFeatures(ctx, *idPtr)
}

// AttachFeature adds a feature to the active draft. Features carry their own
// token cost; the backend charges it on attach.
func (c *Controller) AttachFeature(ctx context.Context, featureID int) error {
	c.mu.RLock()
	idPtr := c.draft.ID
	c.mu.RUnlock()
	if idPtr == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "generate a design before adding features")
	}
	if err := c.backend.AddFeatureToDesign(ctx, *idPtr, featureID); err != nil {
		return err
	}
	if _, err := c.tokens.Refresh(ctx); err != nil {
		c.logger.Warn(c.logger.WithDesignID(ctx, *idPtr), "balance refresh after feature attach failed")
	}
	return nil
}

// DetachFeature removes a feature from the active draft. Spent tokens are not
// refunded.
func (c *Controller) DetachFeature(ctx context.Context, featureID int) error {
	c.mu.RLock()
	idPtr := c.draft.ID
	c.mu.RUnlock()
	if idPtr == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no design to edit yet")
	}
	return c.backend.RemoveFeatureFromDesign(ctx, *idPtr, featureID)
}

func (c *Controller) persistRef(ctx context.Context) {
	c.mu.RLock()
	ref := session.DraftRef{
		DesignID:         c.draft.ID,
		MachineBrand:     c.draft.MachineBrand.String(),
		RequestedFormat:  c.draft.RequestedFormat.String(),
		EmbroiderySizeCm: c.draft.EmbroiderySizeCm,
	}
	c.mu.RUnlock()
	c.store.SaveDraftRef(ctx, ref)
}

// settleSpend reconciles the balance mirror after a charged action. The
// authoritative re-fetch wins; the optimistic decrement only covers for an
// unreachable balance endpoint.
func (c *Controller) settleSpend(ctx context.Context, cost int) {
	if _, err := c.tokens.Refresh(ctx); err != nil {
		c.tokens.SpendLocally(cost)
	}
}
