package design

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/internal/session"
	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/enums"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type stubBackend struct {
	mu            sync.Mutex
	generateCalls int
	generated     *types.Design
	generateErr   error
	generateHook  func()
	lastParams    api.GenerateParams

	previewed  *types.Design
	previewErr error

	record    *types.Design
	recordErr error

	updated    *types.Design
	updateErr  error
	deleteErr  error
	deletedIDs []int

	available   []types.DesignFeature
	attached    []types.DesignFeature
	featureErr  error
	attachedIDs []int
	detachedIDs []int
}

func (s *stubBackend) GenerateAIImage(ctx context.Context, params api.GenerateParams) (*types.Design, error) {
	s.mu.Lock()
	s.generateCalls++
	s.lastParams = params
	hook := s.generateHook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s.generated, s.generateErr
}

func (s *stubBackend) GenerateEmbroideryPreview(ctx context.Context, designID int) (*types.Design, error) {
	return s.previewed, s.previewErr
}

func (s *stubBackend) GetDesign(ctx context.Context, designID int) (*types.Design, error) {
	return s.record, s.recordErr
}

func (s *stubBackend) UpdateDesign(ctx context.Context, designID int, settings types.DesignSettings) (*types.Design, error) {
	return s.updated, s.updateErr
}

func (s *stubBackend) ListDesigns(ctx context.Context) ([]types.Design, error) { return nil, nil }

func (s *stubBackend) DeleteDesign(ctx context.Context, designID int) error {
	s.deletedIDs = append(s.deletedIDs, designID)
	return s.deleteErr
}

func (s *stubBackend) AvailableFeatures(ctx context.Context) ([]types.DesignFeature, error) {
	return s.available, s.featureErr
}

func (s *stubBackend) DesignFeatures(ctx context.Context, designID int) ([]types.DesignFeature, error) {
	return s.attached, s.featureErr
}

func (s *stubBackend) AddFeatureToDesign(ctx context.Context, designID, featureID int) error {
	s.attachedIDs = append(s.attachedIDs, featureID)
	return s.featureErr
}

func (s *stubBackend) RemoveFeatureFromDesign(ctx context.Context, designID, featureID int) error {
	s.detachedIDs = append(s.detachedIDs, featureID)
	return s.featureErr
}

type memoryStore struct {
	ref     session.DraftRef
	hasRef  bool
	cleared int
}

func (m *memoryStore) SaveDraftRef(ctx context.Context, ref session.DraftRef) {
	m.ref = ref
	m.hasRef = true
}

func (m *memoryStore) LoadDraftRef(ctx context.Context) session.DraftRef {
	if !m.hasRef {
		return session.DraftRef{}
	}
	return m.ref
}

func (m *memoryStore) ClearDraftRef(ctx context.Context) {
	m.ref = session.DraftRef{}
	m.hasRef = false
	m.cleared++
}

type stubMirror struct {
	refreshErr error
	refreshed  int
	spent      int
	costs      types.TokenCosts
}

func (s *stubMirror) Refresh(ctx context.Context) (int, error) {
	s.refreshed++
	return 0, s.refreshErr
}

func (s *stubMirror) SpendLocally(amount int) { s.spent += amount }

func (s *stubMirror) Costs(ctx context.Context) types.TokenCosts {
	if s.costs.AIImageGeneration == 0 {
		return types.TokenCosts{AIImageGeneration: 2, OrderPlacement: 1}
	}
	return s.costs
}

func testDefaults() config.DefaultsConfig {
	return config.DefaultsConfig{MachineBrand: "Brother", Format: "pes", EmbroiderySizeCm: 10}
}

func newTestController(t *testing.T, b *stubBackend, store *memoryStore, mirror *stubMirror) *Controller {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "design-test", Output: io.Discard})
	ctrl, err := NewController(b, store, mirror, testDefaults(), logg)
	require.NoError(t, err)
	return ctrl
}

func TestGenerateRequiresPrompt(t *testing.T) {
	backend := &stubBackend{}
	ctrl := newTestController(t, backend, &memoryStore{}, &stubMirror{})

	ctrl.SetPrompt("   ")
	_, err := ctrl.Generate(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, backend.generateCalls, "no network call for a blank prompt")
}

func TestGenerateAssignsIDAndPersistsRef(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 5, NormalImage: "/media/5.png"}}
	store := &memoryStore{}
	mirror := &stubMirror{}
	ctrl := newTestController(t, backend, store, mirror)

	ctrl.SetPrompt("a fox in a meadow")
	draft, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, draft.ID)
	assert.Equal(t, 5, *draft.ID)
	assert.Equal(t, "/media/5.png", draft.NormalImage)
	assert.Equal(t, enums.DraftStateHasPreview, draft.State)

	require.NotNil(t, store.ref.DesignID)
	assert.Equal(t, 5, *store.ref.DesignID)
	assert.Equal(t, "Brother", store.ref.MachineBrand)
	assert.Equal(t, "pes", store.ref.RequestedFormat)
	assert.Equal(t, 10, store.ref.EmbroiderySizeCm)
	assert.Equal(t, 1, mirror.refreshed, "balance re-fetched after the charge")
}

func TestGenerateCarriesExistingID(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 5, NormalImage: "/media/5-v2.png"}}
	ctrl := newTestController(t, backend, &memoryStore{}, &stubMirror{})

	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	require.Nil(t, backend.lastParams.DesignID, "first generation creates")

	ctrl.SetPrompt("a fox, more orange")
	_, err = ctrl.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, backend.lastParams.DesignID, "regeneration updates in place")
	assert.Equal(t, 5, *backend.lastParams.DesignID)
}

func TestGenerateFailureLeavesDraftUntouched(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 5, NormalImage: "/media/5.png"}}
	store := &memoryStore{}
	ctrl := newTestController(t, backend, store, &stubMirror{})

	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	before := ctrl.Snapshot()

	backend.generateErr = pkgerrors.New(pkgerrors.CodeDependency, "image service down")
	backend.generated = nil
	_, err = ctrl.Generate(context.Background())
	require.Error(t, err)

	after := ctrl.Snapshot()
	assert.Equal(t, before, after)
}

func TestGenerateRejectsOverlappingCalls(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &stubBackend{generated: &types.Design{ID: 1}}
	backend.generateHook = func() {
		close(started)
		<-release
	}
	ctrl := newTestController(t, backend, &memoryStore{}, &stubMirror{})
	ctrl.SetPrompt("a fox")

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Generate(context.Background())
		done <- err
	}()
	<-started

	_, err := ctrl.Generate(context.Background())
	require.ErrorIs(t, err, ErrGenerationInFlight)
	assert.Equal(t, 1, backend.generateCalls)

	close(release)
	require.NoError(t, <-done)

	// Guard released: the next deliberate regeneration goes through.
	backend.generateHook = nil
	_, err = ctrl.Generate(context.Background())
	require.NoError(t, err)
}

func TestGenerateSpendsLocallyWhenRefreshFails(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 1}}
	mirror := &stubMirror{refreshErr: pkgerrors.New(pkgerrors.CodeDependency, "down")}
	ctrl := newTestController(t, backend, &memoryStore{}, mirror)

	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mirror.spent)
}

func TestGeneratePreviewRequiresDraftID(t *testing.T) {
	ctrl := newTestController(t, &stubBackend{}, &memoryStore{}, &stubMirror{})

	_, err := ctrl.GeneratePreview(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGeneratePreviewKeepsSettings(t *testing.T) {
	backend := &stubBackend{
		generated: &types.Design{ID: 3},
		previewed: &types.Design{ID: 3, EmbroideryPreview: "/media/3-stitch.png"},
	}
	ctrl := newTestController(t, backend, &memoryStore{}, &stubMirror{})
	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	require.NoError(t, ctrl.SetSize(context.Background(), 14))

	draft, err := ctrl.GeneratePreview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/media/3-stitch.png", draft.EmbroideryPreview)
	assert.Equal(t, 14, draft.EmbroiderySizeCm)
}

func TestSaveWithoutDraftIsAMessage(t *testing.T) {
	ctrl := newTestController(t, &stubBackend{}, &memoryStore{}, &stubMirror{})

	message, err := ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "nothing to save yet", message)
}

func TestSaveTransitionsToSaved(t *testing.T) {
	backend := &stubBackend{
		generated: &types.Design{ID: 3},
		updated:   &types.Design{ID: 3},
	}
	ctrl := newTestController(t, backend, &memoryStore{}, &stubMirror{})
	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)

	message, err := ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "design saved", message)
	assert.Equal(t, enums.DraftStateSaved, ctrl.Snapshot().State)
}

func TestFeatureOpsRequireADraft(t *testing.T) {
	ctrl := newTestController(t, &stubBackend{}, &memoryStore{}, &stubMirror{})

	_, err := ctrl.Features(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = ctrl.AttachFeature(context.Background(), 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = ctrl.DetachFeature(context.Background(), 1)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAttachFeatureRefreshesBalance(t *testing.T) {
	backend := &stubBackend{
		generated: &types.Design{ID: 3},
		available: []types.DesignFeature{{ID: 7, Name: "Metallic thread", TokenCost: 1, IsActive: true}},
	}
	mirror := &stubMirror{}
	ctrl := newTestController(t, backend, &memoryStore{}, mirror)
	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)
	refreshesBefore := mirror.refreshed

	require.NoError(t, ctrl.AttachFeature(context.Background(), 7))
	assert.Equal(t, []int{7}, backend.attachedIDs)
	assert.Equal(t, refreshesBefore+1, mirror.refreshed)

	require.NoError(t, ctrl.DetachFeature(context.Background(), 7))
	assert.Equal(t, []int{7}, backend.detachedIDs)
}

func TestClearPurgesStore(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 3}}
	store := &memoryStore{}
	ctrl := newTestController(t, backend, store, &stubMirror{})
	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)

	ctrl.Clear(context.Background())

	ref := store.LoadDraftRef(context.Background())
	assert.Nil(t, ref.DesignID)
	assert.Empty(t, ref.MachineBrand)
	assert.Zero(t, ref.EmbroiderySizeCm)

	draft := ctrl.Snapshot()
	assert.Nil(t, draft.ID)
	assert.Empty(t, draft.Prompt)
	assert.Equal(t, enums.DraftStateEmpty, draft.State)
}

func TestBrandChangeSnapsUnsupportedFormat(t *testing.T) {
	ctrl := newTestController(t, &stubBackend{}, &memoryStore{}, &stubMirror{})
	ctx := context.Background()

	require.NoError(t, ctrl.SetMachineBrand(ctx, "Janome"))
	draft := ctrl.Snapshot()
	assert.Equal(t, enums.BrandJanome, draft.MachineBrand)
	assert.Equal(t, enums.FormatJEF, draft.RequestedFormat, "pes is not a Janome format")

	err := ctrl.SetFormat(ctx, "pes")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRestorePrefersLocalScalarsOverRecord(t *testing.T) {
	id := 9
	backend := &stubBackend{record: &types.Design{
		ID:               9,
		Prompt:           "a fox",
		MachineBrand:     "Brother",
		RequestedFormat:  "pes",
		EmbroiderySizeCm: 10,
		NormalImage:      "/media/9.png",
	}}
	store := &memoryStore{}
	store.SaveDraftRef(context.Background(), session.DraftRef{
		DesignID:         &id,
		MachineBrand:     "Tajima",
		RequestedFormat:  "dst",
		EmbroiderySizeCm: 20,
	})
	ctrl := newTestController(t, backend, store, &stubMirror{})

	ctrl.Restore(context.Background())
	draft := ctrl.Snapshot()
	require.NotNil(t, draft.ID)
	assert.Equal(t, 9, *draft.ID)
	assert.Equal(t, "/media/9.png", draft.NormalImage, "server owns images")
	assert.Equal(t, enums.BrandTajima, draft.MachineBrand, "local settings stay editable defaults")
	assert.Equal(t, enums.FormatDST, draft.RequestedFormat)
	assert.Equal(t, 20, draft.EmbroiderySizeCm)
}

func TestRestoreDropsVanishedDesign(t *testing.T) {
	id := 9
	backend := &stubBackend{recordErr: pkgerrors.New(pkgerrors.CodeNotFound, "design not found")}
	store := &memoryStore{}
	store.SaveDraftRef(context.Background(), session.DraftRef{DesignID: &id, MachineBrand: "Brother", RequestedFormat: "pes", EmbroiderySizeCm: 10})
	ctrl := newTestController(t, backend, store, &stubMirror{})

	ctrl.Restore(context.Background())
	assert.Nil(t, ctrl.Snapshot().ID)
	assert.Equal(t, 1, store.cleared)
}

func TestDeleteActiveDraftClearsIt(t *testing.T) {
	backend := &stubBackend{generated: &types.Design{ID: 3}}
	store := &memoryStore{}
	ctrl := newTestController(t, backend, store, &stubMirror{})
	ctrl.SetPrompt("a fox")
	_, err := ctrl.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.Delete(context.Background(), 3))
	assert.Equal(t, []int{3}, backend.deletedIDs)
	assert.Nil(t, ctrl.Snapshot().ID)
}
