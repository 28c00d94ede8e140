package cart

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/pkg/api"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type stubBackend struct {
	view      *api.CartView
	viewErr   error
	addErr    error
	added     []int
	removeErr error
	removed   []int
	cleared   int
}

func (s *stubBackend) ViewCart(ctx context.Context) (*api.CartView, error) {
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	if s.view == nil {
		return &api.CartView{}, nil
	}
	return s.view, nil
}

func (s *stubBackend) AddToCart(ctx context.Context, designID int) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.added = append(s.added, designID)
	return nil
}

func (s *stubBackend) RemoveCartItem(ctx context.Context, itemID int) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removed = append(s.removed, itemID)
	return nil
}

func (s *stubBackend) ClearCart(ctx context.Context) error {
	s.cleared++
	return nil
}

func (s *stubBackend) ValidateCart(ctx context.Context) error { return nil }

type stubDraft struct {
	id        *int
	saveErr   error
	saveCalls int
	marked    bool
}

func (s *stubDraft) Settings() (*int, types.DesignSettings) {
	return s.id, types.DesignSettings{MachineBrand: "Brother", RequestedFormat: "pes", EmbroiderySizeCm: 10}
}

func (s *stubDraft) Save(ctx context.Context) (string, error) {
	s.saveCalls++
	return "design saved", s.saveErr
}

func (s *stubDraft) MarkAddedToCart() { s.marked = true }

type stubFormatStore struct {
	saved []string
}

func (s *stubFormatStore) SaveSelectedFormats(ctx context.Context, formats []string) {
	s.saved = formats
}

func (s *stubFormatStore) LoadSelectedFormats(ctx context.Context) []string { return s.saved }

func newTestService(t *testing.T, b *stubBackend, d *stubDraft) (*Service, *stubFormatStore) {
	t.Helper()
	store := &stubFormatStore{}
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
	svc, err := NewService(b, d, store, logg)
	require.NoError(t, err)
	return svc, store
}

func item(id int, format string) types.CartItem {
	return types.CartItem{ID: id, DesignDetails: types.DesignDetails{RequestedFormat: format}}
}

func TestLoadSeedsFormatsFromFirstItem(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "jef"), item(2, "dst")}, Count: 2}}
	svc, store := newTestService(t, backend, &stubDraft{})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jef"}, svc.SelectedFormats())
	assert.Equal(t, []string{"jef"}, store.saved)
}

func TestLoadDefaultsFormatsWhenFirstItemHasNone(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "")}, Count: 1}}
	svc, _ := newTestService(t, backend, &stubDraft{})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pes"}, svc.SelectedFormats())
}

func TestLoadEmptyCartDefaultsFormats(t *testing.T) {
	svc, _ := newTestService(t, &stubBackend{}, &stubDraft{})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pes"}, svc.SelectedFormats())
	assert.Zero(t, svc.Count())
}

func TestLoadReplacesWholesale(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "pes"), item(2, "pes")}, Count: 2}}
	svc, _ := newTestService(t, backend, &stubDraft{})

	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Count())

	backend.view = &api.CartView{Items: []types.CartItem{item(3, "pes")}, Count: 1}
	items, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].ID)
	assert.Equal(t, 1, svc.Count())
}

func TestToggleFormatNeverEmpties(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "jef")}, Count: 1}}
	svc, _ := newTestService(t, backend, &stubDraft{})
	ctx := context.Background()
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.ToggleFormat(ctx, "dst"))
	assert.ElementsMatch(t, []string{"jef", "dst"}, svc.SelectedFormats())

	require.NoError(t, svc.ToggleFormat(ctx, "dst"))
	assert.Equal(t, []string{"jef"}, svc.SelectedFormats())

	// Removing the last selected format is a no-op.
	require.NoError(t, svc.ToggleFormat(ctx, "jef"))
	assert.Equal(t, []string{"jef"}, svc.SelectedFormats())
}

func TestToggleFormatRejectsUnknown(t *testing.T) {
	svc, _ := newTestService(t, &stubBackend{}, &stubDraft{})
	err := svc.ToggleFormat(context.Background(), "docx")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAddActiveDraftSavesThenAdds(t *testing.T) {
	id := 5
	draft := &stubDraft{id: &id}
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(10, "pes")}, Count: 1}}
	svc, _ := newTestService(t, backend, draft)

	require.NoError(t, svc.AddActiveDraft(context.Background()))
	assert.Equal(t, 1, draft.saveCalls, "settings saved before add")
	assert.Equal(t, []int{5}, backend.added)
	assert.True(t, draft.marked)
	assert.Equal(t, 1, svc.Count(), "mirror reloaded, item present exactly once")
}

func TestAddActiveDraftWithoutDesign(t *testing.T) {
	draft := &stubDraft{}
	backend := &stubBackend{}
	svc, _ := newTestService(t, backend, draft)

	err := svc.AddActiveDraft(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, backend.added)
}

func TestAddActiveDraftSurfacesServerRefusal(t *testing.T) {
	id := 5
	draft := &stubDraft{id: &id}
	backend := &stubBackend{addErr: pkgerrors.New(pkgerrors.CodeConflict, "design already in cart")}
	svc, _ := newTestService(t, backend, draft)

	err := svc.AddActiveDraft(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "design already in cart")
	assert.False(t, draft.marked)
}

func TestRemoveConfirmsBeforeMutating(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "pes"), item(2, "pes")}, Count: 2}}
	svc, _ := newTestService(t, backend, &stubDraft{})
	ctx := context.Background()
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	backend.removeErr = pkgerrors.New(pkgerrors.CodeDependency, "backend down")
	require.Error(t, svc.Remove(ctx, 1))
	assert.Equal(t, 2, svc.Count(), "failed removal keeps the item visible")

	backend.removeErr = nil
	require.NoError(t, svc.Remove(ctx, 1))
	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 2, svc.Items()[0].ID)
}

func TestClearEmptiesMirror(t *testing.T) {
	backend := &stubBackend{view: &api.CartView{Items: []types.CartItem{item(1, "pes")}, Count: 1}}
	svc, _ := newTestService(t, backend, &stubDraft{})
	ctx := context.Background()
	_, err := svc.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))
	assert.Zero(t, svc.Count())
	assert.Equal(t, 1, backend.cleared)
}
