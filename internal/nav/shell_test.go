package nav

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/pkg/enums"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/types"
)

type stubCart struct{ count int }

func (s *stubCart) Count() int { return s.count }

type stubRedirectStore struct{ marked bool }

func (s *stubRedirectStore) AdminRedirected(ctx context.Context) bool { return s.marked }
func (s *stubRedirectStore) MarkAdminRedirected(ctx context.Context)  { s.marked = true }

func newTestShell(t *testing.T, cart *stubCart, store *stubRedirectStore) *Shell {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "nav-test", Output: io.Discard})
	shell, err := NewShell(cart, store, logg)
	require.NoError(t, err)
	return shell
}

func TestDeriveActiveView(t *testing.T) {
	cases := map[string]enums.ViewID{
		"/dashboard/cart":            enums.ViewCart,
		"/dashboard/orders":          enums.ViewOrders,
		"/dashboard/orders/":         enums.ViewOrders,
		"/dashboard/my-designs":      enums.ViewMyDesigns,
		"/dashboard/unknown-segment": enums.ViewNewDesign,
		"/dashboard":                 enums.ViewNewDesign,
		"/":                          enums.ViewNewDesign,
		"":                           enums.ViewNewDesign,
		"/dashboard/admin":           enums.ViewAdmin,
	}
	for path, want := range cases {
		assert.Equal(t, want, DeriveActiveView(path), "path %q", path)
	}
}

func TestNavigateAndTitle(t *testing.T) {
	shell := newTestShell(t, &stubCart{count: 3}, &stubRedirectStore{})

	view := shell.Navigate("/dashboard/cart")
	assert.Equal(t, enums.ViewCart, view)
	assert.Equal(t, enums.ViewCart, shell.Current())
	assert.Equal(t, "Cart", shell.Title())
	assert.Equal(t, 3, shell.Badge())
}

func TestSwitchNotifiesListenersOnChangeOnly(t *testing.T) {
	shell := newTestShell(t, &stubCart{}, &stubRedirectStore{})

	var seen []enums.ViewID
	shell.OnSwitch(func(view enums.ViewID) { seen = append(seen, view) })

	shell.Switch(enums.ViewOrders)
	shell.Switch(enums.ViewOrders)
	shell.Switch(enums.ViewCart)
	assert.Equal(t, []enums.ViewID{enums.ViewOrders, enums.ViewCart}, seen)
}

func TestApplyProfileRedirectsStaffOnce(t *testing.T) {
	store := &stubRedirectStore{}
	shell := newTestShell(t, &stubCart{}, store)
	ctx := context.Background()
	staff := &types.UserProfile{Username: "admin", IsStaff: true}

	shell.ApplyProfile(ctx, staff)
	assert.Equal(t, enums.ViewAdmin, shell.Current())

	// Staff may navigate away; a profile re-fetch must not drag them back.
	shell.Navigate("/dashboard/orders")
	shell.ApplyProfile(ctx, staff)
	assert.Equal(t, enums.ViewOrders, shell.Current())
}

func TestApplyProfileIgnoresRegularUsers(t *testing.T) {
	shell := newTestShell(t, &stubCart{}, &stubRedirectStore{})

	shell.ApplyProfile(context.Background(), &types.UserProfile{Username: "stitcher"})
	assert.Equal(t, enums.ViewNewDesign, shell.Current())

	shell.ApplyProfile(context.Background(), nil)
	assert.Equal(t, enums.ViewNewDesign, shell.Current())
}
