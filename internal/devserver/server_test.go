package devserver_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitchforge/embroidery-studio/internal/devserver"
	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/pagination"
)

type memoryTokens struct {
	mu     sync.Mutex
	access string
}

func (m *memoryTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memoryTokens) set(token string) {
	m.mu.Lock()
	m.access = token
	m.mu.Unlock()
}

func newHarness(t *testing.T) (*api.Client, *memoryTokens, func()) {
	t.Helper()

	logg := logger.New(logger.Options{Output: io.Discard})
	server, err := devserver.New(logg)
	require.NoError(t, err)

	srv := httptest.NewServer(server)
	tokens := &memoryTokens{}
	client, err := api.NewClient(config.APIConfig{BaseURL: srv.URL + "/api"}, api.Options{
		Tokens: tokens,
		Logger: logg,
	})
	require.NoError(t, err)

	return client, tokens, srv.Close
}

func signIn(t *testing.T, client *api.Client, tokens *memoryTokens, username, password string) {
	t.Helper()
	result, err := client.Login(context.Background(), username, password)
	require.NoError(t, err)
	tokens.set(result.Tokens.Access)
}

func TestLoginIssuesUsableToken(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()

	result, err := client.Login(context.Background(), "stitcher", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.Access)
	assert.Equal(t, "stitcher", result.User.Username)
	assert.False(t, result.User.IsStaff)

	tokens.set(result.Tokens.Access)
	profile, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stitcher", profile.Username)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	client, _, done := newHarness(t)
	defer done()

	_, err := client.Login(context.Background(), "stitcher", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUnauthenticatedRequestTriggersHook(t *testing.T) {
	logg := logger.New(logger.Options{Output: io.Discard})
	server, err := devserver.New(logg)
	require.NoError(t, err)
	srv := httptest.NewServer(server)
	defer srv.Close()

	fired := 0
	client, err := api.NewClient(config.APIConfig{BaseURL: srv.URL + "/api"}, api.Options{
		Tokens:         &memoryTokens{},
		Logger:         logg,
		OnUnauthorized: func() { fired++ },
	})
	require.NoError(t, err)

	_, err = client.TokenBalance(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	assert.Equal(t, 1, fired)
}

func TestGenerateChargesTokens(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	before, err := client.TokenBalance(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, before)

	design, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt:           "a fox curled around a moon",
		MachineBrand:     "brother",
		RequestedFormat:  "pes",
		EmbroiderySizeCm: 10,
	})
	require.NoError(t, err)
	assert.NotZero(t, design.ID)
	assert.NotEmpty(t, design.NormalImage)

	after, err := client.TokenBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, after)

	transactions, err := client.TokenTransactions(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, -2, transactions[0].Amount)
}

func TestGenerateReusesDesignID(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	first, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "rose", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 10,
	})
	require.NoError(t, err)

	second, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		DesignID: &first.ID,
		Prompt:   "rose with thorns", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	designs, err := client.ListDesigns(context.Background())
	require.NoError(t, err)
	assert.Len(t, designs, 1)
}

func TestGenerateWithEmptyBalanceFails(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()

	_, _, err := client.Register(context.Background(), api.RegisterParams{
		Username: "broke", Email: "broke@example.com", Password: "hunter2222",
	})
	require.NoError(t, err)
	signIn(t, client, tokens, "broke", "hunter2222")

	_, err = client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "anything", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 10,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInsufficientTokens))
}

func TestCheckoutFlow(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	design, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "koi", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 12,
	})
	require.NoError(t, err)

	require.NoError(t, client.AddToCart(context.Background(), design.ID))

	view, err := client.ViewCart(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, design.ID, view.Items[0].DesignID)

	// Same design twice is refused.
	require.Error(t, client.AddToCart(context.Background(), design.ID))

	orders, err := client.Checkout(context.Background(), []string{"pes", "dst"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "submitted", orders[0].Status.String())
	assert.Equal(t, []string{"pes", "dst"}, orders[0].RequestedFormats)
	require.Len(t, orders[0].Items, 1)

	view, err = client.ViewCart(context.Background())
	require.NoError(t, err)
	assert.Zero(t, view.Count)

	// 10 - 2 generation - 1 placement.
	balance, err := client.TokenBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, balance)

	listed, err := client.ListOrders(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, orders[0].ID, listed[0].ID)
}

func TestCheckoutWithEmptyCartFails(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	_, err := client.Checkout(context.Background(), []string{"pes"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDownloadStreamsFile(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	design, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "anchor", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 8,
	})
	require.NoError(t, err)
	require.NoError(t, client.AddToCart(context.Background(), design.ID))
	orders, err := client.Checkout(context.Background(), []string{"pes"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, client.DownloadOrderFile(context.Background(), orders[0].ID, "pes", &buf))
	assert.True(t, strings.Contains(buf.String(), "format=pes"))
}

func TestPaymentPurchaseCreditsBalance(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	packages, err := client.TokenPackages(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, packages)

	var starter int
	for _, pkg := range packages {
		if pkg.Name == "Starter" {
			starter = pkg.ID
		}
	}
	require.NotZero(t, starter)

	session, err := client.CreateCheckoutSession(context.Background(), starter)
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.URL)

	added, balance, err := client.VerifyPayment(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 10, added)
	assert.Equal(t, 20, balance)

	// A session verifies once.
	_, _, err = client.VerifyPayment(context.Background(), session.SessionID)
	require.Error(t, err)
}

func TestFeatureAttachRequiresTokens(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	design, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "oak leaf", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 10,
	})
	require.NoError(t, err)

	features, err := client.AvailableFeatures(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, features)

	require.NoError(t, client.AddFeatureToDesign(context.Background(), design.ID, features[0].ID))

	attached, err := client.DesignFeatures(context.Background(), design.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)

	require.NoError(t, client.RemoveFeatureFromDesign(context.Background(), design.ID, features[0].ID))
	attached, err = client.DesignFeatures(context.Background(), design.ID)
	require.NoError(t, err)
	assert.Empty(t, attached)
}

func TestChatRoundTrip(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	message, err := client.PostMessage(context.Background(), 1, "where is my order?")
	require.NoError(t, err)
	assert.Equal(t, "where is my order?", message.Body)
	assert.Equal(t, "stitcher", message.Sender)

	conversations, err := client.Conversations(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 1)

	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdminRoutesRequireStaff(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "stitcher", "hunter22")

	_, err := client.AdminListOrders(context.Background(), pagination.Params{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestAdminManagesOrderLifecycle(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()

	// Customer places an order.
	signIn(t, client, tokens, "stitcher", "hunter22")
	design, err := client.GenerateAIImage(context.Background(), api.GenerateParams{
		Prompt: "wren", MachineBrand: "brother", RequestedFormat: "pes", EmbroiderySizeCm: 6,
	})
	require.NoError(t, err)
	require.NoError(t, client.AddToCart(context.Background(), design.ID))
	orders, err := client.Checkout(context.Background(), []string{"pes"})
	require.NoError(t, err)

	// Staff moves it through the pipeline.
	signIn(t, client, tokens, "admin", "admin123")
	all, err := client.AdminListOrders(context.Background(), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, client.AdminUpdateOrderStatus(context.Background(), orders[0].ID, "processing"))
	fetched, err := client.AdminGetOrder(context.Background(), orders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "processing", fetched.Status.String())

	err = client.AdminUpdateOrderStatus(context.Background(), orders[0].ID, "sideways")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAdminPricingAndPackages(t *testing.T) {
	client, tokens, done := newHarness(t)
	defer done()
	signIn(t, client, tokens, "admin", "admin123")

	tiers, err := client.ListSizePricing(context.Background())
	require.NoError(t, err)
	assert.Len(t, tiers, 2)

	pkg, err := client.CreateTokenPackage(context.Background(), api.TokenPackageParams{
		Name: "Atelier", Tokens: 500, Currency: "USD", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Atelier", pkg.Name)

	require.NoError(t, client.SetPackagePopular(context.Background(), pkg.ID))

	packages, err := client.ManageTokenPackages(context.Background())
	require.NoError(t, err)
	popularCount := 0
	for _, p := range packages {
		if p.IsPopular {
			assert.Equal(t, pkg.ID, p.ID)
			popularCount++
		}
	}
	assert.Equal(t, 1, popularCount)
}

func TestHealth(t *testing.T) {
	client, _, done := newHarness(t)
	defer done()

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
}
