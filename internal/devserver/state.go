package devserver

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stitchforge/embroidery-studio/pkg/types"
)

// account is one seeded user with its private data.
type account struct {
	profile  types.UserProfile
	password string

	balance      int
	transactions []types.TokenTransaction

	designs map[int]*types.Design
	cart    []types.CartItem
	orders  map[int]*types.Order

	conversations map[int]*conversation
}

type conversation struct {
	meta     types.Conversation
	messages []types.ChatMessage
}

// pendingPayment is a created-but-unverified checkout session.
type pendingPayment struct {
	username  string
	packageID int
}

// state is the whole in-memory world behind the stub backend. One lock
// guards everything; this server exists for local development and tests, not
// for throughput.
type state struct {
	mu sync.Mutex

	accounts map[string]*account
	nextID   int

	costs    types.TokenCosts
	packages map[int]*types.TokenPackage
	tiers    map[int]*types.SizePricingTier
	features map[int]*types.DesignFeature
	payments map[string]pendingPayment

	resources      map[int]*types.OrderResource
	designFeatures map[int][]int
	now            func() time.Time
}

func newState() *state {
	s := &state{
		accounts:       map[string]*account{},
		nextID:         100,
		costs:          types.TokenCosts{AIImageGeneration: 2, OrderPlacement: 1},
		packages:       map[int]*types.TokenPackage{},
		tiers:          map[int]*types.SizePricingTier{},
		features:       map[int]*types.DesignFeature{},
		payments:       map[string]pendingPayment{},
		resources:      map[int]*types.OrderResource{},
		designFeatures: map[int][]int{},
		now:            time.Now,
	}
	s.seed()
	return s
}

func (s *state) seed() {
	s.accounts["stitcher"] = &account{
		profile: types.UserProfile{
			ID:            1,
			Username:      "stitcher",
			Email:         "stitcher@example.com",
			FirstName:     "Sam",
			EmailVerified: true,
		},
		password:      "hunter22",
		balance:       10,
		designs:       map[int]*types.Design{},
		orders:        map[int]*types.Order{},
		conversations: map[int]*conversation{},
	}
	s.accounts["admin"] = &account{
		profile: types.UserProfile{
			ID:            2,
			Username:      "admin",
			Email:         "admin@example.com",
			IsStaff:       true,
			EmailVerified: true,
		},
		password:      "admin123",
		balance:       100,
		designs:       map[int]*types.Design{},
		orders:        map[int]*types.Order{},
		conversations: map[int]*conversation{},
	}

	s.packages[1] = &types.TokenPackage{ID: 1, Name: "Starter", Tokens: 10, Price: decimal.RequireFromString("4.99"), Currency: "USD", IsActive: true}
	s.packages[2] = &types.TokenPackage{ID: 2, Name: "Studio", Tokens: 50, Price: decimal.RequireFromString("19.99"), Currency: "USD", IsPopular: true, IsActive: true}
	s.packages[3] = &types.TokenPackage{ID: 3, Name: "Workshop", Tokens: 150, Price: decimal.RequireFromString("49.99"), Currency: "USD", IsActive: true}

	s.tiers[1] = &types.SizePricingTier{ID: 1, MinSizeCm: 1, MaxSizeCm: 10, Price: decimal.RequireFromString("2.00"), Currency: "USD"}
	s.tiers[2] = &types.SizePricingTier{ID: 2, MinSizeCm: 10, MaxSizeCm: 20, Price: decimal.RequireFromString("3.50"), Currency: "USD"}

	s.features[1] = &types.DesignFeature{ID: 1, Name: "Metallic thread", Description: "Metallic thread accents", TokenCost: 1, IsActive: true}
	s.features[2] = &types.DesignFeature{ID: 2, Name: "Glow in the dark", Description: "Phosphorescent top stitching", TokenCost: 2, IsActive: true}
}

func (s *state) id() int {
	s.nextID++
	return s.nextID
}

// charge deducts tokens and records the ledger entry. Returns false when the
// balance cannot cover the amount.
func (s *state) charge(acct *account, amount int, description string) bool {
	if acct.balance < amount {
		return false
	}
	acct.balance -= amount
	acct.transactions = append(acct.transactions, types.TokenTransaction{
		ID:          s.id(),
		Amount:      -amount,
		Kind:        "spend",
		Description: description,
		CreatedAt:   s.now(),
	})
	return true
}

func (s *state) credit(acct *account, amount int, description string) {
	acct.balance += amount
	acct.transactions = append(acct.transactions, types.TokenTransaction{
		ID:          s.id(),
		Amount:      amount,
		Kind:        "purchase",
		Description: description,
		CreatedAt:   s.now(),
	})
}

func (s *state) findOrder(orderID int) (*account, *types.Order) {
	for _, acct := range s.accounts {
		if order, ok := acct.orders[orderID]; ok {
			return acct, order
		}
	}
	return nil, nil
}

func cartSnapshot(acct *account) []types.CartItem {
	items := make([]types.CartItem, len(acct.cart))
	copy(items, acct.cart)
	return items
}

func designDetails(d *types.Design) types.DesignDetails {
	return types.DesignDetails{
		Name:              d.Name,
		Prompt:            d.Prompt,
		RequestedFormat:   d.RequestedFormat,
		NormalImage:       d.NormalImage,
		EmbroideryPreview: d.EmbroideryPreview,
	}
}
