package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/stitchforge/embroidery-studio/internal/admin"
	"github.com/stitchforge/embroidery-studio/internal/auth"
	"github.com/stitchforge/embroidery-studio/internal/cart"
	"github.com/stitchforge/embroidery-studio/internal/chat"
	"github.com/stitchforge/embroidery-studio/internal/checkout"
	"github.com/stitchforge/embroidery-studio/internal/design"
	"github.com/stitchforge/embroidery-studio/internal/nav"
	"github.com/stitchforge/embroidery-studio/internal/orders"
	"github.com/stitchforge/embroidery-studio/internal/session"
	"github.com/stitchforge/embroidery-studio/internal/tokens"
	"github.com/stitchforge/embroidery-studio/pkg/api"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	"github.com/stitchforge/embroidery-studio/pkg/db"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
	"github.com/stitchforge/embroidery-studio/pkg/metrics"
)

// App wires the whole studio: the backend client, the local session store,
// and every view-facing service, sharing one set of mirrors between them.
type App struct {
	Config  *config.Config
	Logger  *logger.Logger
	Client  *api.Client
	Session *session.Store

	Auth     auth.Service
	Tokens   tokens.Service
	Design   *design.Controller
	Cart     *cart.Service
	Checkout *checkout.Orchestrator
	Orders   *orders.Service
	Chat     *chat.Service
	Admin    *admin.Service
	Nav      *nav.Shell

	db *db.Client
}

// New boots the studio against the configured backend. The session database
// opens (and migrates) first because the API client reads its access token
// from there.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	dbClient, err := db.Open(ctx, cfg.Session.DBPath, logg)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	a := &App{Config: cfg, Logger: logg, db: dbClient}

	closeOnErr := func(err error) error {
		return multierr.Append(err, dbClient.Close())
	}

	a.Session, err = session.NewStore(ctx, dbClient, logg)
	if err != nil {
		return nil, closeOnErr(fmt.Errorf("building session store: %w", err))
	}

	a.Client, err = api.NewClient(cfg.API, api.Options{
		Tokens:  a.Session,
		Logger:  logg,
		Metrics: metrics.NewRequestMetrics(prometheus.NewRegistry()),
		// A 401 means the backend no longer honors the stored session. Drop
		// to the signed-out state: tokens gone, mirrors emptied.
		OnUnauthorized: func() { a.dropSession(ctx) },
	})
	if err != nil {
		return nil, closeOnErr(fmt.Errorf("building api client: %w", err))
	}

	a.Auth, err = auth.NewService(a.Client, a.Session, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Tokens, err = tokens.NewService(a.Client, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Design, err = design.NewController(a.Client, a.Session, a.Tokens, cfg.Defaults, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Cart, err = cart.NewService(a.Client, a.Design, a.Session, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Nav, err = nav.NewShell(a.Cart, a.Session, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Checkout, err = checkout.NewOrchestrator(a.Client, a.Cart, a.Tokens, a.Nav, cfg.Checkout, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Orders, err = orders.NewService(a.Client, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Chat, err = chat.NewService(a.Client, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}
	a.Admin, err = admin.NewService(a.Client, logg)
	if err != nil {
		return nil, closeOnErr(err)
	}

	return a, nil
}

// RestoreSession rehydrates local state for a signed-in user: draft from the
// saved ref, cart mirror, balance mirror. Safe to call signed out; failures
// leave the mirrors empty rather than blocking startup.
func (a *App) RestoreSession(ctx context.Context) {
	if !a.Auth.SignedIn(ctx) {
		return
	}
	a.Design.Restore(ctx)
	if _, err := a.Cart.Load(ctx); err != nil {
		a.Logger.Warn(a.Logger.WithField(ctx, "error", err.Error()), "cart restore failed")
	}
	if _, err := a.Tokens.Refresh(ctx); err != nil {
		a.Logger.Warn(a.Logger.WithField(ctx, "error", err.Error()), "balance restore failed")
	}
}

func (a *App) dropSession(ctx context.Context) {
	a.Session.ClearTokens(ctx)
	a.Tokens.Forget()
	a.Cart.Forget()
}

// Close releases everything the app holds open.
func (a *App) Close() error {
	var err error
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	return err
}
