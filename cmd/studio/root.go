package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stitchforge/embroidery-studio/internal/app"
	"github.com/stitchforge/embroidery-studio/pkg/config"
	pkgerrors "github.com/stitchforge/embroidery-studio/pkg/errors"
	"github.com/stitchforge/embroidery-studio/pkg/logger"
)

// studio is the shared composition root for every command. It is built in the
// persistent pre-run so flag parsing and help never touch the session db.
var studio *app.App

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Embroidery Studio - order AI embroidery designs from the terminal",
	Long: `Embroidery Studio drives the embroidery backend from the command line:
generate AI designs, tune machine settings, stage a cart, and place orders
paid for with tokens.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func execute(cfg *config.Config, logg *logger.Logger) error {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		a, err := app.New(cmd.Context(), cfg, logg)
		if err != nil {
			return err
		}
		studio = a
		studio.RestoreSession(cmd.Context())
		return nil
	}
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		if studio != nil {
			if err := studio.Close(); err != nil {
				logg.Warn(logg.WithField(context.Background(), "error", err.Error()), "shutdown left residue")
			}
		}
	}

	rootCmd.AddCommand(
		loginCmd, registerCmd, logoutCmd, profileCmd,
		designCmd, cartCmd, ordersCmd, tokensCmd, chatCmd, adminCmd, navCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", renderError(err))
		return err
	}
	return nil
}

// renderError keeps backend messages verbatim and prefixes them with the
// domain code so scripted callers can branch on it.
func renderError(err error) string {
	if domainErr := pkgerrors.As(err); domainErr != nil {
		return fmt.Sprintf("[%s] %s", domainErr.Code(), domainErr.Message())
	}
	return err.Error()
}

func parseID(raw, label string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s id %q", label, raw)
	}
	return id, nil
}

func requireSignIn(cmd *cobra.Command) error {
	if !studio.Auth.SignedIn(cmd.Context()) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in first: studio login <username>")
	}
	return nil
}
