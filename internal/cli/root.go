// Package cli implements feedbackctl, the administrative command line for
// the feedback store.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/feedbacks/internal/application"
	"github.com/JonMunkholm/feedbacks/internal/config"
	"github.com/JonMunkholm/feedbacks/internal/logging"
)

// Opener builds the application a command operates on.
type Opener func(ctx context.Context) (*application.App, error)

// OpenPostgres loads the configuration from the environment and connects to
// the configured database.
func OpenPostgres(ctx context.Context) (*application.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return application.Open(ctx, cfg, nil)
}

// NewRootCmd returns the feedbackctl command tree. Commands that need the
// store call open lazily, so flag errors and seed --out never connect.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "Administer the feedback store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCmd(open),
		newSeedCmd(open),
		newListCmd(open),
		newResetCmd(open),
	)
	return root
}

// withApp opens the application for the duration of fn.
func withApp(cmd *cobra.Command, open Opener, fn func(ctx context.Context, app *application.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := open(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
