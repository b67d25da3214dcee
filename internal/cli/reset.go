package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/feedbacks/internal/admin"
	"github.com/JonMunkholm/feedbacks/internal/application"
)

var errResetNotConfirmed = errors.New("refusing to delete all feedback without --yes")

func newResetCmd(open Opener) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every feedback record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			return withApp(cmd, open, func(ctx context.Context, app *application.App) error {
				n, err := admin.ResetAll(ctx, app.Store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d feedback entries.\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
