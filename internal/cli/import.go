package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/feedbacks/internal/application"
	"github.com/JonMunkholm/feedbacks/internal/core"
)

func newImportCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>...",
		Short: "Import feedback CSV files",
		Long: `Runs each file through the same pipeline as the upload endpoint.
Files are imported one at a time; each file is all-or-nothing and the first
failure stops the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *application.App) error {
				for _, path := range args {
					result, err := app.Service.ImportFile(ctx, path)
					if err != nil {
						return fmt.Errorf("import %s: %s: %w", path, core.FormatUserError(core.MapError(err)), err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d rows rejected)\n",
						result.FileName, result.Message(), result.Rejected)
				}
				return nil
			})
		},
	}
}
