package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/feedbacks/internal/application"
	"github.com/JonMunkholm/feedbacks/internal/seed"
)

func newSeedCmd(open Opener) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample data set",
		Long: fmt.Sprintf(`Inserts %d sample feedback records with ids 1 to %d.
With --out the records are written as an importable CSV file instead and the
database is not touched.`, seed.Size, seed.Size),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" {
				return writeSeedFile(cmd, out)
			}
			return withApp(cmd, open, func(ctx context.Context, app *application.App) error {
				n, err := seed.Insert(ctx, app.Store)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d feedback entries.\n", n)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the sample data as CSV to this file")
	return cmd
}

func writeSeedFile(cmd *cobra.Command, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := seed.WriteCSV(f, seed.Records()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d feedback entries to %s.\n", seed.Size, path)
	return nil
}
