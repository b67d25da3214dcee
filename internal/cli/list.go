package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/feedbacks/internal/application"
	"github.com/JonMunkholm/feedbacks/internal/core"
)

type listOptions struct {
	page   int
	limit  int
	search string
	json   bool
}

func newListCmd(open Opener) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, open, func(ctx context.Context, app *application.App) error {
				resp, err := app.Service.ListFeedback(ctx, core.PageRequest{
					Page:   opts.page,
					Limit:  opts.limit,
					Search: opts.search,
				})
				if err != nil {
					return err
				}
				if opts.json {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(resp)
				}
				return printPage(cmd, resp)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", core.DefaultListLimit, "records per page")
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "case-insensitive match on name or body")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the page as JSON")
	return cmd
}

func printPage(cmd *cobra.Command, resp core.PageResponse) error {
	out := cmd.OutOrStdout()
	if len(resp.Data) == 0 {
		fmt.Fprintf(out, "No feedback found (page %d of %d).\n", resp.Page, resp.TotalPages)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPOST\tNAME\tEMAIL\tBODY")
	for _, fb := range resp.Data {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n",
			fb.ID, fb.PostID, fb.Name, fb.Email, strings.ReplaceAll(fb.Body, "\n", `\n`))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Page %d of %d (%d total)\n", resp.Page, resp.TotalPages, resp.TotalItems)
	return nil
}
