package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"backoffice/models"
	"backoffice/services/aggregator"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func activityCmd(env *cliEnv) *cobra.Command {
	var remote, asJSON bool
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show customers, payments, subscriptions and token transactions as one list",
		Long: `Show the merged activity view.

By default the four listings are fetched and merged locally; --remote asks the
server for the merged page instead.

Examples:
  consolectl activity --kind payment --status failed
  consolectl activity --search kiota --sort-by amount --dir asc --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := env.Client()
			if err != nil {
				return err
			}
			patch, err := patchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}

			var agg aggregator.AggregationService = c
			if !remote {
				agg = aggregator.NewAggregator(c.Sources(), aggregator.WithLogger(env.Logger()))
			}
			ctrl := aggregator.NewController(agg, models.DefaultFilterState())
			ctrl.Update(patch)

			res, err := ctrl.Refresh(cmd.Context())
			if err != nil {
				if aggErr, ok := aggregator.IsAggregationError(err); ok {
					for _, msg := range aggErr.Messages() {
						fmt.Fprintln(cmd.ErrOrStderr(), "  "+msg)
					}
				}
				return fmt.Errorf("loading activity: %w", err)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			renderActivity(cmd.OutOrStdout(), ctrl.Filters(), res)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("search", "s", "", "case-insensitive text search")
	f.StringP("kind", "k", "", "all, customer, payment, subscription or token")
	f.String("status", "", "status filter (\"all\" for none)")
	f.String("sort-by", "", "sort field, e.g. occurredAt, amount, customerName")
	f.String("dir", "", "sort direction: asc or desc")
	f.IntP("page", "p", 0, "page number")
	f.IntP("page-size", "n", 0, "rows per page")
	f.BoolVar(&remote, "remote", false, "let the server merge the listings")
	f.BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// patchFromFlags turns the flags the user actually set into a FilterPatch.
func patchFromFlags(f *pflag.FlagSet) (aggregator.FilterPatch, error) {
	var p aggregator.FilterPatch
	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	num := func(name string) (*int, error) {
		if !f.Changed(name) {
			return nil, nil
		}
		v, err := f.GetInt(name)
		if err != nil {
			return nil, err
		}
		if v < 1 {
			return nil, fmt.Errorf("--%s must be at least 1", name)
		}
		return &v, nil
	}

	p.Search = str("search")
	p.Status = str("status")
	if v := str("kind"); v != nil {
		k := models.ItemKind(*v)
		p.Kind = &k
	}
	if v := str("sort-by"); v != nil {
		s := models.SortField(*v)
		p.SortBy = &s
	}
	if v := str("dir"); v != nil {
		d := models.SortDirection(*v)
		p.SortDirection = &d
	}
	var err error
	if p.Page, err = num("page"); err != nil {
		return p, err
	}
	if p.PageSize, err = num("page-size"); err != nil {
		return p, err
	}
	return p, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func renderActivity(w io.Writer, filters models.FilterState, res *aggregator.Result) {
	if len(res.Items) == 0 {
		fmt.Fprintln(w, "No activity matches these filters.")
		return
	}

	rows := make([][]string, 0, len(res.Items))
	for _, it := range res.Items {
		amount := ""
		if it.Amount != nil {
			amount = strconv.FormatFloat(*it.Amount, 'f', 2, 64)
		}
		rows = append(rows, []string{
			it.OccurredAt.Local().Format("2006-01-02 15:04"),
			string(it.Kind),
			it.CustomerName,
			string(it.CustomerType),
			it.Status,
			amount,
			it.Details,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("WHEN", "KIND", "CUSTOMER", "TYPE", "STATUS", "AMOUNT", "DETAILS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())

	pages := (res.TotalCount + filters.PageSize - 1) / filters.PageSize
	fmt.Fprintf(w, "page %d of %d, %d matching records\n", res.Page, max(pages, 1), res.TotalCount)
}
