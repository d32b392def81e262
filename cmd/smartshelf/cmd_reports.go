package main

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/storage"
)

// exportDir is where exports land on the configured disk.
const exportDir = "exports"

// smartshelf report sales
func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Sales reports",
	}

	var (
		from, to string
		export   bool
		disk     string
	)
	sales := &cobra.Command{
		Use:   "sales",
		Short: "Daily revenue for a date range, optionally exported as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				page, err := c.svc.Reports.Sales(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Sales %s to %s: %d records, %s\n\n", page.Start, page.End, page.Records, page.FormattedTotal)
				err = table(out, "DATE\tREVENUE", func(w io.Writer) {
					for _, d := range page.Daily {
						fmt.Fprintf(w, "%s\t%s\n", d.Date, models.FormatCurrency(d.Revenue))
					}
				})
				if err != nil || !export {
					return err
				}

				x, err := c.svc.Reports.Export(cmd.Context(), page.Start, page.End)
				if err != nil {
					return err
				}
				d, err := storage.Open(disk)
				if err != nil {
					return err
				}
				key := path.Join(exportDir, x.FileName)
				if err := d.Put(cmd.Context(), key, x.Data, x.ContentType); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nExported to %s\n", d.URL(key))
				return nil
			})
		},
	}
	f := sales.Flags()
	f.StringVar(&from, "from", "", "first day, YYYY-MM-DD (default 30 days ago)")
	f.StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	f.BoolVar(&export, "export", false, "also write the range as an .xlsx file")
	f.StringVar(&disk, "disk", config.StorageDefault(), "storage disk for the export: local or s3")

	cmd.AddCommand(sales)
	return cmd
}

// smartshelf analytics
func newAnalyticsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Monthly sales against purchases and top products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				page, err := c.svc.Analytics.Page(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, page)
				}
				if page.Empty {
					fmt.Fprintln(out, "No analytics data yet.")
					return nil
				}
				err = table(out, "MONTH\tSALES\tPURCHASES", func(w io.Writer) {
					for _, m := range page.MonthlySalesVsPurchases {
						fmt.Fprintf(w, "%s\t%s\t%s\n", m.Month, models.FormatCurrency(m.SalesRevenue), models.FormatCurrency(m.PurchaseCost))
					}
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				return table(out, "PRODUCT\tREVENUE", func(w io.Writer) {
					for _, p := range page.TopProductsByRevenue {
						fmt.Fprintf(w, "%s\t%s\n", p.Name, models.FormatCurrency(p.Value))
					}
				})
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}
