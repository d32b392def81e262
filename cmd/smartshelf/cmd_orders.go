package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/models"
)

// smartshelf forecast
func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Demand forecast and restock ordering",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List the forecast with suggested order quantities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				rows, err := c.svc.Forecast.List(cmd.Context(), status)
				if err != nil {
					return err
				}
				return table(cmd.OutOrStdout(), "ID\tPRODUCT\tSTOCK\tDEMAND\tSTATUS\tSUGGESTED", func(w io.Writer) {
					for _, r := range rows {
						suggested := "-"
						if r.Actionable {
							suggested = fmt.Sprint(r.Suggested)
						}
						fmt.Fprintf(w, "%d\t%s\t%d\t%.1f\t%s\t%s\n",
							r.ProductID, r.ProductName, r.CurrentStock, r.PredictedDemand, r.Status, suggested)
					}
				})
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", `only rows in this state, e.g. "RESTOCK NEEDED"`)

	var quantity string
	order := &cobra.Command{
		Use:   "order PRODUCT_ID",
		Short: "Place a purchase order for a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				if cmd.Flags().Changed("quantity") {
					_, err = c.svc.Forecast.Order(cmd.Context(), id, quantity)
				} else {
					err = orderSuggested(cmd, c, id)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purchase order placed for product %d. Track it with `smartshelf pos list`.\n", id)
				return nil
			})
		},
	}
	order.Flags().StringVar(&quantity, "quantity", "", "units to order (a positive whole number); defaults to the suggestion")

	cmd.AddCommand(list, order)
	return cmd
}

func orderSuggested(cmd *cobra.Command, c *client, id int64) error {
	rows, err := c.svc.Forecast.List(cmd.Context(), "")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.ProductID == id {
			_, err := c.svc.Forecast.OrderSuggested(cmd.Context(), r.ForecastEntry)
			return err
		}
	}
	return fmt.Errorf("product %d is not in the forecast", id)
}

// smartshelf pos
func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pos",
		Aliases: []string{"orders"},
		Short:   "Purchase orders",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List purchase orders and the actions each allows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				page, err := c.svc.Restock.Page(cmd.Context(), status)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				err = table(out, "ID\tPRODUCT\tQTY\tSTATUS\tCREATED\tACTIONS", func(w io.Writer) {
					for _, o := range page.Orders {
						actions := make([]string, len(o.Actions))
						for i, a := range o.Actions {
							actions[i] = string(a.Action)
						}
						fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", o.ID, o.Product.Name, o.Quantity, o.Status,
							o.CreatedAt.Format("2006-01-02"), strings.Join(actions, ","))
					}
				})
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(models.OrderStatuses))
				for _, st := range models.OrderStatuses {
					parts = append(parts, fmt.Sprintf("%s %d", st, page.Counts[st]))
				}
				fmt.Fprintf(out, "\n%s\n", strings.Join(parts, ", "))
				return nil
			})
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders in this status")

	cmd.AddCommand(list,
		newOrderActionCmd(models.ActionApprove, "Approve a PENDING order and place it with the supplier"),
		newOrderActionCmd(models.ActionReceive, "Mark an APPROVED or ORDERED order as received"),
	)
	return cmd
}

func newOrderActionCmd(action models.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action) + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				to, err := c.svc.Restock.Apply(cmd.Context(), id, action)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order %d is now %s.\n", id, to)
				return nil
			})
		},
	}
}
