package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// productFlags binds the editable product fields.
type productFlags struct {
	product models.Product
	price   string
}

func (p *productFlags) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.product.Name, "name", "", "product name")
	f.StringVar(&p.product.Category, "category", "", "category")
	f.IntVar(&p.product.Quantity, "quantity", 0, "units in stock")
	f.StringVar(&p.price, "price", "0", "unit price")
	f.StringVar(&p.product.Supplier, "supplier", "", "supplier name")
	f.StringVar(&p.product.ImageURL, "image", "", "image URL")
}

func (p *productFlags) value() (models.Product, error) {
	price, err := decimal.NewFromString(p.price)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid price %q", p.price)
	}
	out := p.product
	out.Price = price
	return out, nil
}

func printProducts(out io.Writer, products []services.ProductView) error {
	return table(out, "ID\tNAME\tCATEGORY\tQTY\tPRICE\tSUPPLIER\tSTOCK", func(w io.Writer) {
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Category, p.Quantity, models.FormatCurrency(p.Price), p.Supplier, p.Level)
		}
	})
}

// smartshelf products
func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Manage the product list",
	}
	cmd.AddCommand(newProductsListCmd(), newProductsCreateCmd(), newProductsUpdateCmd(),
		newProductsDeleteCmd(), newProductsAlertsCmd())
	return cmd
}

func newProductsListCmd() *cobra.Command {
	var (
		filter models.ProductFilter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with the stock summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				page, err := c.svc.Inventory.Dashboard(cmd.Context(), filter)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return printJSON(out, page)
				}
				if err := printProducts(out, page.Products); err != nil {
					return err
				}
				s := page.Summary
				fmt.Fprintf(out, "\n%d products, %d low, %d critical, inventory value %s\n",
					s.TotalProducts, s.LowStockItems, s.CriticalStock, s.FormattedValue)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Category, "category", "", "only this category")
	f.StringVar(&filter.Supplier, "supplier", "", "only this supplier")
	f.StringVar(&filter.MaxStock, "max-stock", "", "only products with at most this many units")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newProductsCreateCmd() *cobra.Command {
	var pf productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pf.value()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				if err := c.svc.Inventory.CreateProduct(cmd.Context(), p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Product %q added.\n", p.Name)
				return nil
			})
		},
	}
	pf.bind(cmd)
	return cmd
}

func newProductsUpdateCmd() *cobra.Command {
	var pf productFlags
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a product's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := pf.value()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				if err := c.svc.Inventory.UpdateProduct(cmd.Context(), id, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Product %d updated.\n", id)
				return nil
			})
		},
	}
	pf.bind(cmd)
	return cmd
}

func newProductsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product",
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
				ok := confirmed(cmd, yes, fmt.Sprintf("Delete product %d?", id))
				if err := c.svc.Inventory.DeleteProduct(cmd.Context(), id, ok); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Product %d deleted.\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the delete")
	return cmd
}

func newProductsAlertsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "List products below the critical threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				items, err := c.svc.Inventory.Alerts(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No critical stock.")
					return nil
				}
				return table(out, "ID\tNAME\tQTY\tSUPPLIER", func(w io.Writer) {
					for _, p := range items {
						fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", p.ID, p.Name, p.Quantity, p.Supplier)
					}
				})
			})
		},
	}
}

// smartshelf sales record
func newSalesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Record sales",
	}

	var sale models.NewSale
	record := &cobra.Command{
		Use:   "record",
		Short: "Record a sale against a product's stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				if err := c.svc.Inventory.RecordSale(cmd.Context(), sale); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d sold of product %d.\n", sale.QuantitySold, sale.ProductID)
				return nil
			})
		},
	}
	record.Flags().Int64Var(&sale.ProductID, "product", 0, "product id")
	record.Flags().IntVar(&sale.QuantitySold, "quantity", 0, "units sold")
	cmd.AddCommand(record)
	return cmd
}

// smartshelf catalogue
func newCatalogueCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Browse products read-only",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				items, err := c.svc.Catalogue.List(cmd.Context(), category)
				if err != nil {
					return err
				}
				return table(cmd.OutOrStdout(), "NAME\tCATEGORY\tPRICE\tSTOCK", func(w io.Writer) {
					for _, it := range items {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Name, it.Category, it.Price, it.Level)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}
