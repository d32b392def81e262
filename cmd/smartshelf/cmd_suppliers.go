package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/models"
)

func bindSupplier(cmd *cobra.Command, s *models.Supplier) {
	f := cmd.Flags()
	f.StringVar(&s.Name, "name", "", "supplier name")
	f.StringVar(&s.ContactPerson, "contact", "", "contact person")
	f.StringVar(&s.Email, "email", "", "email")
	f.StringVar(&s.Phone, "phone", "", "phone")
	f.IntVar((*int)(&s.LeadTimeDays), "lead-time", 0, "lead time in days")
	f.StringVar(&s.PaymentTerms, "terms", "", "payment terms")
}

// smartshelf suppliers
func newSuppliersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "suppliers",
		Aliases: []string{"supplier"},
		Short:   "Manage suppliers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List suppliers and what has been spent with each",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				page, err := c.svc.Suppliers.Page(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				err = table(out, "ID\tNAME\tCONTACT\tEMAIL\tPHONE\tLEAD TIME\tTERMS", func(w io.Writer) {
					for _, s := range page.Suppliers {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%dd\t%s\n",
							s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.LeadTimeDays, s.PaymentTerms)
					}
				})
				if err != nil || len(page.PurchaseCosts) == 0 {
					return err
				}
				fmt.Fprintln(out)
				return table(out, "SUPPLIER\tPURCHASE COST", func(w io.Writer) {
					for _, pc := range page.PurchaseCosts {
						fmt.Fprintf(w, "%s\t%s\n", pc.Supplier, models.FormatCurrency(pc.Cost))
					}
				})
			})
		},
	}

	var created models.Supplier
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a supplier",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(c *client) error {
				if err := c.requireLogin(); err != nil {
					return err
				}
				if err := c.svc.Suppliers.Create(cmd.Context(), created); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Supplier %q added.\n", created.Name)
				return nil
			})
		},
	}
	bindSupplier(create, &created)

	var updated models.Supplier
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Replace a supplier's fields",
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
				if err := c.svc.Suppliers.Update(cmd.Context(), id, updated); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Supplier %d updated.\n", id)
				return nil
			})
		},
	}
	bindSupplier(update, &updated)

	var yes bool
	remove := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a supplier",
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
				ok := confirmed(cmd, yes, fmt.Sprintf("Delete supplier %d?", id))
				if err := c.svc.Suppliers.Delete(cmd.Context(), id, ok); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Supplier %d deleted.\n", id)
				return nil
			})
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the delete")

	cmd.AddCommand(list, create, update, remove)
	return cmd
}
