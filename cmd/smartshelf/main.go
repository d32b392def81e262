// Command smartshelf runs the SmartShelf web tier and drives the inventory
// backend from a terminal.
//
//	smartshelf serve                 # HTTP pages + gRPC health
//	smartshelf route:list
//	smartshelf login --email me@shop.test --password-stdin
//	smartshelf products list --category Dairy
//	smartshelf forecast order 12 --quantity 30
//	smartshelf pos approve 7
//	smartshelf report sales --from 2024-03-01 --to 2024-03-31 --export
//
// Terminal commands keep their session in a local SQLite file, so one login
// serves every following command until the backend rejects the token.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smartshelf",
		Short:         "SmartShelf inventory console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Server
	root.AddCommand(newServeCmd())
	root.AddCommand(newRouteListCmd())

	// Session
	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newWhoamiCmd())
	root.AddCommand(newRegisterCmd())
	root.AddCommand(newResetPasswordCmd())

	// Inventory
	root.AddCommand(newProductsCmd())
	root.AddCommand(newSalesCmd())
	root.AddCommand(newCatalogueCmd())

	// Ordering
	root.AddCommand(newForecastCmd())
	root.AddCommand(newOrdersCmd())
	root.AddCommand(newSuppliersCmd())

	// Reporting
	root.AddCommand(newReportCmd())
	root.AddCommand(newAnalyticsCmd())
	return root
}
