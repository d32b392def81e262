package main

import (
	"net"

	"github.com/spf13/cobra"

	"github.com/smartshelf/shelfweb/app/routes"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/internal/server"
	"github.com/smartshelf/shelfweb/pkg/app"
	"github.com/smartshelf/shelfweb/pkg/grpc"
	"github.com/smartshelf/shelfweb/pkg/router"
)

func webDeps(a *app.Application) services.Deps {
	return services.Deps{
		Backend:  a.Backend,
		Queries:  a.Queries,
		Sessions: a.Sessions,
		Pool:     a.Pool,
		Location: a.Location,
	}
}

func bootWeb() (*app.Application, error) {
	a, err := app.Boot()
	if err != nil {
		return nil, err
	}
	deps := webDeps(a)
	a.Routes(func(r *router.Router) error {
		return routes.RegisterWeb(r, deps)
	})
	return a, nil
}

// smartshelf serve
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"run"},
		Short:   "Start the HTTP server and the gRPC health port",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootWeb()
			if err != nil {
				return err
			}
			defer a.Close()

			handler, err := a.Handler()
			if err != nil {
				return err
			}
			return server.Run(cmd.Context(), handler, server.Options{
				HTTPAddr: net.JoinHostPort("", config.AppPort()),
				GRPCAddr: net.JoinHostPort("", config.GRPCPort()),
				Probe:    grpc.BackendProbe(a.Backend),
			})
		},
	}
}

// smartshelf route:list
func newRouteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List every page and the name it is registered under",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootWeb()
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Router()
			if err != nil {
				return err
			}
			return app.PrintRoutes(cmd.OutOrStdout(), r.Routes())
		},
	}
}
