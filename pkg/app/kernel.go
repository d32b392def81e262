package app

import (
	"net/http"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/metrics"
	"github.com/smartshelf/shelfweb/pkg/middleware"
	"github.com/smartshelf/shelfweb/pkg/reqid"
	"github.com/smartshelf/shelfweb/pkg/router"
)

// Router builds the router with the global middleware stack and every
// registered route callback.
func (a *Application) Router() (*router.Router, error) {
	r := router.New()

	// Outermost first:
	//  1. metrics, for total latency
	//  2. recovery
	//  3. request ID, before anything logs
	//  4. access log
	//  5. session, so the guard can read the role
	//  6. CORS
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(a.Sessions.Middleware())
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))

	for _, fn := range a.routesFns {
		if err := fn(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Handler is Router's http.Handler.
func (a *Application) Handler() (http.Handler, error) {
	r, err := a.Router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}
