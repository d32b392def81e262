// Package app boots the SmartShelf runtime: configuration, the cache store,
// sessions, the query cache, the export pool and the diagnostic log sink.
//
//	a, err := app.Boot()
//	if err != nil { ... }
//	defer a.Close()
//
//	a.Routes(func(r *router.Router) error {
//	    return routes.RegisterWeb(r, deps)
//	})
//	handler, err := a.Handler()
//
// Boot does not touch the network except for Redis and MongoDB, both of
// which are optional.
package app

import (
	"fmt"
	"time"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/cache"
	"github.com/smartshelf/shelfweb/pkg/crypt"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/logger"
	"github.com/smartshelf/shelfweb/pkg/query"
	"github.com/smartshelf/shelfweb/pkg/router"
	"github.com/smartshelf/shelfweb/pkg/session"
	"github.com/smartshelf/shelfweb/pkg/workerpool"
)

// Application is the wired runtime shared by every request.
type Application struct {
	Bus      *event.Bus
	Store    cache.Store
	Sessions *session.Manager
	Queries  *query.Cache
	Pool     *workerpool.Pool
	Backend  backend.Config
	Location *time.Location

	routesFns []func(*router.Router) error
	closers   []func()
}

// Boot loads configuration and builds the runtime from it.
func Boot() (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	store, err := cache.Connect()
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	cipher, err := crypt.New(config.AppKey())
	if err != nil {
		return nil, fmt.Errorf("app key: %w", err)
	}

	a := &Application{Bus: event.New(), Store: store, Location: config.ReportLocation()}
	if c, ok := store.(interface{ Close() error }); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	a.Sessions = session.NewManager(session.NewCacheStore(store, cipher), a.Bus, session.DefaultOptions())
	a.Queries = query.New(store, config.QueryTTL(), a.Bus)
	a.Backend = backend.ConfigFromEnv(a.Bus)

	a.Pool = workerpool.New(config.ExportWorkers())
	a.closers = append(a.closers, a.Pool.Shutdown)

	a.attachLogSink()

	logger.Info("app: booted",
		"env", config.AppEnv(),
		"cache", store.Driver(),
		"backend", a.Backend.BaseURL,
		"exportWorkers", a.Pool.Size(),
	)
	return a, nil
}

// attachLogSink mirrors logs into MongoDB when LOG_MONGO_URI is set. A sink
// that cannot connect is skipped.
func (a *Application) attachLogSink() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}
	h, err := logger.NewMongoHandler(uri, config.LogMongoDB())
	if err != nil {
		logger.Warn("app: mongo log sink unavailable", "error", err)
		return
	}
	logger.Attach(h)
	a.closers = append(a.closers, func() {
		logger.Detach()
		h.Close()
	})
}

// Routes registers a route callback run when the handler is built.
func (a *Application) Routes(fn func(*router.Router) error) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Close releases everything Boot opened, newest first.
func (a *Application) Close() {
	a.Bus.Flush()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
