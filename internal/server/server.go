// Package server runs the HTTP and gRPC listeners until the context ends,
// then drains both.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartshelf/shelfweb/pkg/grpc"
	"github.com/smartshelf/shelfweb/pkg/logger"
)

// Options configures Run. Zero durations take the defaults below.
type Options struct {
	HTTPAddr        string
	GRPCAddr        string
	Probe           grpc.Probe
	ProbeInterval   time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultProbeInterval   = 15 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Run serves handler until ctx is cancelled or a listener fails.
func Run(ctx context.Context, handler http.Handler, opts Options) error {
	if opts.ProbeInterval <= 0 {
		opts.ProbeInterval = defaultProbeInterval
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	httpLis, err := net.Listen("tcp", opts.HTTPAddr)
	if err != nil {
		return err
	}
	grpcLis, err := net.Listen("tcp", opts.GRPCAddr)
	if err != nil {
		httpLis.Close()
		return err
	}
	return Serve(ctx, handler, httpLis, grpcLis, opts)
}

// Serve is Run on listeners the caller opened.
func Serve(ctx context.Context, handler http.Handler, httpLis, grpcLis net.Listener, opts Options) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	health := grpc.New(opts.Probe)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server: http listening", "addr", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("server: grpc listening", "addr", grpcLis.Addr().String())
		return health.Serve(grpcLis)
	})
	g.Go(func() error {
		health.Watch(gctx, opts.ProbeInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), opts.ShutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		health.Stop()
		return err
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
