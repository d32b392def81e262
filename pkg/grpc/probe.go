package grpc

import (
	"context"
	"errors"

	"github.com/smartshelf/shelfweb/pkg/backend"
)

// BackendProbe reports the backend unreachable only when no HTTP answer
// arrives at all. A 401 from an anonymous read still proves it is up.
func BackendProbe(cfg backend.Config) Probe {
	client := backend.New(cfg, nil)
	return func(ctx context.Context) error {
		err := client.Get(ctx, "/products", nil, nil)
		if errors.Is(err, backend.ErrUnavailable) {
			return err
		}
		return nil
	}
}
