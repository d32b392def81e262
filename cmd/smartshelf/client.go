package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/smartshelf/shelfweb/app/models"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/database"
	"github.com/smartshelf/shelfweb/pkg/event"
	"github.com/smartshelf/shelfweb/pkg/session"
	"github.com/smartshelf/shelfweb/pkg/validate"
)

// client is one terminal invocation: the local session and the services
// acting for it.
type client struct {
	db   *gorm.DB
	bus  *event.Bus
	mgr  *session.Manager
	sess *session.Session
	svc  *services.Services
	deps services.Deps
}

func openClient(ctx context.Context) (*client, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := database.Open(config.LocalStorePath())
	if err != nil {
		return nil, err
	}

	bus := event.New()
	mgr := session.NewManager(database.NewSessionStore(db), bus, session.Options{
		TTL: config.SessionTTL(),
	})
	sess, err := mgr.Load(ctx, session.LocalID)
	if err != nil {
		database.Close(db) //nolint:errcheck
		return nil, err
	}

	deps := services.Deps{
		Backend:  backend.ConfigFromEnv(bus),
		Sessions: mgr,
		Location: config.ReportLocation(),
		Now:      time.Now,
	}
	return &client{db: db, bus: bus, mgr: mgr, sess: sess, deps: deps, svc: services.New(deps, sess)}, nil
}

func (c *client) Close() error {
	c.bus.Flush()
	return database.Close(c.db)
}

// withClient runs fn with an open client and turns its error into
// something a person can act on.
func withClient(ctx context.Context, fn func(*client) error) error {
	c, err := openClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck
	return explain(fn(c))
}

// requireLogin refuses before any request when no session is stored.
func (c *client) requireLogin() error {
	if !c.sess.Authenticated() {
		return errors.New("not logged in; run `smartshelf login` first")
	}
	return nil
}

// confirmed reports whether a delete may go ahead: --yes, or a "y" typed
// at the prompt.
func confirmed(cmd *cobra.Command, yes bool, prompt string) bool {
	if yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func explain(err error) error {
	if err == nil {
		return nil
	}

	var verr *validate.Error
	if errors.As(err, &verr) {
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("  %s: %s", k, verr.Fields[k]))
		}
		return fmt.Errorf("invalid input:\n%s", strings.Join(lines, "\n"))
	}
	if rej, ok := backend.IsRejected(err); ok {
		return errors.New(rej.Message)
	}

	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return errors.New("session expired; run `smartshelf login` again")
	case errors.Is(err, backend.ErrUnavailable):
		return errors.New(backend.UnavailableMessage)
	case errors.Is(err, services.ErrConfirmationRequired):
		return errors.New("deleting needs confirmation; pass --yes")
	case errors.Is(err, services.ErrNothingToExport):
		return errors.New("no sales in this range, nothing to export")
	case errors.Is(err, models.ErrInvalidTransition):
		return errors.New("that action is not available for the order's current status")
	}
	return err
}

// ─── Output ───────────────────────────────────────────────────────────────────

func table(out io.Writer, header string, rows func(w io.Writer)) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, header)
	rows(w)
	return w.Flush()
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
