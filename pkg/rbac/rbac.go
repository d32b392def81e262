// Package rbac is the single authorization check for pages.
//
// A Policy is a pair of tables: which capabilities each role holds, and
// which capabilities each route requires. A role may open a route iff it
// holds every capability the route lists. Routes absent from the table are
// denied.
//
//	p := rbac.NewPolicy(grants, routes)
//	r.Group(func(r chi.Router) {
//	    r.Use(p.Guard(roleOf, "/login"))
//	    r.Get("/suppliers", h)
//	})
package rbac

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Public marks a route that needs no session.
const Public = "public"

// Capability names an operation a role may perform.
type Capability string

// Policy maps roles to capabilities and routes to requirements.
type Policy struct {
	grants map[string]map[Capability]bool
	routes map[string][]Capability
}

// NewPolicy builds a Policy. Route keys are chi route patterns such as
// "/suppliers/{id}". A route whose requirement list is exactly
// []Capability{Public} is open to anonymous users.
func NewPolicy(grants map[string][]Capability, routes map[string][]Capability) *Policy {
	p := &Policy{grants: map[string]map[Capability]bool{}, routes: map[string][]Capability{}}
	for role, caps := range grants {
		set := map[Capability]bool{}
		for _, c := range caps {
			set[c] = true
		}
		p.grants[role] = set
	}
	for route, caps := range routes {
		p.routes[route] = append([]Capability(nil), caps...)
	}
	return p
}

// IsPublic reports whether route is open to anonymous users.
func (p *Policy) IsPublic(route string) bool {
	caps, ok := p.routes[route]
	return ok && len(caps) == 1 && caps[0] == Public
}

// Known reports whether route has an entry.
func (p *Policy) Known(route string) bool {
	_, ok := p.routes[route]
	return ok
}

// Allow reports whether role may open route.
func (p *Policy) Allow(role, route string) bool {
	caps, ok := p.routes[route]
	if !ok {
		return false
	}
	if p.IsPublic(route) {
		return true
	}
	held := p.grants[role]
	for _, c := range caps {
		if !held[c] {
			return false
		}
	}
	return true
}

// Can reports whether role holds capability c.
func (p *Policy) Can(role string, c Capability) bool {
	return p.grants[role][c]
}

// Capabilities lists what role holds, sorted.
func (p *Policy) Capabilities(role string) []Capability {
	var out []Capability
	for c := range p.grants[role] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Routes lists the protected routes role may open, sorted.
func (p *Policy) Routes(role string) []string {
	var out []string
	for r := range p.routes {
		if !p.IsPublic(r) && p.Allow(role, r) {
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}

// Requirements returns the capabilities route needs.
func (p *Policy) Requirements(route string) []Capability {
	return append([]Capability(nil), p.routes[route]...)
}

// Allowed is the plain allow-list check: an empty list admits any role,
// otherwise role must appear in it. Comparison is exact.
func Allowed(role string, allowedRoles ...string) bool {
	if len(allowedRoles) == 0 {
		return true
	}
	for _, r := range allowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleFunc reports the caller's role and whether the caller is signed in.
type RoleFunc func(r *http.Request) (role string, authenticated bool)

// Guard returns middleware that admits a request iff the policy allows the
// caller's role on the matched route. Everything else, including unmatched
// routes and anonymous callers on protected routes, is redirected to
// loginPath. Mount it inside a chi Group so the route pattern has been
// resolved by the time it runs.
func (p *Policy) Guard(roleOf RoleFunc, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routePattern(r)
			if p.IsPublic(route) {
				next.ServeHTTP(w, r)
				return
			}

			role, ok := roleOf(r)
			if !ok || !p.Allow(role, route) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pat := rc.RoutePattern(); pat != "" {
			return strings.TrimSuffix(pat, "/*")
		}
	}
	return r.URL.Path
}
