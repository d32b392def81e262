package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/smartshelf/shelfweb/pkg/rbac"
)

const (
	view   rbac.Capability = "things:view"
	manage rbac.Capability = "things:manage"
)

func policy() *rbac.Policy {
	return rbac.NewPolicy(
		map[string][]rbac.Capability{
			"ADMIN": {view, manage},
			"USER":  {view},
		},
		map[string][]rbac.Capability{
			"/login":       {rbac.Public},
			"/things":      {view},
			"/things/{id}": {view, manage},
		},
	)
}

func TestAllow(t *testing.T) {
	p := policy()

	assert.True(t, p.Allow("ADMIN", "/things/{id}"))
	assert.True(t, p.Allow("USER", "/things"))
	assert.False(t, p.Allow("USER", "/things/{id}"))
	assert.False(t, p.Allow("ADMIN", "/unknown"))
	assert.False(t, p.Allow("", "/things"))
	assert.True(t, p.Allow("", "/login"))
	assert.False(t, p.Allow("admin", "/things"), "roles are case-sensitive")
}

func TestRoutesAndCapabilities(t *testing.T) {
	p := policy()
	assert.Equal(t, []string{"/things"}, p.Routes("USER"))
	assert.Equal(t, []string{"/things", "/things/{id}"}, p.Routes("ADMIN"))
	assert.Equal(t, []rbac.Capability{manage, view}, p.Capabilities("ADMIN"))
	assert.True(t, p.Can("ADMIN", manage))
	assert.False(t, p.Can("USER", manage))
}

func TestAllowedList(t *testing.T) {
	assert.True(t, rbac.Allowed("USER"))
	assert.True(t, rbac.Allowed("ADMIN", "STORE_MANAGER", "ADMIN"))
	assert.False(t, rbac.Allowed("USER", "STORE_MANAGER", "ADMIN"))
	assert.False(t, rbac.Allowed("", "ADMIN"))
}

func TestGuard(t *testing.T) {
	p := policy()
	roleOf := func(r *http.Request) (string, bool) {
		role := r.Header.Get("X-Role")
		return role, role != ""
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(p.Guard(roleOf, "/login"))
		ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
		r.Get("/login", ok)
		r.Get("/things", ok)
		r.Get("/things/{id}", ok)
	})

	cases := []struct {
		path, role string
		want       int
	}{
		{"/login", "", http.StatusOK},
		{"/things", "", http.StatusSeeOther},
		{"/things", "USER", http.StatusOK},
		{"/things/4", "USER", http.StatusSeeOther},
		{"/things/4", "ADMIN", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.role != "" {
			req.Header.Set("X-Role", tc.role)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, tc.want, rec.Code, "%s as %q", tc.path, tc.role)
		if tc.want == http.StatusSeeOther {
			assert.Equal(t, "/login", rec.Header().Get("Location"))
		}
	}
}
