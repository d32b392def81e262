package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartshelf/shelfweb/config"
	"github.com/smartshelf/shelfweb/pkg/testkit"
)

type harness struct {
	t    *testing.T
	mt   *testkit.MockTransport
	root string // export disk root
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	restore := config.Override(map[string]string{
		"LOCAL_STORE_PATH":   filepath.Join(dir, "session.db"),
		"API_BASE_URL":       "http://backend.test/api",
		"STORAGE_DISK":       "local",
		"STORAGE_LOCAL_ROOT": filepath.Join(dir, "storage"),
		"STORAGE_URL":        "",
		"REPORT_TIMEZONE":    "UTC",
	})
	t.Cleanup(restore)
	return &harness{t: t, mt: testkit.Install(t), root: filepath.Join(dir, "storage")}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) login(role string) {
	h.t.Helper()
	h.mt.Stub("POST", "/api/auth/login", 200, map[string]string{"token": "tok-cli", "role": role})
	_, err := h.run("secret\n", "login", "--email", "me@shop.test", "--password-stdin")
	require.NoError(h.t, err)
	h.mt.Reset()
}

func TestLoginPersistsAcrossCommands(t *testing.T) {
	h := newHarness(t)
	h.mt.Stub("POST", "/api/auth/login", 200, map[string]string{"token": "tok-cli", "role": "STORE_MANAGER"})

	out, err := h.run("secret\n", "login", "--email", "me@shop.test", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "/dashboard")

	call, ok := h.mt.Last("POST", "/api/auth/login")
	require.True(t, ok)
	var body map[string]string
	require.NoError(t, call.JSON(&body))
	assert.Equal(t, "secret", body["password"])

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "STORE_MANAGER")

	h.mt.Stub("GET", "/api/products", 200, []map[string]interface{}{
		{"id": 1, "productName": "Milk", "category": "Dairy", "quantity": 3, "price": 2.5, "supplier": "FarmCo"},
	})
	out, err = h.run("", "products", "list", "--category", "Dairy")
	require.NoError(t, err)
	assert.Contains(t, out, "Milk")
	assert.Contains(t, out, "critical")

	last, _ := h.mt.Last("GET", "/api/products")
	assert.Equal(t, "Bearer tok-cli", last.Header.Get("Authorization"))
	assert.Equal(t, "Dairy", last.Query.Get("category"))

	_, err = h.run("", "logout")
	require.NoError(t, err)
	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestCommandsNeedLogin(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "products", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
	h.mt.AssertNoCalls(t)
}

func TestOrderQuantityRefusedLocally(t *testing.T) {
	h := newHarness(t)
	h.login("STORE_MANAGER")

	for _, q := range []string{"0", "2.5", "ten", ""} {
		_, err := h.run("", "forecast", "order", "4", "--quantity", q)
		require.Error(t, err, q)
		assert.Contains(t, err.Error(), "quantity", q)
	}
	h.mt.AssertNoCalls(t)

	h.mt.Stub("POST", "/api/pos", 201, nil)
	_, err := h.run("", "forecast", "order", "4", "--quantity", "25")
	require.NoError(t, err)
	h.mt.AssertCalled(t, "POST", "/api/pos", 1)
}

func TestOrderDefaultsToSuggestion(t *testing.T) {
	h := newHarness(t)
	h.login("STORE_MANAGER")
	h.mt.Stub("GET", "/api/forecast", 200, []map[string]interface{}{
		{"productId": 4, "productName": "Rice", "currentStock": 2, "predictedDemand": 5.2, "status": "RESTOCK NEEDED"},
		{"productId": 5, "productName": "Salt", "currentStock": 90, "predictedDemand": 1, "status": "OVERSTOCKED"},
	})
	h.mt.Stub("POST", "/api/pos", 201, nil)

	_, err := h.run("", "forecast", "order", "4")
	require.NoError(t, err)
	call, ok := h.mt.Last("POST", "/api/pos")
	require.True(t, ok)
	var body map[string]int
	require.NoError(t, call.JSON(&body))
	assert.Equal(t, map[string]int{"productId": 4, "quantity": 16}, body)

	_, err = h.run("", "forecast", "order", "5")
	require.Error(t, err)
	h.mt.AssertCalled(t, "POST", "/api/pos", 1)
}

func TestDeleteNeedsYes(t *testing.T) {
	h := newHarness(t)
	h.login("ADMIN")

	_, err := h.run("", "products", "delete", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	h.mt.AssertNoCalls(t)

	h.mt.Stub("DELETE", "/api/products/3", 200, nil)
	_, err = h.run("", "products", "delete", "3", "--yes")
	require.NoError(t, err)
}

func TestDeleteConfirmedAtPrompt(t *testing.T) {
	h := newHarness(t)
	h.login("ADMIN")

	_, err := h.run("n\n", "suppliers", "delete", "2")
	require.Error(t, err)
	h.mt.AssertNoCalls(t)

	h.mt.Stub("DELETE", "/api/suppliers/2", 200, nil)
	out, err := h.run("y\n", "suppliers", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Supplier 2 deleted.")
}

func TestRevokedSessionIsForgotten(t *testing.T) {
	h := newHarness(t)
	h.login("ADMIN")
	h.mt.Stub("GET", "/api/suppliers", 401, nil)

	_, err := h.run("", "suppliers", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	out, err := h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in")
}

func TestOrderActions(t *testing.T) {
	h := newHarness(t)
	h.login("STORE_MANAGER")
	h.mt.Stub("GET", "/api/pos", 200, []map[string]interface{}{
		{"id": 7, "quantity": 10, "status": "ORDERED", "createdAt": "2024-03-01T10:00:00Z", "product": map[string]string{"productName": "Tea"}},
	})

	_, err := h.run("", "pos", "approve", "7")
	require.Error(t, err)
	h.mt.AssertCalled(t, "PUT", "/api/pos/7/approve", 0)

	h.mt.Stub("PUT", "/api/pos/7/receive", 200, nil)
	out, err := h.run("", "pos", "receive", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "RECEIVED")
}

func TestSalesExportWritesToDisk(t *testing.T) {
	h := newHarness(t)
	h.login("STORE_MANAGER")
	h.mt.Stub("GET", "/api/sales/report", 200, []map[string]interface{}{
		{"productName": "Milk", "quantitySold": 2, "price": 2.5, "saleDate": "2024-03-06T10:00:00Z"},
	})

	out, err := h.run("", "report", "sales", "--from", "2024-03-01", "--to", "2024-03-07", "--export")
	require.NoError(t, err)
	assert.Contains(t, out, "$5.00")
	assert.Contains(t, out, "file://")

	entries, err := os.ReadDir(filepath.Join(h.root, exportDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "Sales_Report_"))
}

func TestRouteList(t *testing.T) {
	h := newHarness(t)
	out, err := h.run("", "route:list")
	require.NoError(t, err)
	assert.Contains(t, out, "/restock-requests/{id}/{action}")
	assert.Contains(t, out, "reports.export")
}
