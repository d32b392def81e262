package testkit

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertCalled checks that method+path was requested exactly n times.
func (mt *MockTransport) AssertCalled(t testing.TB, method, path string, n int) {
	t.Helper()
	assert.Len(t, mt.CallsTo(method, path), n, "calls to %s %s", method, path)
}

// AssertNoCalls fails if any backend request was made.
func (mt *MockTransport) AssertNoCalls(t testing.TB) {
	t.Helper()
	calls := mt.Calls()
	if !assert.Empty(t, calls, "expected no backend calls") {
		for _, c := range calls {
			t.Logf("  %s %s", c.Method, c.Path)
		}
	}
}

// AssertStatusCode checks the recorded response code.
func AssertStatusCode(t testing.TB, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, want, rec.Code, "HTTP status code mismatch\nbody: %s", rec.Body.String())
}

// AssertJSONBody deep-compares two JSON documents after normalising both
// through json.Unmarshal, so key order and whitespace never matter.
func AssertJSONBody(t testing.TB, expected string, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expVal), "expected body is not valid JSON")
	if !assert.NoError(t, json.Unmarshal(actual, &actVal), "actual body is not valid JSON\nbody: %s", string(actual)) {
		return
	}
	if !assert.Equal(t, expVal, actVal, "response body mismatch") {
		for _, d := range DiffJSON("", expVal, actVal) {
			t.Log(d)
		}
	}
}

// DecodeBody unmarshals the recorder's body into dest.
func DecodeBody(t testing.TB, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), "body: %s", rec.Body.String())
}

// DiffJSON returns human-readable differences between two JSON-decoded values.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
