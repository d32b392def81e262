// Package graphql serves a graphql-go schema over HTTP.
//
//	schema, err := graphql.NewSchema(rootQuery)
//	router.Post("/graphql", "graphql", graphql.Handler(schema, nil))
//
// Resolvers receive the request's context through ResolveParams.Context.
package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/smartshelf/shelfweb/pkg/bind"
	"github.com/smartshelf/shelfweb/pkg/response"
)

// NewSchema creates a query-only schema.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: query,
	})
}

// Request is a GraphQL-over-HTTP POST body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// ErrorHook sees each resolver error before the result is written. If it
// returns true it has answered the request itself.
type ErrorHook func(w http.ResponseWriter, r *http.Request, err error) bool

// Handler executes POSTed queries against schema.
func Handler(schema graphql.Schema, hook ErrorHook) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := bind.Decode(r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Query == "" {
			response.Error(w, http.StatusBadRequest, "query is required")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})

		if hook != nil {
			for _, e := range result.Errors {
				if orig := e.OriginalError(); orig != nil && hook(w, r, orig) {
					return
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result) //nolint:errcheck
	}
}
