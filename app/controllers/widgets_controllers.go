package controllers

import (
	"errors"
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/smartshelf/shelfweb/app/policy"
	"github.com/smartshelf/shelfweb/app/services"
	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/graphql"
	"github.com/smartshelf/shelfweb/pkg/response"
	"github.com/smartshelf/shelfweb/pkg/session"
)

// Widgets serves the dashboard's small read-only panels over GraphQL.
type Widgets struct {
	deps   services.Deps
	schema gql.Schema
}

func NewWidgets(deps services.Deps) (*Widgets, error) {
	w := &Widgets{deps: deps}
	schema, err := graphql.NewSchema(w.query())
	if err != nil {
		return nil, err
	}
	w.schema = schema
	return w, nil
}

// Handler answers POST /graphql. A revoked session redirects like any page.
func (w *Widgets) Handler() http.HandlerFunc {
	return graphql.Handler(w.schema, func(rw http.ResponseWriter, r *http.Request, err error) bool {
		if errors.Is(err, backend.ErrUnauthorized) {
			response.SeeOther(rw, policy.LoginPath, SessionExpiredMessage)
			return true
		}
		return false
	})
}

func (w *Widgets) services(p gql.ResolveParams) *services.Services {
	return services.New(w.deps, session.FromCtx(p.Context))
}

var stockSummaryType = gql.NewObject(gql.ObjectConfig{
	Name: "StockSummary",
	Fields: gql.Fields{
		"totalProducts":           &gql.Field{Type: gql.Int},
		"lowStockItems":           &gql.Field{Type: gql.Int},
		"criticalStock":           &gql.Field{Type: gql.Int},
		"inventoryValue":          &gql.Field{Type: gql.Float},
		"inventoryValueFormatted": &gql.Field{Type: gql.String},
	},
})

var purchaseOrderType = gql.NewObject(gql.ObjectConfig{
	Name: "PurchaseOrder",
	Fields: gql.Fields{
		"id":          &gql.Field{Type: gql.Int},
		"productName": &gql.Field{Type: gql.String},
		"quantity":    &gql.Field{Type: gql.Int},
		"status":      &gql.Field{Type: gql.String},
		"createdAt":   &gql.Field{Type: gql.String},
		"actions":     &gql.Field{Type: gql.NewList(gql.String)},
	},
})

var forecastType = gql.NewObject(gql.ObjectConfig{
	Name: "Forecast",
	Fields: gql.Fields{
		"productId":         &gql.Field{Type: gql.Int},
		"productName":       &gql.Field{Type: gql.String},
		"currentStock":      &gql.Field{Type: gql.Int},
		"predictedDemand":   &gql.Field{Type: gql.Float},
		"status":            &gql.Field{Type: gql.String},
		"suggestedQuantity": &gql.Field{Type: gql.Int},
	},
})

func (w *Widgets) query() *gql.Object {
	statusArg := gql.FieldConfigArgument{
		"status": &gql.ArgumentConfig{Type: gql.String, DefaultValue: ""},
	}

	return gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"stockSummary": &gql.Field{
				Type: stockSummaryType,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					s, err := w.services(p).Inventory.Summary(p.Context)
					if err != nil {
						return nil, err
					}
					value, _ := s.InventoryValue.Float64()
					return map[string]interface{}{
						"totalProducts":           s.TotalProducts,
						"lowStockItems":           s.LowStockItems,
						"criticalStock":           s.CriticalStock,
						"inventoryValue":          value,
						"inventoryValueFormatted": s.FormattedValue,
					}, nil
				},
			},
			"purchaseOrders": &gql.Field{
				Type: gql.NewList(purchaseOrderType),
				Args: statusArg,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					status, _ := p.Args["status"].(string)
					page, err := w.services(p).Restock.Page(p.Context, status)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(page.Orders))
					for _, o := range page.Orders {
						actions := make([]string, 0, len(o.Actions))
						for _, a := range o.Actions {
							actions = append(actions, string(a.Action))
						}
						out = append(out, map[string]interface{}{
							"id":          o.ID,
							"productName": o.Product.Name,
							"quantity":    o.Quantity,
							"status":      string(o.Status),
							"createdAt":   o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
							"actions":     actions,
						})
					}
					return out, nil
				},
			},
			"forecast": &gql.Field{
				Type: gql.NewList(forecastType),
				Args: statusArg,
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					status, _ := p.Args["status"].(string)
					rows, err := w.services(p).Forecast.List(p.Context, status)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(rows))
					for _, r := range rows {
						row := map[string]interface{}{
							"productId":       r.ProductID,
							"productName":     r.ProductName,
							"currentStock":    r.CurrentStock,
							"predictedDemand": r.PredictedDemand,
							"status":          string(r.Status),
						}
						if r.Actionable {
							row["suggestedQuantity"] = r.Suggested
						}
						out = append(out, row)
					}
					return out, nil
				},
			},
		},
	})
}
