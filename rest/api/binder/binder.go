package binder

import (
	"github.com/alpacahq/gofilings/rest/api"
	"github.com/alpacahq/gofilings/rest/api/controller/corporateaction"
	"github.com/alpacahq/gofilings/rest/api/middleware/httplogger"
	"github.com/alpacahq/gofilings/utils"
	"github.com/iris-contrib/middleware/cors"
	"github.com/kataras/iris"
)

// Filings binds the read API handlers to their endpoints.
func Filings(api *api.API, r iris.Party) {
	r.Use(httplogger.New())

	// CORS
	{
		getOrigins := func() []string {
			if utils.Prod() {
				return []string{"https://filings.alpaca.markets"}
			}
			return []string{"*"}
		}

		crs := cors.New(cors.Options{
			AllowedOrigins: getOrigins(),
			AllowedMethods: []string{
				iris.MethodGet,
				iris.MethodOptions,
			},
			AllowedHeaders: []string{"*"},
		})

		r.Use(crs)
		r.AllowMethods(iris.MethodOptions)
	}

	r.Get("/corporate_actions", api.Handler(corporateaction.List))
	r.Get("/corporate_actions/{event_id}", api.Handler(corporateaction.Get))
	r.Get("/corporate_actions/{event_id}/sources", api.Handler(corporateaction.Sources))

	r.Any("/", api.Handler(api.RouteNotFound))
	r.Any("/{anypath}", api.Handler(api.RouteNotFound))
}
