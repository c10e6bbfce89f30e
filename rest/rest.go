// The rest package defines gofilings' RESTful read API
package rest

import (
	"context"

	"github.com/alpacahq/gofilings/rest/api"
	"github.com/alpacahq/gofilings/rest/api/binder"
	"github.com/alpacahq/gofilings/service/registry"
	"github.com/alpacahq/gofilings/utils"
	"github.com/kataras/iris"
)

var app *iris.Application

func Start(port string, services registry.Registry) error {
	return run((":" + port), services)
}

func Shutdown(ctx context.Context) error {
	if app != nil {
		return app.Shutdown(ctx)
	}
	return nil
}

func bindAPI(api *api.API, binder func(*api.API, iris.Party)) func(iris.Party) {
	return func(r iris.Party) {
		binder(api, r)
	}
}

func run(host string, services registry.Registry) error {
	app = iris.New()

	apis := api.New(services)

	// read API (v1)
	app.PartyFunc("/gofilings/api/v1", bindAPI(apis, binder.Filings))

	// heartbeat
	app.HandleMany("GET HEAD", "/gofilings/heartbeat", func(ctx iris.Context) {
		ctx.StatusCode(iris.StatusOK)
		ctx.JSON(struct {
			Status  string `json:"status"`
			Version string `json:"version"`
		}{
			"alive", utils.Version,
		})
	})

	return app.Run(
		iris.Addr(host),
		iris.WithConfiguration(iris.Configuration{
			// Disable it to re-fetch request body again for logging purpose.
			DisableBodyConsumptionOnUnmarshal: true,
			// Enable real IP forwarding, which is reliable when it is on private proxy.
			RemoteAddrHeaders: map[string]bool{
				"X-Forwarded-For": true,
			},
		}),
		iris.WithoutInterruptHandler,
	)
}
