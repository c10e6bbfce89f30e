package main

import (
	stdContext "context"
	"flag"
	"strings"
	"time"

	"github.com/alpacahq/gofilings/gfreg"
	"github.com/alpacahq/gofilings/migration"
	"github.com/alpacahq/gofilings/rest"
	"github.com/alpacahq/gofilings/utils/initializer"
	"github.com/alpacahq/gofilings/utils/signalman"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
)

func shutdown() error {
	timeout := time.Second
	ctx, cancel := stdContext.WithTimeout(stdContext.Background(), timeout)
	defer cancel()
	return rest.Shutdown(ctx)
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("DEPLOY_MODE"))

	signalman.RegisterFunc("rest_shutdown", shutdown)
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	log.Info("gofilings is live", "mode", env.GetVar("DEPLOY_MODE"), "clock", clock.Now())

	signalman.Start()

	if err := rest.Start(env.GetVar("FILINGS_API_PORT"), gfreg.Services); err != nil {
		if !strings.Contains(err.Error(), "Server closed") {
			log.Fatal("rest server unexpectedly exited", "error", err)
		}
	}

	defer db.DB().Close()

	log.Info("waiting for graceful shutdown")
	signalman.Wait()
}
