package main

import (
	"flag"
	"fmt"
	"sync"
	"time"

	"github.com/alpacahq/gofilings/gfreg"
	"github.com/alpacahq/gofilings/metrics/server"
	"github.com/alpacahq/gofilings/migration"
	"github.com/alpacahq/gofilings/utils/initializer"
	"github.com/alpacahq/gofilings/utils/signalman"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/robfig/cron"

	"github.com/alpacahq/gofilings/workers/filings"
)

var (
	cronWg sync.WaitGroup
	c      *cron.Cron
)

func shutdown() error {

	// stop crons so no new ones start
	if c != nil {
		c.Stop()
	}

	// wait for existing crons to finish
	cronWg.Wait()

	// sleep a second to let things cleanup
	<-time.After(time.Second)
	return nil
}

func init() {
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("DEPLOY_MODE"))

	signalman.RegisterFunc("workers_shutdown", shutdown)
	signalman.Start()
}

func main() {
	if err := migration.Migration(db.DB()).Migrate(); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	go func() {
		if err := server.Serve(); err != nil {
			log.Error("metrics endpoint stopped", "error", err)
		}
	}()

	c = cron.New()

	// filings ingestion
	log.Info(
		"starting filings worker",
		"interval",
		env.GetVar("FILINGS_WORKER_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("FILINGS_WORKER_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()
		filings.Work()
	})

	// CIK listings refresh
	log.Info(
		"starting cik mapper refresh",
		"interval",
		env.GetVar("CIKMAP_REFRESH_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("CIKMAP_REFRESH_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()

		if err := gfreg.Services.CIKMap().Load(); err != nil {
			log.Error("cik mapper refresh failed", "error", err)
		}
	})

	c.Start()

	signalman.Wait()
}
