package metrics

import (
	"os"
	"sync"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/alpacahq/gopaca/log"
)

var (
	once sync.Once
	dd   *statsd.Client
)

// client initializes the dogstatsd client lazily from DOGSTATSD_HOST_IP.
// Returns nil when the sidecar is not configured; metrics then stay
// local to the /metrics endpoint.
func client() *statsd.Client {
	once.Do(func() {
		ip := os.Getenv("DOGSTATSD_HOST_IP")
		if ip == "" {
			log.Warn("won't send metrics to statsd (DOGSTATSD_HOST_IP envvar not found)")
			return
		}

		var err error
		dd, err = statsd.New(ip + ":8125")
		if err != nil {
			log.Warn("won't send metrics to statsd (failed to init statsd)")
			return
		}
		dd.Namespace = "gofilings."
	})

	return dd
}
