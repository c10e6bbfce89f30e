package httplogger

import (
	"os"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/fluentlogger"
	"github.com/alpacahq/gopaca/log"
	"github.com/kataras/iris"
	"github.com/kataras/iris/context"
)

type HTTPLogger struct {
	logger *fluentlogger.FluentLogger
}

func New() iris.Handler {
	m := HTTPLogger{
		logger: fluentlogger.Logger(),
	}
	return m.ServeHTTP
}

func (h *HTTPLogger) ServeHTTP(ctx context.Context) {
	start := clock.Now()
	ctx.Next()
	end := clock.Now()

	var service string

	if podName := env.GetVar("KUBERNETES_POD_NAME"); podName != "" {
		service = podName
	} else {
		service = os.Args[0]
	}

	msg := map[string]interface{}{
		"service":     service,
		"node":        env.GetVar("KUBERNETES_NODE_NAME"),
		"deployment":  env.GetVar("DEPLOY_MODE"),
		"elapsed":     end.Sub(start).Seconds(),
		"status_code": ctx.GetStatusCode(),
		"ip":          ctx.RemoteAddr(),
		"method":      ctx.Method(),
		"path":        ctx.Path(),
		"query":       ctx.Request().URL.RawQuery,
	}

	h.logger.Post("gofilings.httplog", msg)

	log.Debug("httplog",
		"method", msg["method"],
		"path", msg["path"],
		"query", msg["query"],
		"status_code", msg["status_code"],
		"elapsed", msg["elapsed"],
		"ip", msg["ip"],
	)
}
