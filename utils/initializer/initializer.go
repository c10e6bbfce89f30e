package initializer

import (
	"github.com/alpacahq/gopaca/env"
)

// Initialize registers gofilings' required environment variables
// to their default values.
func Initialize() {
	env.RegisterDefault("DEPLOY_MODE", "DEV")
	env.RegisterDefault("LOG_LEVEL", "INFO")

	// Postgres
	env.RegisterDefault("PGDATABASE", "gofilings")
	env.RegisterDefault("PGHOST", "127.0.0.1")
	env.RegisterDefault("PGUSER", "postgres")
	env.RegisterDefault("PGPASSWORD", "alpacas")

	// ingestion worker
	env.RegisterDefault("FILINGS_WORKER_INTERVAL", "15m")
	env.RegisterDefault("FILINGS_BATCH_LIMIT", "100")
	env.RegisterDefault("EDGAR_USER_AGENT", "gofilings/dev (ops@example.com)")

	// effective-date resolution
	env.RegisterDefault("LLM_DATE_MIN_CONFIDENCE", "0.85")

	// REST + metrics
	env.RegisterDefault("FILINGS_API_PORT", "5996")
	env.RegisterDefault("FILINGS_METRICS_PORT", "7777")
	env.RegisterDefault("CIKMAP_REFRESH_INTERVAL", "24h")

	// pipeline metadata stamped onto aggregates
	env.RegisterDefault("PIPELINE_VERSION", "ca-pipeline-dev")
	env.RegisterDefault("EXTRACTION_MODEL", "gpt-4o-mini")
}
