package utils

import (
	"github.com/alpacahq/gopaca/env"
)

// Dev returns true if the pipeline is in development mode
func Dev() bool {
	return env.GetVar("DEPLOY_MODE") == "DEV"
}

// Stg returns true if the pipeline is in staging mode
func Stg() bool {
	return env.GetVar("DEPLOY_MODE") == "STG"
}

// Prod returns true if the pipeline is in production mode
func Prod() bool {
	return env.GetVar("DEPLOY_MODE") == "PROD"
}

var (
	Sha1hash string
	Version  string = "dev"
)
