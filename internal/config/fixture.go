package config

import (
	"os"
)

// FixtureConfig drives cmd/smoke-fixture, the stand-in target for local rehearsals.
type FixtureConfig struct {
	Addr       string // plain listener, stands in for the load balancer on :80
	HealthAddr string // secondary listener for the health endpoint
	LogDir     string
	Page       string // body served on / and the health path
}

func FixtureFromEnv() FixtureConfig {
	addr := os.Getenv("FIXTURE_ADDR")
	if addr == "" {
		addr = ":80"
	}

	healthAddr := os.Getenv("FIXTURE_HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":8080"
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	page := os.Getenv("FIXTURE_PAGE")
	if page == "" {
		page = "<html><body><h1>deploysmoke fixture</h1></body></html>\n"
	}

	return FixtureConfig{
		Addr:       addr,
		HealthAddr: healthAddr,
		LogDir:     logDir,
		Page:       page,
	}
}
