package constants

import "time"

const (
	ProfileCacheTTL = 15 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	PipelineTimeout    = 10 * time.Minute
)

const (
	FetchConcurrency = 4
	TransportRetries = 2
	TransportBackoff = 500 * time.Millisecond
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)
