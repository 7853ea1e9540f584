package constants

import "time"

const (
	DefaultHTTPPort  = "3000"
	DefaultDataFile  = "data/db.json"
	DefaultPublicDir = "public"

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"

	BcryptCost = 12

	DefaultMaxRequestSize = 1 << 20

	DefaultRequestTimeout = 5 * time.Second

	// SESSION_TTL=0 keeps sessions alive for the process lifetime.
	DefaultSessionTTL     = 24 * time.Hour
	SessionSweepInterval  = 1 * time.Minute
	SessionCookieName     = "sessionId"
	ProductionEnvironment = "production"

	DefaultRateLimitPerSecond = 50.0
	DefaultRateLimitBurst     = 100
	RateLimitCleanupInterval  = 10 * time.Minute

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	EventsSendBufSize    = 64
	EventsWriteWait      = 10 * time.Second
	EventsPongWait       = 60 * time.Second
	EventsPingPeriod     = 54 * time.Second
	EventsMaxMessageSize = 4096

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
