package models

const (
	// DefaultSessionTTL is how long session state lives in Redis.
	DefaultSessionTTL = 24 * 60 * 60 // 24h in seconds

	// DefaultRefreshInterval is the background slot refresh period.
	DefaultRefreshInterval = 60 // seconds

	// SessionIdleTimeout marks a session inactive for the refresher.
	SessionIdleTimeout = 30 * 60 // 30min in seconds

	// RateLimitRequests per RateLimitWindow.
	RateLimitRequests = 30
	RateLimitWindow   = 60 // seconds
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
