package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 30 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Session cookie lifetime, absolute from issuance.
const SessionMaxAge = 7 * 24 * time.Hour

// Uploads
const (
	DefaultMaxUploadMB = 10
	UploadFolder       = "products"
)

// Bcrypt cost used when seeding admins.
const BcryptCost = 12
