package config

import "time"

// --- Shared Configs ---

type ServerConfig struct {
	HTTPPort string
	LogLevel string // debug, info, warn, error
	LogFile  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host    string
	Port    string
	Enabled bool
}

type BeaconConfig struct {
	BaseURL string
	Timeout time.Duration
}
