package config

import "time"

// LottoConfig holds configuration for the lotto services
type LottoConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Beacon   BeaconConfig

	// Deployment constants. All participants of all rounds pay into the
	// one deposit address; the fee address receives the 1% cut.
	DepositAddress  string
	AdminFeeAddress string
	EntryAmountBTC  string // decimal string, parsed by the usecase layer
}

// LoadLottoConfig loads configuration from the environment
func LoadLottoConfig() *LottoConfig {
	return &LottoConfig{
		Server: ServerConfig{
			HTTPPort: getEnv("LOTTO_HTTP_PORT", "8080"),
			LogLevel: getEnv("LOTTO_LOG_LEVEL", "info"),
			LogFile:  getEnv("LOTTO_LOG_FILE", "logs/lotto/lotto.log"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "lotto_user"),
			Password: getEnv("DB_PASSWORD", "lotto_pass"),
			Name:     getEnv("DB_NAME", "lotto_db"),
		},
		Redis: RedisConfig{
			Host:    getEnv("REDIS_HOST", "localhost"),
			Port:    getEnv("REDIS_PORT", "6379"),
			Enabled: getEnvBool("REDIS_ENABLED", false),
		},
		Beacon: BeaconConfig{
			BaseURL: getEnv("BEACON_BASE_URL", "https://blockstream.info/api"),
			Timeout: time.Duration(getEnvInt("BEACON_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		DepositAddress:  getEnv("LOTTO_DEPOSIT_ADDRESS", "bc1qsingleaddress1234567890"),
		AdminFeeAddress: getEnv("LOTTO_ADMIN_FEE_ADDRESS", "bc1qadminfeeaddress1234567890"),
		EntryAmountBTC:  getEnv("LOTTO_ENTRY_AMOUNT_BTC", "0.1"),
	}
}

// DSN builds the Postgres connection string
func (c *LottoConfig) DSN() string {
	return "host=" + c.Database.Host +
		" port=" + c.Database.Port +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Name +
		" sslmode=disable"
}
