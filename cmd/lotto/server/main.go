// Server runs the lotto HTTP service: the manual closure trigger and round
// inspection endpoints.
package main

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frankieli/lotto_pool/internal/config"
	lottohttp "github.com/frankieli/lotto_pool/internal/modules/lotto/adapter/http"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/beacon"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/lock"
	lottodb "github.com/frankieli/lotto_pool/internal/modules/lotto/repository/db"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.LoadLottoConfig()

	logger.InitWithFile(cfg.Server.LogFile, cfg.Server.LogLevel, "json", true)
	defer logger.Flush()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	ledger := lottodb.NewLedgerRepository(db)
	if err := ledger.AutoMigrate(); err != nil {
		logger.FatalGlobal().Err(err).Msg("failed to migrate schema")
	}
	logger.InfoGlobal().Msg("database connected")

	entry, err := decimal.NewFromString(cfg.EntryAmountBTC)
	if err != nil {
		logger.FatalGlobal().Err(err).Str("entry_amount", cfg.EntryAmountBTC).Msg("invalid entry amount")
	}
	settings := usecase.DefaultSettings(cfg.DepositAddress, cfg.AdminFeeAddress)
	settings.EntryAmount = entry

	var locker lock.CloseLocker
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		})
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, 30*time.Second)
		logger.InfoGlobal().Msg("redis close lock enabled")
	}

	source := beacon.NewBlockstreamSource(cfg.Beacon.BaseURL, cfg.Beacon.Timeout)
	registry := usecase.NewRegistry(ledger, cfg.DepositAddress)
	closer := usecase.NewCloser(ledger, source, registry, locker, settings)

	handler := lottohttp.NewHandler(closer, registry, ledger)
	engine := lottohttp.NewEngine(handler)

	logger.InfoGlobal().Str("port", cfg.Server.HTTPPort).Msg("lotto server listening")
	if err := engine.Run(":" + cfg.Server.HTTPPort); err != nil {
		logger.FatalGlobal().Err(err).Msg("server stopped")
	}
}
