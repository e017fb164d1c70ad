// Reconciler repairs closed rounds whose settlement recording or successor
// creation failed after the closure commit. It never recomputes a draw.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frankieli/lotto_pool/internal/config"
	lottodb "github.com/frankieli/lotto_pool/internal/modules/lotto/repository/db"
	"github.com/frankieli/lotto_pool/internal/modules/lotto/usecase"
	"github.com/frankieli/lotto_pool/pkg/logger"
)

func main() {
	batch := flag.Int("batch", 100, "Maximum rounds to repair per run")
	background := flag.Bool("d", false, "Run in background mode (disable console logging)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadLottoConfig()

	logger.InitWithFile(cfg.Server.LogFile, cfg.Server.LogLevel, "json", !*background)
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
	defer sqlDB.Close()

	ledger := lottodb.NewLedgerRepository(db)

	entry, err := decimal.NewFromString(cfg.EntryAmountBTC)
	if err != nil {
		logger.FatalGlobal().Err(err).Str("entry_amount", cfg.EntryAmountBTC).Msg("invalid entry amount")
	}
	settings := usecase.DefaultSettings(cfg.DepositAddress, cfg.AdminFeeAddress)
	settings.EntryAmount = entry

	registry := usecase.NewRegistry(ledger, cfg.DepositAddress)
	reconciler := usecase.NewReconciler(ledger, registry, settings, *batch)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := reconciler.Run(ctx)
	if err != nil {
		logger.ErrorGlobal().Err(err).Msg("reconciliation finished with errors")
		if report != nil {
			logger.ErrorGlobal().
				Int("checked", report.Checked).
				Interface("repaired", report.Repaired).
				Interface("failed", report.Failed).
				Msg("reconciliation report")
		}
		logger.Flush()
		os.Exit(1)
	}

	logger.InfoGlobal().
		Int("checked", report.Checked).
		Interface("repaired", report.Repaired).
		Uint64("opened_round_id", report.OpenedRoundID).
		Msg("reconciliation complete")
}
