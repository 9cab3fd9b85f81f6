/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"property-wallet-go/internal/database"
	"property-wallet-go/internal/formance"
	"property-wallet-go/internal/gateway"
	"property-wallet-go/internal/invitation"
	"property-wallet-go/internal/metrics"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/notify"
	"property-wallet-go/internal/wallet"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services is everything a process needs to serve wallet operations
type Services struct {
	Store       *database.Service
	Gateway     *gateway.Client
	Ledger      *formance.Mirror // nil unless FORMANCE_STACK_URL is set
	Notifier    notify.Notifier
	Metrics     *metrics.Metrics
	Currencies  models.Currencies
	Wallet      *wallet.Service
	Invitations *invitation.Service
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	currencies, err := LoadCurrencies(cfg.Wallet.CurrenciesFile)
	if err != nil {
		return nil, err
	}

	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	services := &Services{Store: dbService, Currencies: currencies, Metrics: metrics.New()}

	zap.L().Info("Configuring payment gateway", zap.String("base_url", cfg.Gateway.BaseURL))
	services.Gateway, err = gateway.NewClient(cfg.Gateway)
	if err != nil {
		services.Close()
		return nil, err
	}

	var mirror wallet.LedgerMirror = formance.NopMirror{}
	if cfg.Formance.Enabled() {
		zap.L().Info("Connecting ledger mirror", zap.String("stack_url", cfg.Formance.StackURL))
		services.Ledger, err = formance.NewMirror(ctx, cfg.Formance, currencies)
		if err != nil {
			services.Close()
			return nil, err
		}
		mirror = services.Ledger
	} else {
		zap.L().Info("Ledger mirror disabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		services.Notifier, err = notify.NewKafkaNotifier(cfg.Kafka)
		if err != nil {
			services.Close()
			return nil, err
		}
	} else {
		services.Notifier = notify.LogNotifier{}
	}

	services.Wallet, err = wallet.NewService(wallet.Dependencies{
		Store:      dbService,
		Gateway:    services.Gateway,
		Mirror:     mirror,
		Notifier:   services.Notifier,
		Metrics:    services.Metrics,
		Currencies: currencies,
	}, cfg.Wallet, cfg.Gateway)
	if err != nil {
		services.Close()
		return nil, err
	}
	services.Invitations = invitation.NewService(dbService, services.Metrics, currencies, cfg.Wallet)

	zap.L().Info("Services initialized",
		zap.Strings("currencies", currencies.Codes()),
		zap.Bool("ledger_mirror", services.Ledger != nil),
		zap.Int("kafka_brokers", len(cfg.Kafka.Brokers)))
	return services, nil
}

// InitializeDatabaseOnly opens just the store, for CLI tools that never call the gateway
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet database: %w", err)
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.Notifier != nil {
		if err := cs.Notifier.Close(); err != nil {
			zap.L().Warn("Failed to close notifier", zap.Error(err))
		}
	}
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
