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

package main

import (
	"context"
	"flag"
	"fmt"

	"property-wallet-go/internal/common"
	"property-wallet-go/internal/config"

	"go.uber.org/zap"
)

// setup prepares a deployment: schema, ledger mirror and a wallet for
// every registered profile.
func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Only provision the profile with this email (optional)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Opening the services creates the schema and, when configured, the Formance ledger
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	profiles, err := common.LoadProfiles(ctx, services.Store, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to load profiles", zap.Error(err))
	}

	common.PrintHeader("WALLET PROVISIONING")
	fmt.Printf("Currencies:    %v\n", services.Currencies.Codes())
	fmt.Printf("Ledger mirror: %t\n", services.Ledger != nil)

	failed := 0
	for i, profile := range profiles {
		wallet, err := services.Wallet.GetWallet(ctx, profile.Id)
		if err != nil {
			failed++
			zap.L().Error("Failed to provision wallet",
				zap.String("user_id", profile.Id),
				zap.Error(err))
			fmt.Printf("%s✗ %s: %v\n", common.BoxPrefix(i == len(profiles)-1), profile.Email, err)
			continue
		}
		fmt.Printf("%s✓ %s: %s %s\n", common.BoxPrefix(i == len(profiles)-1), profile.Email, wallet.Id, wallet.Currency)
	}

	common.PrintFooter(fmt.Sprintf("SUMMARY: %d profiles, %d failed", len(profiles), failed))
	if failed > 0 {
		zap.L().Warn("Setup finished with failures", zap.Int("failed", failed))
	}
}
