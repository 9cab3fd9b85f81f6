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
	"errors"
	"flag"
	"fmt"

	"property-wallet-go/internal/common"
	"property-wallet-go/internal/config"
	"property-wallet-go/internal/database"
	"property-wallet-go/internal/formance"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"go.uber.org/zap"
)

type reportStats struct {
	profiles    int
	wallets     int
	mismatched  int
	unreachable int
}

type report struct {
	db         *database.Service
	ledger     *formance.Mirror
	currencies models.Currencies
	limit      int
	reconcile  bool
}

func (r *report) printProfile(ctx context.Context, profile models.Profile, stats *reportStats) error {
	wallet, err := r.db.GetWalletByUserId(ctx, profile.Id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	stats.wallets++

	fmt.Printf("\n┌─ %s: %s (%s)\n", profile.Role, profile.FullName, profile.Email)
	fmt.Printf("│  Wallet:  %s\n", wallet.Id)
	fmt.Printf("│  Balance: %s (v%d, auto_payout=%t, instant_payout=%t)\n",
		common.FormatMoney(wallet.Balance, wallet.Currency, r.currencies),
		wallet.Version, wallet.AutoPayout, wallet.InstantPayout)

	if err := r.printTenancies(ctx, profile); err != nil {
		return err
	}
	if r.reconcile {
		if err := r.printReconciliation(ctx, wallet, stats); err != nil {
			return err
		}
	}

	transactions, err := r.db.ListTransactions(ctx, wallet.Id, r.limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(transactions) == 0 {
		fmt.Printf("└  no transactions\n")
		return nil
	}
	for i, tx := range transactions {
		fmt.Printf("%s%s\n", common.BoxPrefix(i == len(transactions)-1), common.FormatTransaction(tx, r.currencies))
	}
	return nil
}

func (r *report) printTenancies(ctx context.Context, profile models.Profile) error {
	filter := store.PartyFilter{TenantId: profile.Id}
	if profile.Role == models.RoleLandlord {
		filter = store.PartyFilter{LandlordId: profile.Id}
	}
	tenancies, err := r.db.ListTenancies(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list tenancies: %w", err)
	}
	for _, t := range tenancies {
		fmt.Printf("│  Tenancy: %s unit %q rent %s [%s]\n",
			t.Id, t.Unit, common.FormatMoney(t.RentAmount, t.Currency, r.currencies), t.Status)
	}
	return nil
}

// printReconciliation compares the stored balance with the transaction
// history and, when configured, with the mirrored ledger account.
func (r *report) printReconciliation(ctx context.Context, wallet *models.Wallet, stats *reportStats) error {
	recon, err := r.db.ReconcileWallet(ctx, wallet.Id)
	if err != nil {
		return fmt.Errorf("failed to reconcile wallet: %w", err)
	}

	status := "OK"
	if !recon.Balance.Equal(recon.Calculated) {
		status = "MISMATCH"
		stats.mismatched++
		zap.L().Warn("Wallet balance does not match its history",
			zap.String("wallet_id", wallet.Id),
			zap.String("balance", recon.Balance.String()),
			zap.String("calculated", recon.Calculated.String()))
	}
	fmt.Printf("│  History: %s [%s]\n", common.FormatMoney(recon.Calculated, wallet.Currency, r.currencies), status)

	if r.ledger == nil {
		return nil
	}
	mirrored, err := r.ledger.WalletBalance(ctx, wallet.Id, wallet.Currency)
	if err != nil {
		stats.unreachable++
		zap.L().Warn("Ledger balance unavailable", zap.String("wallet_id", wallet.Id), zap.Error(err))
		fmt.Printf("│  Ledger:  unavailable\n")
		return nil
	}
	status = "OK"
	if !mirrored.Equal(recon.Calculated) {
		status = "MISMATCH"
		stats.mismatched++
	}
	fmt.Printf("│  Ledger:  %s [%s]\n", common.FormatMoney(mirrored, wallet.Currency, r.currencies), status)
	return nil
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by profile email (optional)")
	limitFlag := flag.Int("limit", 5, "Recent transactions to show per wallet")
	reconcileFlag := flag.Bool("reconcile", false, "Compare balances with transaction history and the ledger mirror")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	currencies, err := common.LoadCurrencies(cfg.Wallet.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currencies", zap.Error(err))
	}

	logger.Info("Connecting to database", zap.String("path", cfg.Database.Path))
	db, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	r := &report{db: db, currencies: currencies, limit: *limitFlag, reconcile: *reconcileFlag}
	if *reconcileFlag && cfg.Formance.Enabled() {
		r.ledger, err = formance.NewMirror(ctx, cfg.Formance, currencies)
		if err != nil {
			logger.Fatal("Failed to connect ledger mirror", zap.Error(err))
		}
	}

	profiles, err := common.LoadProfiles(ctx, db, *emailFlag)
	if err != nil {
		logger.Fatal("Failed to load profiles", zap.Error(err))
	}

	common.PrintHeader("WALLET BALANCE REPORT")

	stats := reportStats{}
	for _, profile := range profiles {
		stats.profiles++
		if err := r.printProfile(ctx, profile, &stats); err != nil {
			logger.Error("Failed to report profile",
				zap.String("user_id", profile.Id),
				zap.Error(err))
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d wallets across %d profiles", stats.wallets, stats.profiles)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d mismatches, %d ledger lookups failed", stats.mismatched, stats.unreachable)
	}
	common.PrintFooter(summary)

	logger.Info("Balance query completed",
		zap.Int("profiles", stats.profiles),
		zap.Int("wallets", stats.wallets),
		zap.Int("mismatched", stats.mismatched))
}
