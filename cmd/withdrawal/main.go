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
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type withdrawalRequest struct {
	email         string
	amount        decimal.Decimal
	bankAccountId string
}

func parseAndValidateFlags() (*withdrawalRequest, error) {
	emailFlag := flag.String("email", "", "Profile email (required)")
	amountFlag := flag.String("amount", "", "Amount to withdraw (required)")
	accountFlag := flag.String("bank-account", "", "Bank account id (default: the profile's default account)")
	flag.Parse()

	if *emailFlag == "" || *amountFlag == "" {
		return nil, fmt.Errorf("flags are required: --email, --amount")
	}

	amount, err := decimal.NewFromString(*amountFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &withdrawalRequest{
		email:         *emailFlag,
		amount:        amount,
		bankAccountId: *accountFlag,
	}, nil
}

// resolveBankAccount falls back to the profile's default account
func resolveBankAccount(ctx context.Context, services *common.Services, profile *models.Profile, accountId string) (string, error) {
	if accountId != "" {
		return accountId, nil
	}
	account, err := services.Store.GetDefaultBankAccount(ctx, profile.Id)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%s has no bank account, add one first", profile.Email)
	}
	if err != nil {
		return "", err
	}
	return account.Id, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	req, err := parseAndValidateFlags()
	if err != nil {
		zap.L().Fatal("Invalid arguments", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	profile, err := services.Store.GetProfileByEmail(ctx, req.email)
	if err != nil {
		zap.L().Fatal("Profile lookup failed", zap.String("email", req.email), zap.Error(err))
	}

	accountId, err := resolveBankAccount(ctx, services, profile, req.bankAccountId)
	if err != nil {
		zap.L().Fatal("Bank account lookup failed", zap.Error(err))
	}

	record, err := services.Wallet.Withdraw(ctx, profile.Id, req.amount, accountId)
	if errors.Is(err, store.ErrInsufficientBalance) {
		zap.L().Fatal("Insufficient balance", zap.String("amount", req.amount.String()), zap.Error(err))
	}
	if err != nil {
		zap.L().Fatal("Withdrawal failed", zap.Error(err))
	}

	wallet, err := services.Wallet.GetWallet(ctx, profile.Id)
	if err != nil {
		zap.L().Fatal("Failed to reload wallet", zap.Error(err))
	}

	common.PrintHeader("WITHDRAWAL COMPLETED")
	fmt.Printf("Profile:     %s\n", profile.Email)
	fmt.Printf("Transaction: %s\n", record.Id)
	fmt.Printf("Amount:      %s\n", common.FormatMoney(record.Amount, record.Currency, services.Currencies))
	fmt.Printf("Status:      %s\n", record.Status)
	fmt.Printf("Description: %s\n", record.Description)
	common.PrintFooter("New balance: " + common.FormatMoney(wallet.Balance, wallet.Currency, services.Currencies))
}
