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
	"regexp"
	"strings"
	"time"

	"property-wallet-go/internal/api"
	"property-wallet-go/internal/common"
	"property-wallet-go/internal/config"
	"property-wallet-go/internal/database"
	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// tenancyFlags binds a new tenant to a landlord's property
type tenancyFlags struct {
	landlordEmail string
	property      string
	unit          string
	rent          string
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	return nil
}

func createTenancy(ctx context.Context, db *database.Service, tenant *models.Profile, flags tenancyFlags, currencies models.Currencies) (*models.Tenancy, error) {
	landlord, err := db.GetProfileByEmail(ctx, flags.landlordEmail)
	if err != nil {
		return nil, fmt.Errorf("landlord lookup failed: %w", err)
	}
	if landlord.Role != models.RoleLandlord {
		return nil, fmt.Errorf("%s is not a landlord", flags.landlordEmail)
	}

	rent, err := decimal.NewFromString(flags.rent)
	if err != nil || !rent.IsPositive() {
		return nil, fmt.Errorf("invalid rent amount %q", flags.rent)
	}
	if _, err := currencies.ToMinorUnits(rent, landlord.Currency); err != nil {
		return nil, fmt.Errorf("invalid rent amount: %w", err)
	}

	propertyName := flags.property
	if propertyName == "" {
		propertyName = fmt.Sprintf("%s property", landlord.FullName)
	}
	property, err := db.CreateProperty(ctx, store.CreatePropertyParams{
		LandlordId: landlord.Id,
		Name:       propertyName,
	})
	if err != nil {
		return nil, err
	}

	return db.CreateTenancy(ctx, store.CreateTenancyParams{
		PropertyId: property.Id,
		LandlordId: landlord.Id,
		TenantId:   tenant.Id,
		Unit:       flags.unit,
		RentAmount: rent,
		Currency:   landlord.Currency,
		Status:     models.TenancyActive,
		StartDate:  time.Now(),
	})
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "", "Full name (required)")
	emailFlag := flag.String("email", "", "Email address (required)")
	roleFlag := flag.String("role", "tenant", "Account role: tenant or landlord")
	currencyFlag := flag.String("currency", "", "Wallet currency (default: WALLET_DEFAULT_CURRENCY)")
	var tenancy tenancyFlags
	flag.StringVar(&tenancy.landlordEmail, "landlord-email", "", "Tenant only: bind the tenant to this landlord")
	flag.StringVar(&tenancy.property, "property", "", "Tenant only: property name to create")
	flag.StringVar(&tenancy.unit, "unit", "", "Tenant only: unit label")
	flag.StringVar(&tenancy.rent, "rent", "", "Tenant only: monthly rent amount")
	flag.Parse()

	if *nameFlag == "" || *emailFlag == "" {
		zap.L().Fatal("Both flags are required: --name and --email")
	}
	if err := validateName(*nameFlag); err != nil {
		zap.L().Fatal("Invalid name", zap.Error(err))
	}
	if err := validateEmail(*emailFlag); err != nil {
		zap.L().Fatal("Invalid email", zap.Error(err))
	}
	role, err := models.ParseRole(*roleFlag)
	if err != nil {
		zap.L().Fatal("Invalid role", zap.Error(err))
	}
	if tenancy.landlordEmail != "" && role != models.RoleTenant {
		zap.L().Fatal("--landlord-email only applies to tenants")
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	currencies, err := common.LoadCurrencies(cfg.Wallet.CurrenciesFile)
	if err != nil {
		zap.L().Fatal("Failed to load currencies", zap.Error(err))
	}
	currency := strings.ToUpper(*currencyFlag)
	if currency == "" {
		currency = cfg.Wallet.DefaultCurrency
	}
	if !currencies.Supports(currency) {
		zap.L().Fatal("Unsupported currency", zap.String("currency", currency), zap.Strings("supported", currencies.Codes()))
	}

	db, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	profile, err := db.CreateProfile(ctx, store.CreateProfileParams{
		Id:       uuid.New().String(),
		Email:    *emailFlag,
		FullName: strings.TrimSpace(*nameFlag),
		Role:     role,
		Currency: currency,
	})
	if errors.Is(err, store.ErrInvalidState) {
		zap.L().Fatal("Profile already exists with this email", zap.String("email", *emailFlag))
	}
	if err != nil {
		zap.L().Fatal("Failed to create profile", zap.Error(err))
	}

	wallet, err := db.GetOrCreateWallet(ctx, profile.Id, profile.Currency)
	if err != nil {
		zap.L().Fatal("Failed to create wallet", zap.Error(err))
	}

	common.PrintHeader("PROFILE CREATED")
	fmt.Printf("ID:       %s\n", profile.Id)
	fmt.Printf("Name:     %s\n", profile.FullName)
	fmt.Printf("Email:    %s\n", profile.Email)
	fmt.Printf("Role:     %s\n", profile.Role)
	fmt.Printf("Wallet:   %s (%s)\n", wallet.Id, wallet.Currency)

	if tenancy.landlordEmail != "" {
		t, err := createTenancy(ctx, db, profile, tenancy, currencies)
		if err != nil {
			zap.L().Fatal("Failed to create tenancy", zap.Error(err))
		}
		fmt.Printf("Tenancy:  %s (rent %s)\n", t.Id, common.FormatMoney(t.RentAmount, t.Currency, currencies))
	}

	if cfg.Auth.JWTSecret != "" {
		token, err := api.IssueToken(cfg.Auth, profile.Id, profile.Email, 24*time.Hour)
		if err != nil {
			zap.L().Warn("Failed to issue development token", zap.Error(err))
		} else {
			fmt.Printf("Token:    %s\n", token)
		}
	}
	common.PrintFooter("Profile ready")

	zap.L().Info("Profile created successfully",
		zap.String("id", profile.Id),
		zap.String("role", profile.Role.String()))
}
