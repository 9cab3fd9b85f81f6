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

	"property-wallet-go/internal/models"
	"property-wallet-go/internal/store"

	"go.uber.org/zap"
)

// LoadProfiles returns the profile with emailFilter, or every profile when
// the filter is empty.
func LoadProfiles(ctx context.Context, walletStore store.WalletStore, emailFilter string) ([]models.Profile, error) {
	if emailFilter != "" {
		zap.L().Info("Looking up profile by email", zap.String("email", emailFilter))
		profile, err := walletStore.GetProfileByEmail(ctx, emailFilter)
		if err != nil {
			return nil, fmt.Errorf("profile not found: %w", err)
		}
		return []models.Profile{*profile}, nil
	}

	profiles, err := walletStore.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	zap.L().Info("Retrieved profiles", zap.Int("count", len(profiles)))
	return profiles, nil
}
