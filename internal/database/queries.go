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

package database

const schema = `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL CHECK (role IN ('tenant', 'landlord')),
		currency TEXT NOT NULL DEFAULT 'EUR',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		landlord_id TEXT NOT NULL REFERENCES profiles(id),
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tenancies (
		id TEXT PRIMARY KEY,
		property_id TEXT NOT NULL REFERENCES properties(id),
		landlord_id TEXT NOT NULL REFERENCES profiles(id),
		tenant_id TEXT NOT NULL REFERENCES profiles(id),
		unit TEXT NOT NULL DEFAULT '',
		rent_amount TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		start_date TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tenancies_tenant_id ON tenancies(tenant_id);
	CREATE INDEX IF NOT EXISTS idx_tenancies_landlord_id ON tenancies(landlord_id);

	-- One wallet per user; lazy creation relies on this constraint
	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		balance TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL,
		external_customer_id TEXT NOT NULL DEFAULT '',
		auto_payout BOOLEAN NOT NULL DEFAULT 0,
		instant_payout BOOLEAN NOT NULL DEFAULT 0,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES wallets(id),
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		related_user_id TEXT NOT NULL DEFAULT '',
		tenancy_id TEXT NOT NULL DEFAULT '',
		external_reference TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_wallet_transactions_wallet_created ON wallet_transactions(wallet_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user_id ON wallet_transactions(user_id);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_transactions_deposit_ref
		ON wallet_transactions(external_reference) WHERE type = 'deposit' AND external_reference != '';

	CREATE TABLE IF NOT EXISTS bank_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		bank_name TEXT NOT NULL,
		account_holder_name TEXT NOT NULL,
		iban TEXT NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bank_accounts_user_id ON bank_accounts(user_id);

	CREATE TABLE IF NOT EXISTS security_deposits (
		id TEXT PRIMARY KEY,
		tenancy_id TEXT NOT NULL REFERENCES tenancies(id),
		tenant_id TEXT NOT NULL,
		landlord_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'held',
		locked_at TIMESTAMP NOT NULL,
		released_at TIMESTAMP,
		release_amount TEXT,
		deduction_reason TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_security_deposits_tenant_id ON security_deposits(tenant_id);
	CREATE INDEX IF NOT EXISTS idx_security_deposits_landlord_id ON security_deposits(landlord_id);

	CREATE TABLE IF NOT EXISTS money_requests (
		id TEXT PRIMARY KEY,
		tenancy_id TEXT NOT NULL REFERENCES tenancies(id),
		tenant_id TEXT NOT NULL,
		landlord_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		landlord_note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		decided_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_money_requests_tenant_id ON money_requests(tenant_id);
	CREATE INDEX IF NOT EXISTS idx_money_requests_landlord_id ON money_requests(landlord_id);

	CREATE TABLE IF NOT EXISTS invitations (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		landlord_id TEXT NOT NULL,
		email TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		property_id TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		rent_amount TEXT NOT NULL DEFAULT '0',
		currency TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		used BOOLEAN NOT NULL DEFAULT 0,
		used_by TEXT NOT NULL DEFAULT '',
		used_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	);
`

// Column lists shared by the select queries below
const (
	profileColumns     = `id, email, full_name, phone, role, currency, created_at`
	propertyColumns    = `id, landlord_id, name, address, created_at`
	tenancyColumns     = `id, property_id, landlord_id, tenant_id, unit, rent_amount, currency, status, start_date, created_at`
	walletColumns      = `id, user_id, balance, currency, external_customer_id, auto_payout, instant_payout, version, created_at, updated_at`
	transactionColumns = `id, wallet_id, user_id, type, amount, currency, status, description, related_user_id, tenancy_id, external_reference, created_at, updated_at`
	bankAccountColumns = `id, user_id, bank_name, account_holder_name, iban, is_default, created_at`
	depositColumns     = `id, tenancy_id, tenant_id, landlord_id, amount, currency, status, locked_at, released_at, release_amount, deduction_reason`
	requestColumns     = `id, tenancy_id, tenant_id, landlord_id, amount, currency, reason, category, status, landlord_note, created_at, decided_at`
	invitationColumns  = `id, token, landlord_id, email, full_name, phone, property_id, unit, rent_amount, currency, expires_at, used, used_by, used_at, created_at`
)

// Profile, property and tenancy queries
const (
	queryInsertProfile = `
		INSERT INTO profiles (id, email, full_name, phone, role, currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`

	queryGetProfile        = `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	queryGetProfileByEmail = `SELECT ` + profileColumns + ` FROM profiles WHERE email = ?`
	queryListProfiles      = `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at, email`

	queryInsertProperty = `
		INSERT INTO properties (id, landlord_id, name, address, created_at)
		VALUES (?, ?, ?, ?, ?)`

	queryGetProperty = `SELECT ` + propertyColumns + ` FROM properties WHERE id = ?`

	queryInsertTenancy = `
		INSERT INTO tenancies (id, property_id, landlord_id, tenant_id, unit, rent_amount, currency, status, start_date, created_at)
		VALUES (:id, :property_id, :landlord_id, :tenant_id, :unit, :rent_amount, :currency, :status, :start_date, :created_at)`

	queryGetTenancy              = `SELECT ` + tenancyColumns + ` FROM tenancies WHERE id = ?`
	queryGetTenancyForTenant     = `SELECT ` + tenancyColumns + ` FROM tenancies WHERE id = ? AND tenant_id = ?`
	queryListTenanciesByTenant   = `SELECT ` + tenancyColumns + ` FROM tenancies WHERE tenant_id = ? ORDER BY created_at DESC`
	queryListTenanciesByLandlord = `SELECT ` + tenancyColumns + ` FROM tenancies WHERE landlord_id = ? ORDER BY created_at DESC`
)

// Wallet queries
const (
	queryInsertWallet = `
		INSERT INTO wallets (id, user_id, balance, currency, version, created_at, updated_at)
		VALUES (?, ?, '0', ?, 1, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`

	queryGetWalletByUserId = `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = ?`
	queryGetWalletById     = `SELECT ` + walletColumns + ` FROM wallets WHERE id = ?`
	queryListWallets       = `SELECT ` + walletColumns + ` FROM wallets ORDER BY created_at`

	// Version is the compare-and-swap guard: the write only lands if nobody
	// moved the balance since it was read.
	queryUpdateWalletBalance = `
		UPDATE wallets
		SET balance = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	queryUpdateWalletCustomer = `UPDATE wallets SET external_customer_id = ?, updated_at = ? WHERE id = ?`

	queryUpdateWalletSettings = `
		UPDATE wallets
		SET auto_payout = ?, instant_payout = ?, updated_at = ?
		WHERE id = ?`
)

// Wallet transaction queries
const (
	queryInsertTransaction = `
		INSERT INTO wallet_transactions (` + transactionColumns + `)
		VALUES (:id, :wallet_id, :user_id, :type, :amount, :currency, :status, :description,
			:related_user_id, :tenancy_id, :external_reference, :created_at, :updated_at)`

	queryUpdateTransactionStatus = `
		UPDATE wallet_transactions
		SET status = ?, external_reference = CASE WHEN ? != '' THEN ? ELSE external_reference END, updated_at = ?
		WHERE id = ?`

	queryGetTransaction = `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE id = ?`

	queryCheckDuplicateDeposit = `
		SELECT id FROM wallet_transactions
		WHERE type = 'deposit' AND external_reference = ?
		LIMIT 1`

	queryListTransactions = `
		SELECT ` + transactionColumns + ` FROM wallet_transactions
		WHERE wallet_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`

	queryCountTransactions = `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = ?`

	// Pending rows have already moved the balance; failed and cancelled rows have not.
	queryReconcileAmounts = `
		SELECT amount FROM wallet_transactions
		WHERE wallet_id = ? AND status IN ('pending', 'completed')`
)

// Bank account queries
const (
	queryInsertBankAccount = `
		INSERT INTO bank_accounts (id, user_id, bank_name, account_holder_name, iban, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryCountBankAccounts     = `SELECT COUNT(*) FROM bank_accounts WHERE user_id = ?`
	queryClearDefaultAccounts  = `UPDATE bank_accounts SET is_default = 0 WHERE user_id = ?`
	queryListBankAccounts      = `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE user_id = ? ORDER BY created_at, rowid`
	queryGetBankAccount        = `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE id = ? AND user_id = ?`
	queryGetDefaultBankAccount = `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE user_id = ? AND is_default = 1`
	queryDeleteBankAccount     = `DELETE FROM bank_accounts WHERE id = ? AND user_id = ?`

	queryPromoteOldestBankAccount = `
		UPDATE bank_accounts SET is_default = 1
		WHERE id = (SELECT id FROM bank_accounts WHERE user_id = ? ORDER BY created_at, rowid LIMIT 1)`
)

// Security deposit queries
const (
	queryInsertDeposit = `
		INSERT INTO security_deposits (id, tenancy_id, tenant_id, landlord_id, amount, currency, status, locked_at)
		VALUES (?, ?, ?, ?, ?, ?, 'held', ?)`

	queryGetDepositForLandlord  = `SELECT ` + depositColumns + ` FROM security_deposits WHERE id = ? AND landlord_id = ?`
	queryListDepositsByTenant   = `SELECT ` + depositColumns + ` FROM security_deposits WHERE tenant_id = ? ORDER BY locked_at DESC`
	queryListDepositsByLandlord = `SELECT ` + depositColumns + ` FROM security_deposits WHERE landlord_id = ? ORDER BY locked_at DESC`

	// The status guard makes release a one-way transition.
	queryReleaseDeposit = `
		UPDATE security_deposits
		SET status = ?, release_amount = ?, released_at = ?, deduction_reason = ?
		WHERE id = ? AND status = 'held'`
)

// Money request queries
const (
	queryInsertMoneyRequest = `
		INSERT INTO money_requests (id, tenancy_id, tenant_id, landlord_id, amount, currency, reason, category, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?)`

	queryGetMoneyRequestForLandlord = `SELECT ` + requestColumns + ` FROM money_requests WHERE id = ? AND landlord_id = ?`
	queryListRequestsByTenant       = `SELECT ` + requestColumns + ` FROM money_requests WHERE tenant_id = ? ORDER BY created_at DESC`
	queryListRequestsByLandlord     = `SELECT ` + requestColumns + ` FROM money_requests WHERE landlord_id = ? ORDER BY created_at DESC`

	queryDecideMoneyRequest = `
		UPDATE money_requests
		SET status = ?, landlord_note = ?, decided_at = ?
		WHERE id = ? AND status = 'pending'`
)

// Invitation queries
const (
	queryInsertInvitation = `
		INSERT INTO invitations (id, token, landlord_id, email, full_name, phone, property_id, unit, rent_amount, currency, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`

	queryGetInvitationByToken = `SELECT ` + invitationColumns + ` FROM invitations WHERE token = ?`

	// Compare-and-set on used: only the first redemption flips the flag.
	queryConsumeInvitation = `
		UPDATE invitations
		SET used = 1, used_by = ?, used_at = ?
		WHERE token = ? AND used = 0`
)
