package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate bootstraps the schema. Statements are idempotent so the service can
// run it on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE SCHEMA IF NOT EXISTS debt;

CREATE TABLE IF NOT EXISTS debt.users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS debt.debts (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES debt.users(id) ON DELETE CASCADE,
	customer_name TEXT NOT NULL,
	phone TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
	description TEXT NOT NULL DEFAULT '',
	due_date DATE,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS debt.payments (
	id BIGSERIAL PRIMARY KEY,
	debt_id BIGINT NOT NULL REFERENCES debt.debts(id) ON DELETE CASCADE,
	amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	payment_date DATE NOT NULL,
	payment_method TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS debt.debt_history (
	id BIGSERIAL PRIMARY KEY,
	debt_id BIGINT NOT NULL REFERENCES debt.debts(id) ON DELETE CASCADE,
	action_type TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	previous_amount NUMERIC(14,2) NOT NULL,
	new_amount NUMERIC(14,2) NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS debt.password_resets (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES debt.users(id) ON DELETE CASCADE,
	token TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMPTZ NOT NULL,
	used BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_debts_user ON debt.debts(user_id);
CREATE INDEX IF NOT EXISTS idx_debts_due ON debt.debts(due_date) WHERE due_date IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_payments_debt ON debt.payments(debt_id);
CREATE INDEX IF NOT EXISTS idx_debt_history_debt ON debt.debt_history(debt_id);
CREATE INDEX IF NOT EXISTS idx_password_resets_token ON debt.password_resets(token);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
