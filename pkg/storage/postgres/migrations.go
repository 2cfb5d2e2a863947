package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all schema migrations in order
func GetMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create companies and branches tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS companies (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					code VARCHAR(64) NOT NULL UNIQUE,
					address TEXT,
					phone VARCHAR(32),
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS branches (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					name VARCHAR(255) NOT NULL,
					code VARCHAR(64) NOT NULL,
					address TEXT,
					phone VARCHAR(32),
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(company_id, code)
				);

				CREATE INDEX idx_branches_company_id ON branches(company_id);
			`,
		},
		{
			Version:     2,
			Description: "Create roles, users, user_roles and sessions tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					code VARCHAR(64) NOT NULL,
					name VARCHAR(255) NOT NULL,
					description TEXT,
					company_id UUID REFERENCES companies(id) ON DELETE CASCADE,
					permissions JSONB NOT NULL DEFAULT '[]',
					is_system BOOLEAN NOT NULL DEFAULT FALSE,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(code, company_id)
				);

				CREATE INDEX idx_roles_company_id ON roles(company_id);
				CREATE UNIQUE INDEX idx_roles_code_global ON roles(code) WHERE company_id IS NULL;

				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					uuid UUID NOT NULL UNIQUE,
					email VARCHAR(255) NOT NULL UNIQUE,
					full_name VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255),
					external_id VARCHAR(255),
					company_id UUID REFERENCES companies(id) ON DELETE SET NULL,
					owned_company_id UUID REFERENCES companies(id) ON DELETE SET NULL,
					branch_id UUID REFERENCES branches(id) ON DELETE SET NULL,
					is_active BOOLEAN NOT NULL DEFAULT TRUE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_users_company_id ON users(company_id);
				CREATE INDEX idx_users_external_id ON users(external_id);

				CREATE TABLE IF NOT EXISTS user_roles (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					role_id BIGINT NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
					granted_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(user_id, role_id)
				);

				CREATE INDEX idx_user_roles_user_id ON user_roles(user_id);
				CREATE INDEX idx_user_roles_role_id ON user_roles(role_id);

				CREATE TABLE IF NOT EXISTS sessions (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					token_hash VARCHAR(64) NOT NULL UNIQUE,
					expires_at TIMESTAMPTZ NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_sessions_user_id ON sessions(user_id);
				CREATE INDEX idx_sessions_expires_at ON sessions(expires_at);
			`,
		},
		{
			Version:     3,
			Description: "Create item types, catalogs and price history tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS item_types (
					id UUID PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					description TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE TABLE IF NOT EXISTS catalogs (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					item_type_id UUID NOT NULL REFERENCES item_types(id),
					name VARCHAR(255) NOT NULL,
					price NUMERIC(18,2) NOT NULL DEFAULT 0,
					unit VARCHAR(32) NOT NULL DEFAULT 'gram',
					status VARCHAR(32) NOT NULL DEFAULT 'active',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(company_id, name)
				);

				CREATE INDEX idx_catalogs_company_id ON catalogs(company_id);
				CREATE INDEX idx_catalogs_item_type_id ON catalogs(item_type_id);

				CREATE TABLE IF NOT EXISTS catalog_price_history (
					id BIGSERIAL PRIMARY KEY,
					catalog_id UUID NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
					price NUMERIC(18,2) NOT NULL,
					changed_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_catalog_price_history_catalog_id ON catalog_price_history(catalog_id);
			`,
		},
		{
			Version:     4,
			Description: "Create customers table",
			SQL: `
				CREATE TABLE IF NOT EXISTS customers (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					branch_id UUID REFERENCES branches(id) ON DELETE SET NULL,
					national_id VARCHAR(32) NOT NULL,
					name VARCHAR(255) NOT NULL,
					phone VARCHAR(32),
					address TEXT,
					is_blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(company_id, national_id)
				);

				CREATE INDEX idx_customers_company_id ON customers(company_id);
				CREATE INDEX idx_customers_branch_id ON customers(branch_id);
			`,
		},
		{
			Version:     5,
			Description: "Create capital topups and cash deposits tables",
			SQL: `
				CREATE TABLE IF NOT EXISTS capital_topups (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					amount NUMERIC(18,2) NOT NULL,
					notes TEXT,
					status VARCHAR(32) NOT NULL DEFAULT 'pending',
					requested_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					approved_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					approved_at TIMESTAMPTZ,
					rejected_at TIMESTAMPTZ,
					rejection_reason TEXT,
					disbursed_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					disbursed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_capital_topups_company_id ON capital_topups(company_id);
				CREATE INDEX idx_capital_topups_status ON capital_topups(status);

				CREATE TABLE IF NOT EXISTS cash_deposits (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					branch_id UUID REFERENCES branches(id) ON DELETE SET NULL,
					amount NUMERIC(18,2) NOT NULL,
					notes TEXT,
					status VARCHAR(32) NOT NULL DEFAULT 'pending',
					requested_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					approved_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					approved_at TIMESTAMPTZ,
					rejected_at TIMESTAMPTZ,
					rejection_reason TEXT,
					disbursed_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					disbursed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_cash_deposits_company_id ON cash_deposits(company_id);
				CREATE INDEX idx_cash_deposits_branch_id ON cash_deposits(branch_id);
				CREATE INDEX idx_cash_deposits_status ON cash_deposits(status);
			`,
		},
		{
			Version:     6,
			Description: "Create auction batches table",
			SQL: `
				CREATE TABLE IF NOT EXISTS auction_batches (
					id UUID PRIMARY KEY,
					company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
					branch_id UUID REFERENCES branches(id) ON DELETE SET NULL,
					name VARCHAR(255) NOT NULL,
					notes TEXT,
					status VARCHAR(32) NOT NULL DEFAULT 'draft',
					submitted_at TIMESTAMPTZ,
					validated_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
					validated_at TIMESTAMPTZ,
					rejection_reason TEXT,
					completed_at TIMESTAMPTZ,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_auction_batches_company_id ON auction_batches(company_id);
				CREATE INDEX idx_auction_batches_status ON auction_batches(status);
			`,
		},
		{
			Version:     7,
			Description: "Create audit events table",
			SQL: `
				CREATE TABLE IF NOT EXISTS audit_events (
					id BIGSERIAL PRIMARY KEY,
					event VARCHAR(100) NOT NULL,
					actor_id BIGINT,
					actor_email VARCHAR(255),
					subject VARCHAR(64) NOT NULL,
					resource_id VARCHAR(255) NOT NULL,
					company_id UUID,
					request_id VARCHAR(100),
					occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);

				CREATE INDEX idx_audit_events_occurred_at ON audit_events(occurred_at DESC);
				CREATE INDEX idx_audit_events_company_id ON audit_events(company_id);
				CREATE INDEX idx_audit_events_actor_id ON audit_events(actor_id);
				CREATE INDEX idx_audit_events_resource ON audit_events(subject, resource_id);
			`,
		},
	}
}

// RunMigrations executes all pending migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS backoffice_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM backoffice_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("failed to query migrations: %w", err)
	}

	appliedVersions := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		appliedVersions[version] = true
	}
	rows.Close()

	for _, migration := range GetMigrations() {
		if appliedVersions[migration.Version] {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO backoffice_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
