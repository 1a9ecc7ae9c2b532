package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('DRAFT', 'EXECUTED', 'FINALIZED', 'CANCELLED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_number VARCHAR(64) NOT NULL,
		location_id VARCHAR(64) NOT NULL,
		need_type VARCHAR(16) NOT NULL,
		pre_printed_contract_number VARCHAR(64),
		status contract_status NOT NULL DEFAULT 'DRAFT',
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE,
		date_executed TIMESTAMPTZ,
		date_signed TIMESTAMPTZ,
		people JSONB NOT NULL DEFAULT '[]',
		sales JSONB NOT NULL DEFAULT '[]',
		payments JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_location_id ON contracts (location_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
