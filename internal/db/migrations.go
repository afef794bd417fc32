package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Statements use {incidents}, {targets}, {daily_counts} and {history}
// placeholders, resolved against the active table set.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`CREATE TABLE IF NOT EXISTS {incidents} (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		object_id BIGINT NOT NULL DEFAULT 0,
		registration_day VARCHAR(4) NOT NULL,
		registration_month VARCHAR(4) NOT NULL,
		registration_year VARCHAR(8) NOT NULL,
		registered_on DATE,
		ro VARCHAR(64) NOT NULL,
		crime_title TEXT NOT NULL,
		occurrence_title TEXT NOT NULL,
		strategic_indicator VARCHAR(64) NOT NULL,
		disclosure_phase TEXT NOT NULL,
		weekday VARCHAR(32) NOT NULL,
		aisp VARCHAR(32) NOT NULL,
		risp VARCHAR(32) NOT NULL,
		municipality TEXT NOT NULL,
		neighborhood TEXT NOT NULL,
		time_bracket VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_{incidents}_aisp ON {incidents} (aisp);`,
	`CREATE INDEX IF NOT EXISTS idx_{incidents}_ro ON {incidents} (ro);`,
	`CREATE INDEX IF NOT EXISTS idx_{incidents}_registered_on ON {incidents} (registered_on);`,
	`CREATE INDEX IF NOT EXISTS idx_{incidents}_indicator ON {incidents} (strategic_indicator);`,
	`CREATE TABLE IF NOT EXISTS {targets} (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		unit VARCHAR(32) NOT NULL,
		region VARCHAR(32) NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		semester INTEGER NOT NULL CHECK (semester IN (1, 2)),
		crime_type VARCHAR(64) NOT NULL,
		target_value INTEGER NOT NULL DEFAULT 0 CHECK (target_value >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_{targets}_scope ON {targets} (unit, year, semester, crime_type);`,
	`CREATE TABLE IF NOT EXISTS {daily_counts} (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		date DATE NOT NULL,
		unit VARCHAR(32) NOT NULL,
		count INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_{daily_counts}_date ON {daily_counts} (date);`,
	`CREATE INDEX IF NOT EXISTS idx_{daily_counts}_unit ON {daily_counts} (unit);`,
	`CREATE TABLE IF NOT EXISTS {history} (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		incident_id UUID NOT NULL,
		ro VARCHAR(64) NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_{history}_ro ON {history} (ro);`,
	`CREATE INDEX IF NOT EXISTS idx_{history}_incident_id ON {history} (incident_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_{targets}_updated_at') THEN
			CREATE TRIGGER trg_{targets}_updated_at
				BEFORE UPDATE ON {targets}
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_{history}_updated_at') THEN
			CREATE TRIGGER trg_{history}_updated_at
				BEFORE UPDATE ON {history}
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func renderStatement(stmt string, tables TableSet) string {
	return strings.NewReplacer(
		"{incidents}", tables.Incidents,
		"{targets}", tables.Targets,
		"{daily_counts}", tables.DailyCounts,
		"{history}", tables.History,
	).Replace(stmt)
}

func runMigrations(db *gorm.DB, tables TableSet) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(renderStatement(stmt, tables)).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
