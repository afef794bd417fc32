package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crime-dashboard/internal/config"
	"crime-dashboard/internal/model"
)

func New(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.Environment == "production" {
		logLevel = gormlogger.Error
	}

	database, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.DB.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	tables := TablesFor(cfg.DataScope)
	if err := runMigrations(database, tables); err != nil {
		return nil, err
	}
	log.Info().Str("scope", string(cfg.DataScope)).Str("incidents_table", tables.Incidents).Msg("database ready")

	return database, nil
}

// AutoMigrate creates the tables of a set from the gorm models. Used for
// non-postgres databases such as the in-memory sqlite of the tests.
func AutoMigrate(database *gorm.DB, tables TableSet) error {
	steps := []struct {
		table string
		model interface{}
	}{
		{tables.Incidents, &model.Incident{}},
		{tables.Targets, &model.Target{}},
		{tables.DailyCounts, &model.DailyCount{}},
		{tables.History, &model.HistoryEntry{}},
	}
	for _, s := range steps {
		if err := database.Table(s.table).AutoMigrate(s.model); err != nil {
			return fmt.Errorf("auto migrate %s: %w", s.table, err)
		}
	}
	return nil
}
