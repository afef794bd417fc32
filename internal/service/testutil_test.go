package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"crime-dashboard/internal/config"
	"crime-dashboard/internal/db"
	"crime-dashboard/internal/metrics"
	"crime-dashboard/internal/model"
	"crime-dashboard/internal/repository"
)

type testEnv struct {
	db        *gorm.DB
	tables    db.TableSet
	incidents *repository.IncidentRepository
	daily     *repository.DailyCountRepository
	targets   *repository.TargetRepository
	history   *repository.HistoryRepository
	metrics   *metrics.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	tables := db.TablesFor(config.DataScopeStaging)
	require.NoError(t, db.AutoMigrate(database, tables))

	return &testEnv{
		db:        database,
		tables:    tables,
		incidents: repository.NewIncidentRepository(database, tables.Incidents),
		daily:     repository.NewDailyCountRepository(database, tables.DailyCounts),
		targets:   repository.NewTargetRepository(database, tables.Targets),
		history:   repository.NewHistoryRepository(database, tables.History),
		metrics:   metrics.NewCollector("crime_dashboard_test"),
	}
}

func (e *testEnv) targetService() *TargetService {
	return NewTargetService(e.targets, NewUndoBuffer(time.Hour), zerolog.Nop())
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var incidentHeader = []interface{}{
	"objectid", "Dia do registro", "Mes do registro", "Ano do registro", "RO",
	"Título do delito", "Indicador estratégico", "AISP do fato", "RISP do fato",
	"Município do fato (IBGE)", "Bairro", "Faixa horária",
}

func incident(unit string, category model.CrimeCategory, municipality, neighborhood string) model.Incident {
	return model.Incident{
		AISP:               unit,
		RISP:               "RISP 5",
		StrategicIndicator: category.Label(),
		Municipality:       municipality,
		Neighborhood:       neighborhood,
	}
}

func repeat(n int, inc model.Incident) []model.Incident {
	out := make([]model.Incident, n)
	for i := range out {
		out[i] = inc
	}
	return out
}
