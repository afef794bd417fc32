package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"crime-dashboard/internal/config"
)

func TestTablesFor(t *testing.T) {
	prod := TablesFor(config.DataScopeProduction)
	assert.Equal(t, "crimes", prod.Incidents)
	assert.Equal(t, "targets", prod.Targets)

	staging := TablesFor(config.DataScopeStaging)
	assert.Equal(t, "crimes_test", staging.Incidents)
	assert.Equal(t, "crime_timeseries_test", staging.DailyCounts)
	assert.Equal(t, "crime_history_test", staging.History)
}

func TestRenderStatementResolvesEveryPlaceholder(t *testing.T) {
	tables := TablesFor(config.DataScopeStaging)
	for _, stmt := range migrationStatements {
		rendered := renderStatement(stmt, tables)
		for _, ph := range []string{"{incidents}", "{targets}", "{daily_counts}", "{history}"} {
			assert.False(t, strings.Contains(rendered, ph), rendered)
		}
	}
	assert.Contains(t, renderStatement(migrationStatements[len(migrationStatements)-1], tables), "crime_history_test")
}
