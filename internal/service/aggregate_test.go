package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
)

func TestAggregateZeroFillsUnitsAndCategories(t *testing.T) {
	agg := Aggregate(catalog.Units, catalog.Command, nil)

	require.Len(t, agg.Units, len(catalog.Units))
	assert.Equal(t, catalog.Command, agg.Command.Unit)
	for _, u := range append(agg.Units, agg.Command) {
		assert.Zero(t, u.Total)
		assert.Len(t, u.Categories, len(model.Categories))
	}
}

func TestAggregateTotalsMatchCategories(t *testing.T) {
	records := []model.Incident{
		incident("AISP 10", model.CategoryStreetRobbery, "Vassouras", "Centro"),
		incident("AISP 10", model.CategoryLethalViolence, "Valença", "Centro"),
		incident("AISP 28", model.CategoryCargoRobbery, "Volta Redonda", "Aterrado"),
		{AISP: "AISP 28", StrategicIndicator: "Furto"},
		{AISP: "AISP 99", StrategicIndicator: "Roubo de Rua"},
		{AISP: "AISP 10", StrategicIndicator: "  roubo   de   RUA "},
		{AISP: "AISP 10", StrategicIndicator: "Roubo de Rua e Carga"},
	}

	agg := Aggregate(catalog.Units, catalog.Command, records)

	for _, u := range append(agg.Units, agg.Command) {
		sum := 0
		for _, n := range u.Categories {
			sum += n
		}
		assert.Equal(t, u.Total, sum, u.Unit)
	}

	aisp10, ok := agg.Unit("AISP 10")
	require.True(t, ok)
	assert.Equal(t, 3, aisp10.Total)
	assert.Equal(t, 2, aisp10.Categories[model.CategoryStreetRobbery])

	aisp28, _ := agg.Unit("AISP 28")
	assert.Equal(t, 1, aisp28.Total)

	assert.Equal(t, 4, agg.Command.Total)
	assert.Equal(t, 1, agg.Command.Categories[model.CategoryCargoRobbery])

	_, ok = agg.Unit("AISP 99")
	assert.False(t, ok)
}

func TestCompareDeltaAgainstTargets(t *testing.T) {
	records := repeat(130, incident("AISP 10", model.CategoryStreetRobbery, "Vassouras", "Centro"))
	records = append(records, repeat(4, incident("AISP 33", model.CategoryLethalViolence, "Mangaratiba", "Centro"))...)
	agg := Aggregate(catalog.Units, catalog.Command, records)

	targets := []model.Target{
		{Unit: "AISP 10", CrimeType: "roubo de rua", TargetValue: 100},
		{Unit: "AISP 33", CrimeType: "letalidade violenta", TargetValue: 10},
		{Unit: catalog.Command, CrimeType: "roubo de rua", TargetValue: 200},
		{Unit: "AISP 10", CrimeType: "furto", TargetValue: 5},
	}

	rows := Compare(agg, targets)
	require.Len(t, rows, (len(catalog.Units)+1)*len(model.Categories))

	find := func(unit string, c model.CrimeCategory) Comparison {
		for _, r := range rows {
			if r.Unit == unit && r.Category == c {
				return r
			}
		}
		t.Fatalf("no comparison for %s %s", unit, c)
		return Comparison{}
	}

	street := find("AISP 10", model.CategoryStreetRobbery)
	assert.Equal(t, 130, street.Actual)
	assert.Equal(t, 100, street.Target)
	assert.Equal(t, 30, street.Delta)
	assert.True(t, street.OverTarget)

	lethal := find("AISP 33", model.CategoryLethalViolence)
	assert.Equal(t, -6, lethal.Delta)
	assert.False(t, lethal.OverTarget)

	command := find(catalog.Command, model.CategoryStreetRobbery)
	assert.Equal(t, 130, command.Actual)
	assert.Equal(t, -70, command.Delta)

	untargeted := find("AISP 43", model.CategoryCargoRobbery)
	assert.Zero(t, untargeted.Target)
	assert.Zero(t, untargeted.Delta)
	assert.False(t, untargeted.OverTarget)
}
