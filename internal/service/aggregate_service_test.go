package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime-dashboard/internal/model"
)

func TestDashboards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	records := repeat(130, incident("AISP 10", model.CategoryStreetRobbery, "Vassouras", "Centro"))
	records = append(records, repeat(2, incident("AISP 28", model.CategoryCargoRobbery, "Barra Mansa", "Centro"))...)
	require.NoError(t, env.incidents.CreateBatch(ctx, records))

	targets := env.targetService()
	_, err := targets.Upsert(ctx, []TargetInput{{Unit: "AISP 10", Year: 2025, Semester: 1, CrimeType: "roubo de rua", TargetValue: 100}})
	require.NoError(t, err)

	svc := NewAggregateService(env.incidents, targets)

	dash, err := svc.CommandDashboard(ctx, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, 132, dash.Aggregate.Command.Total)

	unit, err := svc.UnitDashboard(ctx, "10", 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "AISP 10", unit.Unit)
	assert.Equal(t, 130, unit.Aggregate.Total)
	assert.Len(t, unit.Peers, 5)
	require.Len(t, unit.HeatMap, 1)
	assert.Equal(t, 130, unit.HeatMap[0].Count)

	var street Comparison
	for _, c := range unit.Comparisons {
		if c.Category == model.CategoryStreetRobbery {
			street = c
		}
	}
	assert.Equal(t, 30, street.Delta)
	assert.True(t, street.OverTarget)

	_, err = svc.UnitDashboard(ctx, "RISP 5", 2025, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CommandDashboard(ctx, 2025, 4)
	assert.ErrorIs(t, err, ErrInvalidInput)

	buckets, err := svc.HeatMap(ctx, "AISP 28")
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Barra Mansa", buckets[0].City)
}
