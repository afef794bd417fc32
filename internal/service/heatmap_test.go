package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime-dashboard/internal/model"
)

func TestBucketRadius(t *testing.T) {
	assert.Equal(t, 600.0, BucketRadius(1))
	assert.Equal(t, 1500.0, BucketRadius(4))
	assert.Equal(t, 3000.0, BucketRadius(9))
	assert.Equal(t, 3000.0, BucketRadius(250))
}

func TestBuildHeatMap(t *testing.T) {
	records := []model.Incident{
		incident("AISP 10", model.CategoryStreetRobbery, "Vassouras", "Centro"),
		incident("AISP 10", model.CategoryStreetRobbery, "VASSOURAS", "Andrade Pinto"),
		incident("AISP 10", model.CategoryStreetRobbery, " vassouras ", "Centro"),
		incident("AISP 10", model.CategoryLethalViolence, "Vassouras", model.NotAvailable),
		incident("AISP 10", model.CategoryVehicleRobbery, "Valenca", "Benfica"),
		incident("AISP 10", model.CategoryVehicleRobbery, "Volta Redonda", "Aterrado"),
		incident("AISP 28", model.CategoryVehicleRobbery, "Vassouras", "Centro"),
		{AISP: "AISP 10", StrategicIndicator: "Furto", Municipality: "Vassouras"},
	}

	buckets := BuildHeatMap("AISP 10", records)
	require.Len(t, buckets, 3)

	valenca := buckets[0]
	assert.Equal(t, "Valença", valenca.City)
	assert.Equal(t, model.CategoryVehicleRobbery, valenca.Category)
	assert.Equal(t, 1, valenca.Count)
	assert.Equal(t, []string{"Benfica"}, valenca.Neighborhoods)

	lethal := buckets[1]
	assert.Equal(t, "Vassouras", lethal.City)
	assert.Equal(t, model.CategoryLethalViolence, lethal.Category)
	assert.Empty(t, lethal.Neighborhoods)

	street := buckets[2]
	assert.Equal(t, "Vassouras", street.City)
	assert.Equal(t, model.CategoryStreetRobbery, street.Category)
	assert.Equal(t, 3, street.Count)
	assert.Equal(t, []string{"Andrade Pinto", "Centro"}, street.Neighborhoods)
	assert.Equal(t, -22.4039, street.Lat)
	assert.Equal(t, -43.6634, street.Lng)
	assert.Equal(t, 1200.0, street.Radius)
	assert.NotEqual(t, street.ID, lethal.ID)

	total := 0
	for _, b := range buckets {
		assert.Positive(t, b.Count)
		total += b.Count
	}
	assert.Equal(t, 5, total)
}

func TestBuildHeatMapUnknownUnit(t *testing.T) {
	assert.Empty(t, BuildHeatMap("AISP 99", nil))
}
