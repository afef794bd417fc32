package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCityVariants(t *testing.T) {
	cases := map[string]string{
		"BARRA DO PIRAÍ":        "Barra do Piraí",
		"barra-do-pirai":        "Barra do Piraí",
		"Valenca":               "Valença",
		"Eng. Paulo de Frontin": "Engenheiro Paulo de Frontin",
		"PARATI":                "Paraty",
		"Volta  Redonda":        "Volta Redonda",
		"voltaredonda":          "Volta Redonda",
	}
	for in, want := range cases {
		got, ok := ResolveCity(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ResolveCity("Niterói")
	assert.False(t, ok)
	_, ok = ResolveCity("N/A")
	assert.False(t, ok)
}

func TestCityInUnitRestrictsToArea(t *testing.T) {
	city, ok := CityInUnit("AISP 28", "Barra Mansa")
	assert.True(t, ok)
	assert.Equal(t, -22.5446, city.Lat)

	_, ok = CityInUnit("AISP 10", "Barra Mansa")
	assert.False(t, ok)
	_, ok = CityInUnit("AISP 99", "Barra Mansa")
	assert.False(t, ok)
}

func TestCanonicalUnit(t *testing.T) {
	for _, in := range []string{"AISP 10", "aisp10", " Aisp  10 ", "10"} {
		got, ok := CanonicalUnit(in)
		assert.True(t, ok, in)
		assert.Equal(t, "AISP 10", got)
	}
	got, ok := CanonicalUnit("risp 5")
	assert.True(t, ok)
	assert.Equal(t, Command, got)

	_, ok = CanonicalUnit("AISP 11")
	assert.False(t, ok)
}
