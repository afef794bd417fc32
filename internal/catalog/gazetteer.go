package catalog

import (
	"strings"

	"crime-dashboard/internal/utils"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type City struct {
	Name string `json:"name"`
	Point
}

type UnitArea struct {
	Unit   string `json:"unit"`
	Center Point  `json:"center"`
	Zoom   int    `json:"zoom"`
	Cities []City `json:"cities"`
}

var unitAreas = map[string]UnitArea{
	"AISP 10": {
		Unit:   "AISP 10",
		Center: Point{Lat: -22.4039, Lng: -43.6634},
		Zoom:   10,
		Cities: []City{
			{Name: "Barra do Piraí", Point: Point{Lat: -22.4714, Lng: -43.8269}},
			{Name: "Valença", Point: Point{Lat: -22.2445, Lng: -43.7022}},
			{Name: "Rio das Flores", Point: Point{Lat: -22.1692, Lng: -43.5856}},
			{Name: "Piraí", Point: Point{Lat: -22.6276, Lng: -43.8982}},
			{Name: "Vassouras", Point: Point{Lat: -22.4039, Lng: -43.6634}},
			{Name: "Miguel Pereira", Point: Point{Lat: -22.4572, Lng: -43.4803}},
			{Name: "Paty do Alferes", Point: Point{Lat: -22.4309, Lng: -43.4285}},
			{Name: "Mendes", Point: Point{Lat: -22.5245, Lng: -43.7312}},
			{Name: "Engenheiro Paulo de Frontin", Point: Point{Lat: -22.5498, Lng: -43.6827}},
		},
	},
	"AISP 28": {
		Unit:   "AISP 28",
		Center: Point{Lat: -22.5202, Lng: -44.0996},
		Zoom:   11,
		Cities: []City{
			{Name: "Volta Redonda", Point: Point{Lat: -22.5202, Lng: -44.0996}},
			{Name: "Barra Mansa", Point: Point{Lat: -22.5446, Lng: -44.1751}},
			{Name: "Pinheiral", Point: Point{Lat: -22.5172, Lng: -44.0022}},
		},
	},
	"AISP 33": {
		Unit:   "AISP 33",
		Center: Point{Lat: -22.9594, Lng: -44.0409},
		Zoom:   10,
		Cities: []City{
			{Name: "Mangaratiba", Point: Point{Lat: -22.9594, Lng: -44.0409}},
			{Name: "Angra dos Reis", Point: Point{Lat: -23.0067, Lng: -44.3181}},
			{Name: "Rio Claro", Point: Point{Lat: -22.7205, Lng: -44.1419}},
		},
	},
	"AISP 37": {
		Unit:   "AISP 37",
		Center: Point{Lat: -22.4705, Lng: -44.4509},
		Zoom:   10,
		Cities: []City{
			{Name: "Resende", Point: Point{Lat: -22.4705, Lng: -44.4509}},
			{Name: "Itatiaia", Point: Point{Lat: -22.4897, Lng: -44.5634}},
			{Name: "Porto Real", Point: Point{Lat: -22.4175, Lng: -44.2873}},
			{Name: "Quatis", Point: Point{Lat: -22.4043, Lng: -44.2597}},
		},
	},
	"AISP 43": {
		Unit:   "AISP 43",
		Center: Point{Lat: -23.2178, Lng: -44.7131},
		Zoom:   11,
		Cities: []City{
			{Name: "Paraty", Point: Point{Lat: -23.2178, Lng: -44.7131}},
		},
	},
}

// Spellings seen in the spreadsheets that do not fold to the canonical name.
var extraAliases = map[string]string{
	"parati":                "Paraty",
	"eng paulo de frontin":  "Engenheiro Paulo de Frontin",
	"engo paulo de frontin": "Engenheiro Paulo de Frontin",
	"paulo de frontin":      "Engenheiro Paulo de Frontin",
	"valenca rj":            "Valença",
	"pati do alferes":       "Paty do Alferes",
}

var cityAliases = buildAliases()

func buildAliases() map[string]string {
	aliases := make(map[string]string)
	for _, area := range unitAreas {
		for _, city := range area.Cities {
			key := utils.NormalizeMunicipality(city.Name)
			aliases[key] = city.Name
			// "rio-das-flores" folds to "riodasflores"
			aliases[strings.ReplaceAll(key, " ", "")] = city.Name
		}
	}
	for k, v := range extraAliases {
		aliases[k] = v
	}
	return aliases
}

// AreaOf returns the fixed gazetteer entry for a unit.
func AreaOf(unit string) (UnitArea, bool) {
	area, ok := unitAreas[unit]
	return area, ok
}

// ResolveCity maps free-text municipality names to a canonical city name.
func ResolveCity(municipality string) (string, bool) {
	key := utils.NormalizeMunicipality(municipality)
	if key == "" {
		return "", false
	}
	if city, ok := cityAliases[key]; ok {
		return city, true
	}
	city, ok := cityAliases[strings.ReplaceAll(key, " ", "")]
	return city, ok
}

// CityInUnit resolves municipality text to a city of the given unit's area.
func CityInUnit(unit, municipality string) (City, bool) {
	name, ok := ResolveCity(municipality)
	if !ok {
		return City{}, false
	}
	area, ok := unitAreas[unit]
	if !ok {
		return City{}, false
	}
	for _, c := range area.Cities {
		if c.Name == name {
			return c, true
		}
	}
	return City{}, false
}
