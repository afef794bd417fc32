package model

import "strings"

type CrimeCategory string

const (
	CategoryLethalViolence CrimeCategory = "letalidade_violenta"
	CategoryVehicleRobbery CrimeCategory = "roubo_de_veiculo"
	CategoryStreetRobbery  CrimeCategory = "roubo_de_rua"
	CategoryCargoRobbery   CrimeCategory = "roubo_de_carga"
)

// Categories lists the strategic indicators in display order.
var Categories = []CrimeCategory{
	CategoryLethalViolence,
	CategoryVehicleRobbery,
	CategoryStreetRobbery,
	CategoryCargoRobbery,
}

var categoryLabels = map[CrimeCategory]string{
	CategoryLethalViolence: "Letalidade Violenta",
	CategoryVehicleRobbery: "Roubo de Veículo",
	CategoryStreetRobbery:  "Roubo de Rua",
	CategoryCargoRobbery:   "Roubo de Carga",
}

// Label is the strategic indicator text as it appears in the spreadsheets.
func (c CrimeCategory) Label() string {
	return categoryLabels[c]
}

// TargetKey is the crime_type value used by the targets table.
func (c CrimeCategory) TargetKey() string {
	return strings.ToLower(categoryLabels[c])
}

func (c CrimeCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory matches raw indicator text against the four labels.
// Matching is case-insensitive and exact after whitespace is collapsed;
// the category key itself is accepted too.
func ParseCategory(raw string) (CrimeCategory, bool) {
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return "", false
	}
	for _, c := range Categories {
		if strings.EqualFold(text, categoryLabels[c]) || strings.EqualFold(text, string(c)) {
			return c, true
		}
	}
	return "", false
}
