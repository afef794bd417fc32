package service

import (
	"crime-dashboard/internal/catalog"
	"crime-dashboard/internal/model"
)

type CategoryCounts map[model.CrimeCategory]int

type UnitAggregate struct {
	Unit       string         `json:"unit"`
	Total      int            `json:"total"`
	Categories CategoryCounts `json:"categories"`
}

type CommandAggregate struct {
	Command UnitAggregate   `json:"command"`
	Units   []UnitAggregate `json:"units"`
}

func newUnitAggregate(unit string) UnitAggregate {
	counts := make(CategoryCounts, len(model.Categories))
	for _, c := range model.Categories {
		counts[c] = 0
	}
	return UnitAggregate{Unit: unit, Categories: counts}
}

// Aggregate counts records per unit and category. Every requested unit is
// present even without records, and a record only counts towards a unit
// total when its indicator maps to a known category, so each unit's
// category counts always sum to its total. Records of units outside the
// list are ignored.
func Aggregate(units []string, command string, records []model.Incident) CommandAggregate {
	out := CommandAggregate{
		Command: newUnitAggregate(command),
		Units:   make([]UnitAggregate, len(units)),
	}
	index := make(map[string]int, len(units))
	for i, u := range units {
		out.Units[i] = newUnitAggregate(u)
		index[u] = i
	}

	for _, r := range records {
		i, ok := index[r.AISP]
		if !ok {
			continue
		}
		category, ok := r.Category()
		if !ok {
			continue
		}
		out.Units[i].Categories[category]++
		out.Units[i].Total++
	}

	for _, u := range out.Units {
		out.Command.Total += u.Total
		for c, n := range u.Categories {
			out.Command.Categories[c] += n
		}
	}

	return out
}

func (a CommandAggregate) Unit(name string) (UnitAggregate, bool) {
	if name == a.Command.Unit {
		return a.Command, true
	}
	for _, u := range a.Units {
		if u.Unit == name {
			return u, true
		}
	}
	return UnitAggregate{}, false
}

type Comparison struct {
	Unit          string              `json:"unit"`
	Category      model.CrimeCategory `json:"category"`
	CategoryLabel string              `json:"category_label"`
	Actual        int                 `json:"actual"`
	Target        int                 `json:"target"`
	Delta         int                 `json:"delta"`
	OverTarget    bool                `json:"over_target"`
}

func compareUnit(u UnitAggregate, targets map[string]map[model.CrimeCategory]int) []Comparison {
	rows := make([]Comparison, 0, len(model.Categories))
	for _, c := range model.Categories {
		actual := u.Categories[c]
		target := targets[u.Unit][c]
		delta := actual - target
		rows = append(rows, Comparison{
			Unit:          u.Unit,
			Category:      c,
			CategoryLabel: c.Label(),
			Actual:        actual,
			Target:        target,
			Delta:         delta,
			OverTarget:    delta > 0,
		})
	}
	return rows
}

func indexTargets(targets []model.Target) map[string]map[model.CrimeCategory]int {
	out := make(map[string]map[model.CrimeCategory]int)
	for _, t := range targets {
		category, ok := model.ParseCategory(t.CrimeType)
		if !ok {
			continue
		}
		if out[t.Unit] == nil {
			out[t.Unit] = make(map[model.CrimeCategory]int)
		}
		out[t.Unit][category] = t.TargetValue
	}
	return out
}

// Compare pairs actual counts with targets for the command and every unit.
// A missing target counts as zero.
func Compare(agg CommandAggregate, targets []model.Target) []Comparison {
	index := indexTargets(targets)
	rows := compareUnit(agg.Command, index)
	for _, u := range agg.Units {
		rows = append(rows, compareUnit(u, index)...)
	}
	return rows
}

// CompareUnit is Compare restricted to a single unit.
func CompareUnit(u UnitAggregate, targets []model.Target) []Comparison {
	return compareUnit(u, indexTargets(targets))
}

func commandAggregate(records []model.Incident) CommandAggregate {
	return Aggregate(catalog.Units, catalog.Command, records)
}
