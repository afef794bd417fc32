package catalog

import (
	"strings"

	"crime-dashboard/internal/model"
	"crime-dashboard/internal/utils"
)

// Command is the regional command that groups the units below.
const Command = "RISP 5"

// Units are the AISPs under Command, in display order.
var Units = []string{"AISP 10", "AISP 28", "AISP 33", "AISP 37", "AISP 43"}

// TargetUnits are the units that carry targets: every AISP plus the command.
func TargetUnits() []string {
	out := make([]string, 0, len(Units)+1)
	out = append(out, Units...)
	return append(out, Command)
}

func IsUnit(unit string) bool {
	for _, u := range Units {
		if u == unit {
			return true
		}
	}
	return false
}

func IsTargetUnit(unit string) bool {
	return unit == Command || IsUnit(unit)
}

// CanonicalUnit accepts "aisp 10", "AISP10" or "10" and returns "AISP 10".
func CanonicalUnit(raw string) (string, bool) {
	compact := strings.ToUpper(strings.ReplaceAll(utils.CollapseSpaces(raw), " ", ""))
	for _, u := range TargetUnits() {
		if compact == strings.ReplaceAll(u, " ", "") {
			return u, true
		}
	}
	for _, u := range Units {
		if compact == strings.TrimPrefix(strings.ReplaceAll(u, " ", ""), "AISP") {
			return u, true
		}
	}
	return "", false
}

// RegionOf is the regional code of a unit; all units belong to Command.
func RegionOf(unit string) string {
	if IsTargetUnit(unit) {
		return Command
	}
	return ""
}

func CategoryIndex(c model.CrimeCategory) int {
	for i, cat := range model.Categories {
		if cat == c {
			return i
		}
	}
	return len(model.Categories)
}
