package db

import "crime-dashboard/internal/config"

// TableSet names the tables of one data scope. Staging uses a parallel set
// with a "_test" suffix so imports can be rehearsed without touching
// production rows.
type TableSet struct {
	Incidents   string
	Targets     string
	DailyCounts string
	History     string
}

func TablesFor(scope config.DataScope) TableSet {
	suffix := ""
	if scope == config.DataScopeStaging {
		suffix = "_test"
	}
	return TableSet{
		Incidents:   "crimes" + suffix,
		Targets:     "targets" + suffix,
		DailyCounts: "crime_timeseries" + suffix,
		History:     "crime_history" + suffix,
	}
}
