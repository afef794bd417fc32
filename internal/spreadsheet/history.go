package spreadsheet

import (
	"fmt"
	"strings"

	"crime-dashboard/internal/utils"
)

// HistoryRow is one line of the RO/Historico import.
type HistoryRow struct {
	Row  int
	RO   string
	Text string
}

func (h HistoryRow) Blank() bool {
	return h.RO == "" || h.Text == ""
}

// HistoryRows reads a sheet that must carry exactly the RO and Historico
// columns.
func HistoryRows(s *Sheet) ([]HistoryRow, error) {
	var named []string
	for _, h := range s.Headers {
		if h != "" {
			named = append(named, h)
		}
	}
	if len(named) != 2 || !s.HasColumn(ColRO) || !s.HasColumn(ColHistory) {
		return nil, fmt.Errorf("%w: expected exactly %s, %s; got %s",
			ErrMissingColumns, ColRO, ColHistory, strings.Join(named, ", "))
	}

	out := make([]HistoryRow, 0, len(s.Rows))
	for _, row := range s.Rows {
		ro, _ := row.Get(ColRO)
		body, _ := row.Get(ColHistory)
		out = append(out, HistoryRow{
			Row:  row.Index,
			RO:   utils.CollapseSpaces(ro),
			Text: strings.TrimSpace(body),
		})
	}
	return out, nil
}
