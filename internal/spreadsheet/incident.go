package spreadsheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"crime-dashboard/internal/model"
	"crime-dashboard/internal/utils"
)

// Column headers of the incident export. Date columns changed from the
// "fato" family to the "registro" family between exports; both are read.
const (
	ColObjectID        = "objectid"
	ColRO              = "RO"
	ColCrimeTitle      = "Título do delito"
	ColOccurrenceTitle = "Título do DO"
	ColIndicator       = "Indicador estratégico"
	ColDisclosurePhase = "Fase de divulgação"
	ColWeekday         = "Dia da semana do fato"
	ColAISP            = "AISP do fato"
	ColRISP            = "RISP do fato"
	ColMunicipality    = "Município do fato (IBGE)"
	ColNeighborhood    = "Bairro"
	ColTimeBracket     = "Faixa horária"
	ColHistory         = "Historico"
)

var (
	dayColumns   = []string{"Dia do registro", "Dia do fato"}
	monthColumns = []string{"Mes do registro", "Mês do registro", "Mês do fato", "Mes do fato"}
	yearColumns  = []string{"Ano do registro", "Ano do fato"}
)

type RejectReason string

const (
	RejectUnknownIndicator RejectReason = "unknown_indicator"
	RejectBadRegion        RejectReason = "bad_region"
)

// Rejection explains why a spreadsheet row was dropped.
type Rejection struct {
	Row    int
	Reason RejectReason
	Value  string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("row %d: %s %q", r.Row, r.Reason, r.Value)
}

// IncidentRecordInput is one incident row as read from the sheet, before
// any validation.
type IncidentRecordInput struct {
	Row             int
	ObjectID        string
	Day             string
	Month           string
	Year            string
	RO              string
	CrimeTitle      string
	OccurrenceTitle string
	Indicator       string
	DisclosurePhase string
	Weekday         string
	AISP            string
	RISP            string
	Municipality    string
	Neighborhood    string
	TimeBracket     string
}

// Time brackets used by the exports, keyed by starting hour.
var timeBrackets = []struct {
	from, to int
	label    string
}{
	{0, 5, "00h às 05h59"},
	{6, 11, "06h às 11h59"},
	{12, 17, "12h às 17h59"},
	{18, 23, "18h às 23h59"},
}

var digitsRe = regexp.MustCompile(`\d+`)

// ValidateIncidentSheet checks that the columns needed to keep any row exist.
func ValidateIncidentSheet(s *Sheet) error {
	var missing []string
	for _, col := range []string{ColRO, ColIndicator, ColRISP, ColAISP} {
		if !s.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	for _, family := range [][]string{dayColumns, monthColumns, yearColumns} {
		if !s.HasColumn(family...) {
			missing = append(missing, family[0])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

func IncidentInputs(s *Sheet) []IncidentRecordInput {
	out := make([]IncidentRecordInput, 0, len(s.Rows))
	for _, row := range s.Rows {
		get := func(keys ...string) string {
			v, _ := row.Get(keys...)
			return v
		}
		out = append(out, IncidentRecordInput{
			Row:             row.Index,
			ObjectID:        get(ColObjectID),
			Day:             get(dayColumns...),
			Month:           get(monthColumns...),
			Year:            get(yearColumns...),
			RO:              get(ColRO),
			CrimeTitle:      get(ColCrimeTitle),
			OccurrenceTitle: get(ColOccurrenceTitle),
			Indicator:       get(ColIndicator),
			DisclosurePhase: get(ColDisclosurePhase),
			Weekday:         get(ColWeekday),
			AISP:            get(ColAISP),
			RISP:            get(ColRISP),
			Municipality:    get(ColMunicipality),
			Neighborhood:    get(ColNeighborhood),
			TimeBracket:     get(ColTimeBracket),
		})
	}
	return out
}

// Normalize turns a raw row into an Incident, or rejects it when the
// strategic indicator is not one of the four categories or the regional
// code carries no number.
func (in IncidentRecordInput) Normalize() (model.Incident, *Rejection) {
	category, ok := model.ParseCategory(in.Indicator)
	if !ok {
		return model.Incident{}, &Rejection{Row: in.Row, Reason: RejectUnknownIndicator, Value: in.Indicator}
	}

	risp, ok := templateCode("RISP", in.RISP)
	if !ok {
		return model.Incident{}, &Rejection{Row: in.Row, Reason: RejectBadRegion, Value: in.RISP}
	}

	aisp, ok := templateCode("AISP", in.AISP)
	if !ok {
		aisp = model.NotAvailable
	}

	day, month, year, registeredOn := normalizeDate(in.Day, in.Month, in.Year)

	objectID, _ := strconv.ParseInt(strings.TrimSpace(in.ObjectID), 10, 64)

	return model.Incident{
		ObjectID:           objectID,
		RegistrationDay:    day,
		RegistrationMonth:  month,
		RegistrationYear:   year,
		RegisteredOn:       registeredOn,
		RO:                 text(in.RO),
		CrimeTitle:         text(in.CrimeTitle),
		OccurrenceTitle:    text(in.OccurrenceTitle),
		StrategicIndicator: category.Label(),
		DisclosurePhase:    text(in.DisclosurePhase),
		Weekday:            text(in.Weekday),
		AISP:               aisp,
		RISP:               risp,
		Municipality:       text(in.Municipality),
		Neighborhood:       text(in.Neighborhood),
		TimeBracket:        timeBracket(in.TimeBracket),
	}, nil
}

func text(raw string) string {
	if v := utils.CollapseSpaces(raw); v != "" {
		return v
	}
	return model.NotAvailable
}

// templateCode extracts the last number in raw and renders "<prefix> <n>".
func templateCode(prefix, raw string) (string, bool) {
	matches := digitsRe.FindAllString(raw, -1)
	if len(matches) == 0 {
		return "", false
	}
	n, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s %d", prefix, n), true
}

func normalizeDate(rawDay, rawMonth, rawYear string) (day, month, year string, on *time.Time) {
	d, dayOK := parsePart(rawDay, 1, 31)
	m, monthOK := parsePart(rawMonth, 1, 12)
	y, yearOK := parsePart(rawYear, 1, 9999)

	day, month, year = model.NotAvailable, model.NotAvailable, model.NotAvailable
	if dayOK {
		day = fmt.Sprintf("%02d", d)
	}
	if monthOK {
		month = fmt.Sprintf("%02d", m)
	}
	if yearOK {
		year = strings.TrimSpace(rawYear)
	}
	if !dayOK || !monthOK || !yearOK {
		return day, month, year, nil
	}

	t, err := time.Parse("2006-01-02", fmt.Sprintf("%04d-%s-%s", y, month, day))
	if err != nil {
		// 31/02 and similar
		return day, month, year, nil
	}
	return day, month, year, &t
}

func parsePart(raw string, lo, hi int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// numeric cells can come back as "5.0"
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		n = int(f)
	}
	if n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func timeBracket(raw string) string {
	raw = utils.CollapseSpaces(raw)
	lead := digitsRe.FindString(raw)
	if lead == "" || !strings.HasPrefix(raw, lead) {
		return model.NotAvailable
	}
	hour, err := strconv.Atoi(lead)
	if err != nil {
		return model.NotAvailable
	}
	for _, b := range timeBrackets {
		if hour >= b.from && hour <= b.to {
			return b.label
		}
	}
	return model.NotAvailable
}
