package importer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Column names the importer resolves source headers onto. This is the one
// fixed target schema; there is no generic mapping layer behind it.
type Column string

const (
	ColDate          Column = "date"
	ColFrom          Column = "from"
	ColTo            Column = "to"
	ColRegistration  Column = "registration"
	ColAircraftType  Column = "aircraft_type"
	ColTotalTime     Column = "total_time"
	ColPIC           Column = "pic"
	ColSIC           Column = "sic"
	ColNight         Column = "night"
	ColCrossCountry  Column = "cross_country"
	ColActualInst    Column = "actual_instrument"
	ColSimInst       Column = "simulated_instrument"
	ColDualReceived  Column = "dual_received"
	ColDualGiven     Column = "dual_given"
	ColSolo          Column = "solo"
	ColDayLandings   Column = "day_landings"
	ColNightLandings Column = "night_landings"
	ColInstructor    Column = "instructor"
	ColRemarks       Column = "remarks"
	ColDistance      Column = "distance"
)

// columnAliases maps each target column to known source header spellings
// (ForeFlight, Safelog, LogTen sheets, manual spreadsheets, Hebrew
// logbooks). Order matters twice: columns are resolved top to bottom, and
// within a column the first matching alias wins, so specific aliases come
// before generic ones.
var columnAliases = []struct {
	col     Column
	aliases []string
}{
	{ColDate, []string{
		"date", "flight date", "flt date", "flight_date",
		"dep date", "departure date",
		"תאריך",
	}},
	{ColFrom, []string{
		"from", "departure", "dep", "origin", "route from",
		"dep airport", "departure airport", "depart",
		"מ-", "ממקום",
	}},
	{ColTo, []string{
		"to", "arrival", "arr", "dest", "destination", "route to",
		"arr airport", "arrival airport",
		"ל-", "למקום",
	}},
	{ColRegistration, []string{
		"registration", "reg", "tail", "tail number", "tail no",
		"aircraft id", "ident", "aircraft ident", "a/c reg",
		"tail #", "n-number",
		"רישום", "סימן קריאה",
	}},
	{ColAircraftType, []string{
		"aircraft type", "type", "type code", "a/c type",
		"make/model", "aircraft", "ac type", "airplane type",
		"דגם כלי טיס", "דגם", "סוג מטוס",
	}},
	{ColTotalTime, []string{
		"total time", "total", "total flight time", "duration",
		"flight time", "block time", "total duration", "ttl time",
		"total hrs", "flight hours",
		"סה\"כ זמן", "זמן טיסה", "סה\"כ",
	}},
	{ColPIC, []string{
		"pic", "pilot in command", "p1", "pic time",
		"pic hours", "command",
		"טייס אחראי", "מפקד",
	}},
	{ColSIC, []string{
		"sic", "second in command", "co-pilot", "copilot",
		"p2", "sic time", "sic hours", "first officer",
		"טייס משנה",
	}},
	{ColNight, []string{
		"night", "night time", "night hours", "nite",
		"לילה",
	}},
	{ColCrossCountry, []string{
		"cross country", "xc", "x-country", "cc",
		"cross-country", "xcountry", "xc time",
		"חוצה ארץ",
	}},
	{ColActualInst, []string{
		"actual instrument", "actual inst", "actual ifr",
		"act inst", "actual imc", "imc",
		"מכשירים בפועל",
	}},
	{ColSimInst, []string{
		"simulated instrument", "sim inst", "hood",
		"sim ifr", "simulated inst", "sim instrument",
		"מכשירים מדומה",
	}},
	{ColDualReceived, []string{
		"dual received", "dual recv", "dual",
		"instruction received", "dual rcvd", "training received",
		"הדרכה שהתקבלה",
	}},
	{ColDualGiven, []string{
		"dual given", "instruction given", "cfi time",
		"instructor time", "dual gvn", "training given",
		"הדרכה שניתנה",
	}},
	{ColSolo, []string{
		"solo", "solo time", "solo hours",
		"סולו",
	}},
	{ColDayLandings, []string{
		"day landings", "day ldg", "ldg day",
		"day land", "landings day", "day ldgs",
		"נחיתות יום",
	}},
	{ColNightLandings, []string{
		"night landings", "night ldg", "ldg night",
		"night land", "landings night", "night ldgs",
		"נחיתות לילה",
	}},
	{ColInstructor, []string{
		"instructor", "cfi name", "instructor name",
		"flight instructor",
		"מדריך",
	}},
	{ColRemarks, []string{
		"remarks", "comments", "notes", "remark",
		"הערות",
	}},
	{ColDistance, []string{
		"distance", "distance (nm)", "dist", "nm",
		"distance nm", "nautical miles",
		"מרחק",
	}},
}

// requiredColumns must resolve for the CAAI totals to be complete.
var requiredColumns = []Column{
	ColDate, ColFrom, ColTo, ColRegistration, ColAircraftType,
	ColTotalTime, ColPIC, ColSIC, ColNight, ColCrossCountry,
	ColActualInst, ColSimInst, ColDualReceived, ColDualGiven,
	ColSolo, ColDayLandings, ColNightLandings, ColInstructor, ColRemarks,
}

// normalizeHeader lowercases and strips everything except letters, digits,
// underscores and Hebrew characters, collapsing runs of the rest to single
// spaces.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	var b strings.Builder
	for _, r := range h {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case r >= 0x0590 && r <= 0x05FF:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DetectColumns resolves source headers onto target columns.
//
// Two passes: exact normalized matches first, then substring matches for
// whatever is still unmapped (aliases shorter than three characters are
// excluded from substring matching). A source column is consumed by the
// first target that claims it.
func DetectColumns(headers []string) map[Column]int {
	mapping := make(map[Column]int)
	used := make(map[int]bool)

	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	for _, entry := range columnAliases {
		for _, alias := range entry.aliases {
			normAlias := normalizeHeader(alias)
			for i, h := range normalized {
				if used[i] || h == "" {
					continue
				}
				if h == normAlias {
					mapping[entry.col] = i
					used[i] = true
					break
				}
			}
			if _, ok := mapping[entry.col]; ok {
				break
			}
		}
	}

	for _, entry := range columnAliases {
		if _, ok := mapping[entry.col]; ok {
			continue
		}
		for _, alias := range entry.aliases {
			normAlias := normalizeHeader(alias)
			if len([]rune(normAlias)) < 3 {
				continue
			}
			for i, h := range normalized {
				if used[i] || h == "" {
					continue
				}
				if strings.Contains(h, normAlias) || strings.Contains(normAlias, h) {
					mapping[entry.col] = i
					used[i] = true
					break
				}
			}
			if _, ok := mapping[entry.col]; ok {
				break
			}
		}
	}

	return mapping
}

// MissingRequired returns the required columns absent from a mapping, in
// the fixed required order.
func MissingRequired(mapping map[Column]int) []Column {
	var missing []Column
	for _, col := range requiredColumns {
		if _, ok := mapping[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

type mappingFile struct {
	Columns map[string]string `yaml:"columns"`
}

// LoadMapping reads an explicit column mapping from a YAML file:
//
//	columns:
//	  date: Flight Date
//	  total_time: Block Hours
//	  pic: "7"          # 0-based source index also accepted
//
// Keys are target column names (aliases accepted); values are source
// header names or 0-based indices.
func LoadMapping(path string, headers []string) (map[Column]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column mapping: %w", err)
	}
	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse column mapping: %w", err)
	}
	if len(mf.Columns) == 0 {
		return nil, fmt.Errorf("column mapping %s has no columns section", path)
	}

	normalizedHeaders := make([]string, len(headers))
	for i, h := range headers {
		normalizedHeaders[i] = normalizeHeader(h)
	}

	mapping := make(map[Column]int)
	for key, val := range mf.Columns {
		col, ok := resolveColumnName(key)
		if !ok {
			return nil, fmt.Errorf("column mapping %s: unknown column %q", path, key)
		}

		if idx, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			if idx < 0 || idx >= len(headers) {
				return nil, fmt.Errorf("column mapping %s: %q index %d out of range", path, key, idx)
			}
			mapping[col] = idx
			continue
		}

		normVal := normalizeHeader(val)
		found := -1
		for i, h := range normalizedHeaders {
			if h == normVal {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("column mapping %s: header %q not found in source", path, val)
		}
		mapping[col] = found
	}
	return mapping, nil
}

// resolveColumnName matches a mapping-file key against canonical column
// names first, then against the alias table.
func resolveColumnName(name string) (Column, bool) {
	norm := normalizeHeader(name)
	for _, entry := range columnAliases {
		if normalizeHeader(string(entry.col)) == norm {
			return entry.col, true
		}
	}
	for _, entry := range columnAliases {
		for _, alias := range entry.aliases {
			if normalizeHeader(alias) == norm {
				return entry.col, true
			}
		}
	}
	return "", false
}
