// Package importer reads heterogeneous logbook exports and normalizes
// them into flight records.
//
// Supported sources: Excel workbooks, CSV/TSV files, and LogTen Pro
// tab-delimited exports. Headers are resolved onto the target schema by
// alias detection or an explicit YAML mapping; values are normalized to
// decimal hours, integers, and dates. Rows without a parseable date are
// not flight records and are skipped with a tally.
package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nivasraf/caai-logbook/internal/types"
)

// Format identifies a source file layout.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatExcel  Format = "excel"
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatLogTen Format = "logten"
)

// logbookSheet is the preferred worksheet name in Excel sources.
const logbookSheet = "Flight Log"

// Options control one import.
type Options struct {
	Format      Format // FormatAuto detects from extension and content
	MappingFile string // optional explicit column mapping (YAML)
}

// Summary describes what an import did.
type Summary struct {
	Format          Format         `json:"format"`
	Rows            int            `json:"rows"`
	Imported        int            `json:"imported"`
	Skipped         int            `json:"skipped"`
	TotalTime       float64        `json:"total_time"`
	Mapping         map[Column]int `json:"mapping"`
	MissingRequired []Column       `json:"missing_required,omitempty"`
}

// DetectFormat infers the source format from the extension, sniffing .txt
// files for LogTen field names.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatExcel, nil
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".pdf":
		return "", fmt.Errorf("PDF sources are not supported, export the logbook as xlsx or csv")
	case ".txt":
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		if scanner.Scan() {
			header := scanner.Text()
			if strings.Contains(header, "flight_flightDate") || strings.Contains(header, "flight_totalTime") {
				return FormatLogTen, nil
			}
			if strings.Contains(header, "\t") {
				return FormatTSV, nil
			}
		}
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("cannot determine format of %s, supported: .xlsx, .csv, .tsv, .txt", path)
	}
}

// ReadLogbook imports a logbook file into normalized flight records, in
// source order.
func ReadLogbook(path string, opts Options) ([]types.FlightRecord, *Summary, error) {
	format := opts.Format
	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, nil, err
		}
		format = detected
	}

	var (
		headers []string
		rows    [][]string
		err     error
	)
	switch format {
	case FormatExcel:
		headers, rows, err = readExcel(path)
	case FormatCSV:
		headers, rows, err = readDelimited(path, ',')
	case FormatTSV:
		headers, rows, err = readDelimited(path, '\t')
	case FormatLogTen:
		headers, rows, err = readLogTen(path)
	default:
		return nil, nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Read %s: %d rows, %d columns", format, len(rows), len(headers))

	var mapping map[Column]int
	switch {
	case format == FormatLogTen:
		mapping = logtenMapping(headers)
	case opts.MappingFile != "":
		mapping, err = LoadMapping(opts.MappingFile, headers)
		if err != nil {
			return nil, nil, err
		}
	default:
		mapping = DetectColumns(headers)
	}

	summary := &Summary{
		Format:          format,
		Rows:            len(rows),
		Mapping:         mapping,
		MissingRequired: MissingRequired(mapping),
	}
	for _, col := range summary.MissingRequired {
		log.Printf("Warning: required column %q not found in source headers", col)
	}

	records := make([]types.FlightRecord, 0, len(rows))
	for _, row := range rows {
		rec, ok := assembleRecord(row, mapping)
		if !ok {
			summary.Skipped++
			continue
		}
		records = append(records, rec)
		summary.Imported++
		summary.TotalTime += rec.TotalTime
	}

	log.Printf("Imported %d flights, skipped %d rows, %.1f total hours",
		summary.Imported, summary.Skipped, summary.TotalTime)
	return records, summary, nil
}

// assembleRecord builds one FlightRecord from a source row. Rows without
// a parseable date are not flight records.
func assembleRecord(row []string, mapping map[Column]int) (types.FlightRecord, bool) {
	field := func(col Column) string {
		idx, ok := mapping[col]
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, ok := NormalizeDate(field(ColDate))
	if !ok {
		return types.FlightRecord{}, false
	}

	return types.FlightRecord{
		Date:          date,
		AircraftType:  field(ColAircraftType),
		Registration:  field(ColRegistration),
		From:          field(ColFrom),
		To:            field(ColTo),
		TotalTime:     NormalizeTime(field(ColTotalTime)),
		PICTime:       NormalizeTime(field(ColPIC)),
		SICTime:       NormalizeTime(field(ColSIC)),
		NightTime:     NormalizeTime(field(ColNight)),
		XCTime:        NormalizeTime(field(ColCrossCountry)),
		ActualInst:    NormalizeTime(field(ColActualInst)),
		SimInst:       NormalizeTime(field(ColSimInst)),
		DualReceived:  NormalizeTime(field(ColDualReceived)),
		DualGiven:     NormalizeTime(field(ColDualGiven)),
		SoloTime:      NormalizeTime(field(ColSolo)),
		DistanceNM:    NormalizeDistance(field(ColDistance)),
		DayLandings:   NormalizeInt(field(ColDayLandings)),
		NightLandings: NormalizeInt(field(ColNightLandings)),
		Instructor:    field(ColInstructor),
		Remarks:       field(ColRemarks),
	}, true
}

func readExcel(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := logbookSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("workbook %s is empty", path)
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for _, row := range all[1:] {
		if emptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func readDelimited(path string, comma rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("file %s is empty", path)
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for _, row := range all[1:] {
		if emptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
