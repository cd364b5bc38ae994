package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestDetectFormatByExtension(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    Format
		wantErr bool
	}{
		{"xlsx", "logbook.xlsx", FormatExcel, false},
		{"xlsm", "logbook.xlsm", FormatExcel, false},
		{"csv", "logbook.csv", FormatCSV, false},
		{"tsv", "logbook.tsv", FormatTSV, false},
		{"uppercase extension", "LOGBOOK.CSV", FormatCSV, false},
		{"pdf rejected", "logbook.pdf", "", true},
		{"unknown extension", "logbook.dat", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("DetectFormat(%s) expected error but got none", tt.path)
				}
				return
			}
			if err != nil {
				t.Errorf("DetectFormat(%s) unexpected error: %v", tt.path, err)
				return
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDetectFormatSniffsTxt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Format
	}{
		{"logten header", "flight_flightDate\tflight_totalTime\tflight_remarks\n", FormatLogTen},
		{"plain tabs", "Date\tFrom\tTo\tTotal Time\n", FormatTSV},
		{"plain commas", "Date,From,To,Total Time\n", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "logbook.txt")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write temp file: %v", err)
			}
			got, err := DetectFormat(path)
			if err != nil {
				t.Fatalf("DetectFormat() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"iso", "2024-03-05", "2024-03-05", true},
		{"day first slash", "05/03/2024", "2024-03-05", true},
		{"day first unambiguous", "15/03/2024", "2024-03-15", true},
		{"us fallback", "03/15/2024", "2024-03-15", true},
		{"dotted", "05.03.2024", "2024-03-05", true},
		{"dashed day first", "05-03-2024", "2024-03-05", true},
		{"month name", "2 Mar 2024", "2024-03-02", true},
		{"iso with time", "2024-03-05 14:30:00", "2024-03-05", true},
		{"short year", "05/03/24", "2024-03-05", true},
		{"empty", "", "", false},
		{"totals row", "Total", "", false},
		{"whitespace only", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDate(tt.input)
			if ok != tt.wantOK {
				t.Errorf("NormalizeDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
				return
			}
			if !tt.wantOK {
				return
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("NormalizeDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"decimal", "1.5", 1.5},
		{"hours minutes", "1:30", 1.5},
		{"hours minutes quarter", "12:45", 12.75},
		{"sub hour", "0:45", 0.75},
		{"comma decimal", "1,5", 1.5},
		{"rounded to two places", "1.456", 1.46},
		{"zero", "0", 0},
		{"empty", "", 0},
		{"garbage", "n/a", 0},
		{"padded", "  2.3  ", 2.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTime(tt.input); got != tt.want {
				t.Errorf("NormalizeTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"2", 2},
		{"2.0", 2},
		{"", 0},
		{"x", 0},
	}

	for _, tt := range tests {
		if got := NormalizeInt(tt.input); got != tt.want {
			t.Errorf("NormalizeInt(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeDistance(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"27", 27},
		{"27.1", 27.1},
		{"1,013.9", 1013.9},
		{"", 0},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := NormalizeDistance(tt.input); got != tt.want {
			t.Errorf("NormalizeDistance(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDetectColumnsEnglish(t *testing.T) {
	headers := []string{
		"Date", "From", "To", "Registration", "Aircraft Type",
		"Total Time", "PIC", "SIC", "Night", "Cross Country",
		"Actual Instrument", "Simulated Instrument", "Dual Received",
		"Dual Given", "Solo", "Day Landings", "Night Landings",
		"Instructor", "Remarks", "Distance",
	}

	mapping := DetectColumns(headers)
	if len(mapping) != 20 {
		t.Errorf("DetectColumns() mapped %d columns, want 20", len(mapping))
	}
	if missing := MissingRequired(mapping); len(missing) != 0 {
		t.Errorf("MissingRequired() = %v, want none", missing)
	}

	wantIdx := map[Column]int{
		ColDate: 0, ColFrom: 1, ColTo: 2, ColRegistration: 3,
		ColAircraftType: 4, ColTotalTime: 5, ColPIC: 6, ColSIC: 7,
		ColNight: 8, ColCrossCountry: 9, ColActualInst: 10, ColSimInst: 11,
		ColDualReceived: 12, ColDualGiven: 13, ColSolo: 14,
		ColDayLandings: 15, ColNightLandings: 16, ColInstructor: 17,
		ColRemarks: 18, ColDistance: 19,
	}
	for col, want := range wantIdx {
		if got, ok := mapping[col]; !ok || got != want {
			t.Errorf("DetectColumns() %s = %d (found %v), want %d", col, got, ok, want)
		}
	}
}

func TestDetectColumnsHebrew(t *testing.T) {
	headers := []string{
		"תאריך", "ממקום", "למקום", "רישום", "דגם",
		"סה\"כ", "טייס אחראי", "טייס משנה", "לילה", "חוצה ארץ",
		"סולו", "מדריך", "הערות",
	}

	mapping := DetectColumns(headers)
	wantIdx := map[Column]int{
		ColDate: 0, ColFrom: 1, ColTo: 2, ColRegistration: 3,
		ColAircraftType: 4, ColTotalTime: 5, ColPIC: 6, ColSIC: 7,
		ColNight: 8, ColCrossCountry: 9, ColSolo: 10,
		ColInstructor: 11, ColRemarks: 12,
	}
	for col, want := range wantIdx {
		if got, ok := mapping[col]; !ok || got != want {
			t.Errorf("DetectColumns() %s = %d (found %v), want %d", col, got, ok, want)
		}
	}
}

func TestDetectColumnsSubstring(t *testing.T) {
	headers := []string{"Flight Date", "Total Flight Time (hrs)", "Landings (Day)"}

	mapping := DetectColumns(headers)
	if got := mapping[ColDate]; got != 0 {
		t.Errorf("DetectColumns() date = %d, want 0", got)
	}
	if got := mapping[ColTotalTime]; got != 1 {
		t.Errorf("DetectColumns() total_time = %d, want 1", got)
	}
	if got := mapping[ColDayLandings]; got != 2 {
		t.Errorf("DetectColumns() day_landings = %d, want 2", got)
	}
}

func TestDetectColumnsConsumesSourceOnce(t *testing.T) {
	// "PIC" must go to the pic column, leaving "PIC Time" unclaimed rather
	// than double-mapping one source column.
	headers := []string{"PIC", "PIC Time"}

	mapping := DetectColumns(headers)
	if got := mapping[ColPIC]; got != 0 {
		t.Errorf("DetectColumns() pic = %d, want 0", got)
	}
	seen := make(map[int]Column)
	for col, idx := range mapping {
		if prev, dup := seen[idx]; dup {
			t.Errorf("DetectColumns() mapped source column %d to both %s and %s", idx, prev, col)
		}
		seen[idx] = col
	}
}

func TestLoadMapping(t *testing.T) {
	headers := []string{"When", "Ship", "Block", "Command Hours"}
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	content := `columns:
  date: When
  registration: Ship
  total_time: "2"
  pic: Command Hours
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write mapping file: %v", err)
	}

	mapping, err := LoadMapping(path, headers)
	if err != nil {
		t.Fatalf("LoadMapping() failed: %v", err)
	}

	want := map[Column]int{ColDate: 0, ColRegistration: 1, ColTotalTime: 2, ColPIC: 3}
	for col, idx := range want {
		if got := mapping[col]; got != idx {
			t.Errorf("LoadMapping() %s = %d, want %d", col, got, idx)
		}
	}
}

func TestLoadMappingAcceptsAliasKeys(t *testing.T) {
	headers := []string{"Ship"}
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	if err := os.WriteFile(path, []byte("columns:\n  tail number: Ship\n"), 0644); err != nil {
		t.Fatalf("Failed to write mapping file: %v", err)
	}

	mapping, err := LoadMapping(path, headers)
	if err != nil {
		t.Fatalf("LoadMapping() failed: %v", err)
	}
	if got := mapping[ColRegistration]; got != 0 {
		t.Errorf("LoadMapping() registration = %d, want 0", got)
	}
}

func TestLoadMappingErrors(t *testing.T) {
	headers := []string{"Date", "Total"}
	tests := []struct {
		name    string
		content string
	}{
		{"unknown column key", "columns:\n  warp_factor: Date\n"},
		{"header not in source", "columns:\n  date: Flown On\n"},
		{"index out of range", "columns:\n  date: \"9\"\n"},
		{"no columns section", "other: thing\n"},
		{"invalid yaml", "columns: [date\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mapping.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write mapping file: %v", err)
			}
			if _, err := LoadMapping(path, headers); err == nil {
				t.Errorf("LoadMapping() expected error but got none")
			}
		})
	}
}

func TestReadLogbookCSV(t *testing.T) {
	content := strings.Join([]string{
		"Date,From,To,Registration,Aircraft Type,Total Time,PIC,SIC,Night,Cross Country,Actual Instrument,Simulated Instrument,Dual Received,Dual Given,Solo,Day Landings,Night Landings,Instructor,Remarks,Distance",
		"2024-03-05,LLHZ,LLBG,4X-CGK,C172,1.5,1.5,0,0,0,0,0,0,0,0,2,0,,Local flight,24",
		"2024-03-06,LLBG,LCLK,4X-CGK,C172,2:18,2.3,0,0.5,2.3,0,0,0,0,0,1,1,,Island crossing,183.2",
		"Total,,,,,3.8,3.8,0,0.5,2.3,0,0,0,0,0,3,1,,,",
	}, "\n") + "\n"

	path := filepath.Join(t.TempDir(), "logbook.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	records, summary, err := ReadLogbook(path, Options{})
	if err != nil {
		t.Fatalf("ReadLogbook() failed: %v", err)
	}

	if summary.Format != FormatCSV {
		t.Errorf("Summary.Format = %v, want %v", summary.Format, FormatCSV)
	}
	if summary.Imported != 2 {
		t.Errorf("Summary.Imported = %d, want 2", summary.Imported)
	}
	if summary.Skipped != 1 {
		t.Errorf("Summary.Skipped = %d, want 1", summary.Skipped)
	}
	if len(summary.MissingRequired) != 0 {
		t.Errorf("Summary.MissingRequired = %v, want none", summary.MissingRequired)
	}
	if summary.TotalTime != 3.8 {
		t.Errorf("Summary.TotalTime = %v, want 3.8", summary.TotalTime)
	}
	if len(records) != 2 {
		t.Fatalf("ReadLogbook() returned %d records, want 2", len(records))
	}

	first := records[0]
	if !first.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want 2024-03-05", first.Date)
	}
	if first.From != "LLHZ" || first.To != "LLBG" {
		t.Errorf("Route = %s-%s, want LLHZ-LLBG", first.From, first.To)
	}
	if first.AircraftType != "C172" || first.Registration != "4X-CGK" {
		t.Errorf("Aircraft = %s %s, want C172 4X-CGK", first.AircraftType, first.Registration)
	}
	if first.TotalTime != 1.5 || first.PICTime != 1.5 {
		t.Errorf("Times = total %v pic %v, want 1.5 1.5", first.TotalTime, first.PICTime)
	}
	if first.DayLandings != 2 {
		t.Errorf("DayLandings = %d, want 2", first.DayLandings)
	}
	if first.DistanceNM != 24 {
		t.Errorf("DistanceNM = %v, want 24", first.DistanceNM)
	}

	second := records[1]
	if second.TotalTime != 2.3 {
		t.Errorf("H:MM total = %v, want 2.3", second.TotalTime)
	}
	if second.DistanceNM != 183.2 {
		t.Errorf("DistanceNM = %v, want 183.2", second.DistanceNM)
	}
}

func TestReadLogbookExcel(t *testing.T) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(logbookSheet); err != nil {
		t.Fatalf("NewSheet() failed: %v", err)
	}
	// Decoy data on the default sheet; the reader must prefer Flight Log.
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"junk"}); err != nil {
		t.Fatalf("SetSheetRow() failed: %v", err)
	}
	rows := [][]interface{}{
		{"Date", "From", "To", "Registration", "Aircraft Type", "Total Time", "PIC"},
		{"2024-03-05", "LLHZ", "LLBG", "4X-CGK", "C172", "1.5", "1.5"},
		{"2024-03-06", "LLBG", "LLHZ", "4X-CGK", "C172", "0.4", "0.4"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() failed: %v", err)
		}
		if err := f.SetSheetRow(logbookSheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() failed: %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "logbook.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() failed: %v", err)
	}

	records, summary, err := ReadLogbook(path, Options{})
	if err != nil {
		t.Fatalf("ReadLogbook() failed: %v", err)
	}
	if summary.Format != FormatExcel {
		t.Errorf("Summary.Format = %v, want %v", summary.Format, FormatExcel)
	}
	if len(records) != 2 {
		t.Fatalf("ReadLogbook() returned %d records, want 2", len(records))
	}
	if records[0].From != "LLHZ" || records[0].TotalTime != 1.5 {
		t.Errorf("First record = %s %v, want LLHZ 1.5", records[0].From, records[0].TotalTime)
	}
}

func TestReadLogbookLogTen(t *testing.T) {
	content := strings.Join([]string{
		"flight_flightDate\tflight_from\tflight_to\taircraft_aircraftID\taircraftType_type\tflight_totalTime\tflight_pic\tflight_remarks",
		"2024-01-15\tKFPR\tKMLB\tN123AB\tC172\t1.2\t1.2\tPattern work",
		"and more notes",
		"third line",
		"2024-01-16\tKMLB\tKFPR\tN123AB\tC172\t1.1\t1.1\tReturn leg",
	}, "\n") + "\n"

	path := filepath.Join(t.TempDir(), "logten.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	records, summary, err := ReadLogbook(path, Options{})
	if err != nil {
		t.Fatalf("ReadLogbook() failed: %v", err)
	}
	if summary.Format != FormatLogTen {
		t.Errorf("Summary.Format = %v, want %v", summary.Format, FormatLogTen)
	}
	if len(records) != 2 {
		t.Fatalf("ReadLogbook() returned %d records, want 2", len(records))
	}
	if want := "Pattern work and more notes third line"; records[0].Remarks != want {
		t.Errorf("Remarks = %q, want %q", records[0].Remarks, want)
	}
	if records[0].Registration != "N123AB" {
		t.Errorf("Registration = %s, want N123AB", records[0].Registration)
	}
	if records[1].Remarks != "Return leg" {
		t.Errorf("Remarks = %q, want %q", records[1].Remarks, "Return leg")
	}
	if summary.TotalTime != 2.3 {
		t.Errorf("Summary.TotalTime = %v, want 2.3", summary.TotalTime)
	}
}

func TestMappingFileOverridesDetection(t *testing.T) {
	content := "When,Hours\n2024-03-05,1.5\n"
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "logbook.csv")
	if err := os.WriteFile(csvPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	mapPath := filepath.Join(dir, "mapping.yaml")
	if err := os.WriteFile(mapPath, []byte("columns:\n  date: When\n  total_time: Hours\n"), 0644); err != nil {
		t.Fatalf("Failed to write mapping file: %v", err)
	}

	records, summary, err := ReadLogbook(csvPath, Options{MappingFile: mapPath})
	if err != nil {
		t.Fatalf("ReadLogbook() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ReadLogbook() returned %d records, want 1", len(records))
	}
	if records[0].TotalTime != 1.5 {
		t.Errorf("TotalTime = %v, want 1.5", records[0].TotalTime)
	}
	// Everything not named in the mapping file stays unmapped.
	if len(summary.Mapping) != 2 {
		t.Errorf("Summary.Mapping has %d entries, want 2", len(summary.Mapping))
	}
}
