package importer

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// logtenFields maps LogTen Pro export field names onto the target schema.
var logtenFields = map[string]Column{
	"flight_flightDate":             ColDate,
	"flight_from":                   ColFrom,
	"flight_to":                     ColTo,
	"aircraft_aircraftID":           ColRegistration,
	"aircraftType_type":             ColAircraftType,
	"flight_totalTime":              ColTotalTime,
	"flight_pic":                    ColPIC,
	"flight_sic":                    ColSIC,
	"flight_night":                  ColNight,
	"flight_crossCountry":           ColCrossCountry,
	"flight_actualInstrument":       ColActualInst,
	"flight_simulatedInstrument":    ColSimInst,
	"flight_dualReceived":           ColDualReceived,
	"flight_dualGiven":              ColDualGiven,
	"flight_solo":                   ColSolo,
	"flight_dayLandings":            ColDayLandings,
	"flight_nightLandings":          ColNightLandings,
	"flight_selectedCrewInstructor": ColInstructor,
	"flight_distance":               ColDistance,
	"flight_remarks":                ColRemarks,
}

// logtenDateRe matches the ISO date that opens every LogTen data row.
var logtenDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// readLogTen reads a LogTen Pro tab-delimited export. Remarks may span
// physical lines; continuation lines are folded back into the row they
// belong to before the row is split into fields.
func readLogTen(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, nil, fmt.Errorf("file %s is empty", path)
	}
	headers := strings.Split(scanner.Text(), "\t")
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	var logical []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		first, _, _ := strings.Cut(line, "\t")
		if logtenDateRe.MatchString(first) || len(logical) == 0 {
			logical = append(logical, line)
			continue
		}
		// Continuation of the previous row's remarks.
		logical[len(logical)-1] += " " + strings.TrimSpace(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rows := make([][]string, 0, len(logical))
	for _, line := range logical {
		rows = append(rows, strings.Split(line, "\t"))
	}
	return headers, rows, nil
}

// logtenMapping resolves LogTen headers directly, no alias detection.
func logtenMapping(headers []string) map[Column]int {
	mapping := make(map[Column]int)
	for i, h := range headers {
		col, ok := logtenFields[h]
		if !ok {
			continue
		}
		if _, seen := mapping[col]; seen {
			continue
		}
		mapping[col] = i
	}
	return mapping
}
