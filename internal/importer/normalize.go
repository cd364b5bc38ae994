package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order. Day-first layouts come before the US
// month-first one: ambiguous dates resolve to the Israeli/European
// convention, and the US layout only catches what day-first rejects.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"01/02/2006",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	"02/01/06",
	"1/2/06",
}

var hhmmRe = regexp.MustCompile(`^(\d+):(\d{1,2})$`)

// NormalizeDate parses a date in any of the accepted layouts. The zero
// time and false mean the value is not a date.
func NormalizeDate(val string) (time.Time, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTime converts a logged duration to decimal hours rounded to two
// places. Accepts H:MM, decimal strings, and comma decimals ("1,5").
// Anything unparseable, and zero itself, becomes 0.
func NormalizeTime(val string) float64 {
	s := strings.TrimSpace(val)
	if s == "" || s == "0" {
		return 0
	}

	if m := hhmmRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return round2(float64(h) + float64(mins)/60)
	}

	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return round2(f)
}

// NormalizeInt converts a count value (landings, holds) to an integer,
// tolerating float renderings like "2.0". Unparseable values become 0.
func NormalizeInt(val string) int {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// NormalizeDistance parses a distance value, stripping thousands commas.
func NormalizeDistance(val string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
