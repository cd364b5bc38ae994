// Package form fills the CAAI tofes-shaot workbook from aggregated
// logbook statistics.
//
// The template is the official three-sheet workbook. Cells are written
// in place over a copy of the template; merged continuation cells are
// skipped the same way the form's own macros leave them alone, and the
// template's borders and fills are preserved by deriving each written
// cell's style from the one already there.
package form

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/nivasraf/caai-logbook/internal/aggregate"
	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

// Official sheet names in the CAAI template.
const (
	SheetSummary = "סיכום ניסיון תעופתי"
	SheetCPL     = "רישיון טיס מסחרי"
	SheetATPL    = "רישיון טיס תובלה בנתיבי אוויר"
)

// Summary sheet layout. Types occupy ten rows in Table 1 and the
// matching ten rows in Table 2 (instrument time).
const (
	summaryFirstTypeRow = 13
	instFirstTypeRow    = 31
	typeNameCol         = 2
)

// categoryColumns places each group's form total in its summary column.
var categoryColumns = map[types.CategoryCode]int{
	types.CategorySEPiston:       3,
	types.CategorySETurboprop:    4,
	types.CategoryMEPiston:       5,
	types.CategoryMEJetTurboprop: 6,
}

// Role and cross-country buckets of Table 1, by column.
const (
	colDayPIC       = 13
	colDayPICXC     = 14
	colDaySIC       = 15
	colDayStudent   = 16
	colNightPIC     = 17
	colNightPICXC   = 18
	colNightSIC     = 19
	colNightStudent = 20
)

// CPL sheet layout. The single-value experience cells sit in column 3 of
// rows 12 to 18; the three flight lists share rows 27 and down.
const (
	cplPICXCRow       = 12
	cplDualRow        = 13
	cplDualInstRow    = 14
	cplNightLdgRow    = 15
	cplNightRow       = 16
	cplSoloXCRow      = 17
	cplComplexRow     = 18
	cplListFirstRow   = 27
	cplListMaxFlights = 20
	cplSoloXCDateCol  = 8
	cplSoloXCKMCol    = 11
	cplSoloXCRouteCol = 14
)

// ATPL sheet layout.
const (
	atplXCRow    = 13
	atplNightRow = 14
	atplInstRow  = 15
)

// dateLayout is how the form wants dates rendered.
const dateLayout = "02/01/2006"

type styleKey struct {
	base   int
	numFmt string
}

type filler struct {
	f      *excelize.File
	rs     *rules.Ruleset
	merged map[string]map[string]bool
	styles map[styleKey]int
}

// Fill copies the template workbook to outputPath with the aggregation
// result written into all three sheets.
func Fill(rs *rules.Ruleset, res *aggregate.Result, templatePath, outputPath string) error {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to open form template: %w", err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetSummary, SheetCPL, SheetATPL} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			return fmt.Errorf("template is missing sheet %q", sheet)
		}
	}

	fl := &filler{
		f:      f,
		rs:     rs,
		merged: make(map[string]map[string]bool),
		styles: make(map[styleKey]int),
	}
	if err := fl.loadMerged(); err != nil {
		return err
	}

	if err := fl.fillSummary(res); err != nil {
		return fmt.Errorf("failed to fill summary sheet: %w", err)
	}
	if err := fl.fillCPL(res); err != nil {
		return fmt.Errorf("failed to fill CPL sheet: %w", err)
	}
	if err := fl.fillATPL(res); err != nil {
		return fmt.Errorf("failed to fill ATPL sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save filled form: %w", err)
	}
	log.Printf("Form saved: %s", outputPath)
	return nil
}

// formTypes returns the non-simulator types with any logged time, in
// report order, capped to the form's row budget.
func (fl *filler) formTypes(res *aggregate.Result) []string {
	var out []string
	for _, code := range res.RealTypes() {
		if res.Types[code].Total > 0 {
			out = append(out, code)
		}
	}
	if limit := fl.rs.FormTypeRows(); len(out) > limit {
		log.Printf("Warning: %d aircraft types exceed the %d form rows, truncating", len(out), limit)
		out = out[:limit]
	}
	return out
}

func (fl *filler) fillSummary(res *aggregate.Result) error {
	if err := fl.clearRange(SheetSummary, 13, 22, 2, 20); err != nil {
		return err
	}
	if err := fl.clearRange(SheetSummary, 31, 40, 3, 6); err != nil {
		return err
	}

	formTypes := fl.formTypes(res)
	log.Printf("Filling summary sheet: %d aircraft types", len(formTypes))

	// Table 1: one row per type, form total in its group column, role
	// time in the day/night buckets. Zero buckets stay blank.
	for i, code := range formTypes {
		ts := res.Types[code]
		row := summaryFirstTypeRow + i

		if err := fl.setText(SheetSummary, row, typeNameCol, ts.TypeCode); err != nil {
			return err
		}
		if err := fl.setHours(SheetSummary, row, categoryColumns[ts.Category], ts.FormTotal); err != nil {
			return err
		}

		buckets := []struct {
			col int
			val float64
		}{
			{colDayPIC, ts.DayPIC},
			{colDayPICXC, ts.DayPICXC},
			{colDaySIC, ts.DaySIC},
			{colDayStudent, ts.DayStudent},
			{colNightPIC, ts.NightPIC},
			{colNightPICXC, ts.NightPICXC},
			{colNightSIC, ts.NightSIC},
			{colNightStudent, ts.NightStudent},
		}
		for _, b := range buckets {
			if b.val <= 0 {
				continue
			}
			if err := fl.setHours(SheetSummary, row, b.col, b.val); err != nil {
				return err
			}
		}
	}

	// Table 2: aircraft instrument time on the same row order, then
	// simulator device hours credited onto the matching airframe row.
	deviceRows := make(map[string]int, len(formTypes))
	for i, code := range formTypes {
		ts := res.Types[code]
		row := instFirstTypeRow + i
		deviceRows[code] = row

		if ts.InstActual > 0 {
			if err := fl.setHours(SheetSummary, row, 3, ts.InstActual); err != nil {
				return err
			}
		}
		if ts.InstSimAir > 0 {
			if err := fl.setHours(SheetSummary, row, 4, ts.InstSimAir); err != nil {
				return err
			}
		}
	}

	deviceTime := make(map[int]float64)
	for _, code := range res.SimTypes() {
		ts := res.Types[code]
		base := fl.rs.ResolveDeviceType(code)
		row, ok := deviceRows[base]
		if !ok {
			log.Printf("Warning: device %s has no airframe row (resolved to %s), device hours not credited", code, base)
			continue
		}
		deviceTime[row] += ts.InstSimDevice
		log.Printf("  %s -> %s device=%.1f", code, base, ts.InstSimDevice)
	}
	for row, hours := range deviceTime {
		if err := fl.setHours(SheetSummary, row, 5, hours); err != nil {
			return err
		}
	}
	return nil
}

func (fl *filler) fillCPL(res *aggregate.Result) error {
	if err := fl.clearRange(SheetCPL, 12, 18, 3, 6); err != nil {
		return err
	}
	if err := fl.clearRange(SheetCPL, 26, 49, 2, 6); err != nil {
		return err
	}
	for _, col := range []int{cplSoloXCDateCol, cplSoloXCKMCol, cplSoloXCRouteCol} {
		if err := fl.clear(SheetCPL, cplSoloXCRow, col); err != nil {
			return err
		}
	}

	g := res.Grand
	cells := []struct {
		row  int
		val  float64
		name string
	}{
		{cplPICXCRow, g.PICXC, "PIC XC"},
		{cplDualRow, g.Dual, "dual received"},
		{cplDualInstRow, g.DualInst, "dual instrument"},
		{cplNightRow, g.Night, "night hours"},
	}
	for _, c := range cells {
		if err := fl.setHours(SheetCPL, c.row, 3, c.val); err != nil {
			return err
		}
		log.Printf("  CPL row %d %s: %.1f", c.row, c.name, c.val)
	}
	if err := fl.setCount(SheetCPL, cplNightLdgRow, 3, g.NightLandings); err != nil {
		return err
	}
	log.Printf("  CPL row %d night landings: %d", cplNightLdgRow, g.NightLandings)

	if solo := g.LongestSoloXC; solo != nil {
		if err := fl.setHours(SheetCPL, cplSoloXCRow, 3, solo.Hours); err != nil {
			return err
		}
		if !solo.Date.IsZero() {
			if err := fl.setText(SheetCPL, cplSoloXCRow, cplSoloXCDateCol, solo.Date.Format(dateLayout)); err != nil {
				return err
			}
		}
		km := int(math.Round(solo.DistanceNM * types.NMToKM))
		if err := fl.setCount(SheetCPL, cplSoloXCRow, cplSoloXCKMCol, km); err != nil {
			return err
		}
		route := solo.From + "-" + solo.To
		if err := fl.setText(SheetCPL, cplSoloXCRow, cplSoloXCRouteCol, route); err != nil {
			return err
		}
		log.Printf("  CPL row %d solo XC: %.1f hrs, %s, %dkm", cplSoloXCRow, solo.Hours, route, km)
	}

	// Complex or group B/C time: complex airframe hours plus every
	// multi-engine jet and turboprop form total.
	complexBC := g.Complex
	for _, code := range res.RealTypes() {
		ts := res.Types[code]
		if ts.Category == types.CategoryMEJetTurboprop {
			complexBC += ts.FormTotal
		}
	}
	if err := fl.setHours(SheetCPL, cplComplexRow, 3, complexBC); err != nil {
		return err
	}
	log.Printf("  CPL row %d complex/group B+C: %.1f", cplComplexRow, complexBC)

	// Supporting flight lists, oldest first, capped to the form rows.
	inst := sortedByDate(g.InstDualFlights)
	for i, rec := range capFlights(inst, cplListMaxFlights) {
		entry := fmt.Sprintf("%s  %.1f", rec.Date.Format(dateLayout), round1(rec.ActualInst+rec.SimInst))
		if err := fl.setText(SheetCPL, cplListFirstRow+i, 2, entry); err != nil {
			return err
		}
	}

	night := sortedByDate(g.NightPICFlights)
	for i, rec := range capFlights(night, cplListMaxFlights) {
		row := cplListFirstRow + i
		if err := fl.setText(SheetCPL, row, 3, rec.Date.Format(dateLayout)); err != nil {
			return err
		}
		if err := fl.setHours(SheetCPL, row, 4, rec.NightTime); err != nil {
			return err
		}
	}

	complexFlights := sortedByDate(g.ComplexFlights)
	for i, rec := range capFlights(complexFlights, cplListMaxFlights) {
		row := cplListFirstRow + i
		if err := fl.setText(SheetCPL, row, 5, rec.Date.Format(dateLayout)); err != nil {
			return err
		}
		if err := fl.setHours(SheetCPL, row, 6, rec.TotalTime); err != nil {
			return err
		}
	}

	log.Printf("  CPL lists: %d instrument, %d night PIC, %d complex",
		len(inst), len(night), len(complexFlights))
	return nil
}

func (fl *filler) fillATPL(res *aggregate.Result) error {
	g := res.Grand

	if err := fl.setHours(SheetATPL, atplXCRow, 3, g.XCAllRoles); err != nil {
		return err
	}
	if err := fl.setHours(SheetATPL, atplNightRow, 3, g.NightPICXC); err != nil {
		return err
	}
	if err := fl.setHours(SheetATPL, atplInstRow, 3, g.ActualInst+g.SimInstAir); err != nil {
		return err
	}
	log.Printf("  ATPL: XC=%.1f nightPICXC=%.1f instrument=%.1f",
		g.XCAllRoles, g.NightPICXC, g.ActualInst+g.SimInstAir)
	return nil
}

// loadMerged records every merged cell except each range's anchor, so
// writes aimed at continuation cells can be skipped.
func (fl *filler) loadMerged() error {
	for _, sheet := range []string{SheetSummary, SheetCPL, SheetATPL} {
		ranges, err := fl.f.GetMergeCells(sheet)
		if err != nil {
			return fmt.Errorf("failed to read merged cells of %s: %w", sheet, err)
		}
		skip := make(map[string]bool)
		for _, mc := range ranges {
			x1, y1, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
			if err != nil {
				return err
			}
			x2, y2, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
			if err != nil {
				return err
			}
			for x := x1; x <= x2; x++ {
				for y := y1; y <= y2; y++ {
					if x == x1 && y == y1 {
						continue
					}
					cell, err := excelize.CoordinatesToCellName(x, y)
					if err != nil {
						return err
					}
					skip[cell] = true
				}
			}
		}
		fl.merged[sheet] = skip
	}
	return nil
}

func (fl *filler) set(sheet string, row, col int, val interface{}, numFmt string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if fl.merged[sheet][cell] {
		return nil
	}
	if err := fl.f.SetCellValue(sheet, cell, val); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
	}
	styleID, err := fl.cellStyle(sheet, cell, numFmt)
	if err != nil {
		return err
	}
	if err := fl.f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("failed to style %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func (fl *filler) setHours(sheet string, row, col int, val float64) error {
	return fl.set(sheet, row, col, round1(val), "0.0")
}

func (fl *filler) setCount(sheet string, row, col int, val int) error {
	return fl.set(sheet, row, col, val, "0")
}

func (fl *filler) setText(sheet string, row, col int, val string) error {
	return fl.set(sheet, row, col, val, "")
}

func (fl *filler) clear(sheet string, row, col int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if fl.merged[sheet][cell] {
		return nil
	}
	if err := fl.f.SetCellValue(sheet, cell, nil); err != nil {
		return fmt.Errorf("failed to clear %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func (fl *filler) clearRange(sheet string, rowFrom, rowTo, colFrom, colTo int) error {
	for row := rowFrom; row <= rowTo; row++ {
		for col := colFrom; col <= colTo; col++ {
			if err := fl.clear(sheet, row, col); err != nil {
				return err
			}
		}
	}
	return nil
}

// cellStyle derives the written cell's style from whatever the template
// already has there, overriding only the data font, centering, and number
// format. Styles are cached per base style and format.
func (fl *filler) cellStyle(sheet, cell, numFmt string) (int, error) {
	base, err := fl.f.GetCellStyle(sheet, cell)
	if err != nil {
		return 0, fmt.Errorf("failed to read style of %s!%s: %w", sheet, cell, err)
	}
	key := styleKey{base: base, numFmt: numFmt}
	if id, ok := fl.styles[key]; ok {
		return id, nil
	}

	style, err := fl.f.GetStyle(base)
	if err != nil {
		return 0, fmt.Errorf("failed to load style %d: %w", base, err)
	}
	style.Font = &excelize.Font{Family: "Calibri", Size: 9}
	style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	if numFmt != "" {
		fmtCopy := numFmt
		style.CustomNumFmt = &fmtCopy
	}

	id, err := fl.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create cell style: %w", err)
	}
	fl.styles[key] = id
	return id, nil
}

func sortedByDate(recs []types.FlightRecord) []types.FlightRecord {
	out := make([]types.FlightRecord, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func capFlights(recs []types.FlightRecord, n int) []types.FlightRecord {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
