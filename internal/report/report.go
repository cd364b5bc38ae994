// Package report renders the analysis of an aggregation pass as a plain
// text report for the console and the job archive.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nivasraf/caai-logbook/internal/aggregate"
	"github.com/nivasraf/caai-logbook/internal/reconcile"
	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

const divider = "============================================================"

// categoryNames are the display names for the four CAAI groups, in form
// order.
var categoryNames = map[types.CategoryCode]string{
	types.CategorySEPiston:       "Single-engine piston",
	types.CategorySETurboprop:    "Single-engine turboprop",
	types.CategoryMEPiston:       "Multi-engine piston",
	types.CategoryMEJetTurboprop: "Multi-engine jet/turboprop",
}

// Render formats the full analysis report for one aggregation pass.
func Render(rs *rules.Ruleset, res *aggregate.Result, rec *types.ReconciliationReport) string {
	var b strings.Builder
	g := res.Grand

	fmt.Fprintln(&b, divider)
	fmt.Fprintln(&b, "CAAI LOGBOOK ANALYSIS")
	fmt.Fprintln(&b, divider)

	fmt.Fprintln(&b, "Aircraft types:")
	for _, code := range res.RealTypes() {
		ts := res.Types[code]
		line := fmt.Sprintf("  %-12s %s   total=%.1f  form=%.1f  dPIC=%.1f  dSIC=%.1f  dSTD=%.1f  nPIC=%.1f  nSIC=%.1f  nSTD=%.1f",
			ts.TypeCode, rs.GroupLetter(ts.Category),
			ts.Total, ts.FormTotal,
			ts.DayPIC, ts.DaySIC, ts.DayStudent,
			ts.NightPIC, ts.NightSIC, ts.NightStudent)
		if ts.SafetyPilot > 0 {
			line += fmt.Sprintf("  safety=%.1f", ts.SafetyPilot)
		}
		fmt.Fprintln(&b, line)
	}
	for _, code := range res.SimTypes() {
		ts := res.Types[code]
		fmt.Fprintf(&b, "  %-12s SIM  device=%.1f\n", ts.TypeCode, ts.InstSimDevice)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Grand totals:")
	fmt.Fprintf(&b, "  Total aircraft hours:      %.1f\n", g.Total)
	fmt.Fprintf(&b, "  Form total (excl safety):  %.1f\n", g.FormTotal)
	fmt.Fprintf(&b, "  PIC:                       %.1f  (XC %.1f, night %.1f)\n", g.PIC, g.PICXC, g.NightPIC)
	fmt.Fprintf(&b, "  SIC:                       %.1f  (night %.1f)\n", g.SIC, g.NightSIC)
	fmt.Fprintf(&b, "  Student:                   %.1f  (night %.1f)\n", g.Student, g.NightStudent)
	fmt.Fprintf(&b, "  Safety pilot (SE):         %.1f\n", g.SafetyPilotSE)
	fmt.Fprintf(&b, "  Night:                     %.1f  (%d landings)\n", g.Night, g.NightLandings)
	fmt.Fprintf(&b, "  Cross-country all roles:   %.1f\n", g.XCAllRoles)
	fmt.Fprintf(&b, "  Solo:                      %.1f  (XC %.1f)\n", g.Solo, g.SoloXC)
	fmt.Fprintf(&b, "  Instrument:                actual %.1f, hood %.1f, device %.1f\n", g.ActualInst, g.SimInstAir, g.SimDevice)
	fmt.Fprintf(&b, "  Dual received:             %.1f  (instrument %.1f)\n", g.Dual, g.DualInst)
	fmt.Fprintf(&b, "  Multi-engine:              %.1f  (complex %.1f)\n", g.MultiEngine, g.Complex)
	fmt.Fprintf(&b, "  Flights:                   %d  (%d rows skipped)\n", g.Flights, g.Skipped)

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Category rollup:")
	rollup := reconcile.CategoryRollup(res)
	for _, cat := range types.Categories {
		if rollup[cat] == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-28s %s  %.1f\n", categoryNames[cat], rs.GroupLetter(cat), rollup[cat])
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Verification:")
	status := "OK"
	if !rec.SumCheckPass {
		status = "INVESTIGATE"
	}
	fmt.Fprintf(&b, "  Sum check: PIC+SIC+Student = %.1f vs form total = %.1f (diff %.1f) [%s]\n",
		rec.RoleSum, rec.FormTotal, rec.SumCheckDiff, status)
	fmt.Fprintf(&b, "  Grand total with SIC half credit: %.1f\n", rec.CAAIGrandTotal)

	if len(rec.TypeMismatches) == 0 {
		fmt.Fprintln(&b, "  Per-type role sums: OK")
	} else {
		fmt.Fprintf(&b, "  Per-type role sums: %d mismatches\n", len(rec.TypeMismatches))
		for _, m := range rec.TypeMismatches {
			fmt.Fprintf(&b, "    %-12s roles=%.1f vs form=%.1f (diff %.2f)\n", m.TypeCode, m.RoleSum, m.Total, m.Diff)
		}
	}

	if len(rec.CategoryMismatches) == 0 {
		fmt.Fprintln(&b, "  Category rollup: OK")
	} else {
		fmt.Fprintf(&b, "  Category rollup: %d mismatches\n", len(rec.CategoryMismatches))
		for _, m := range rec.CategoryMismatches {
			fmt.Fprintf(&b, "    %-28s rollup=%.1f vs grand=%.1f (diff %.2f)\n",
				categoryNames[m.Category], m.Rollup, m.Grand, m.Diff)
		}
	}

	if solo := rec.LongestSoloXC; solo != nil {
		fmt.Fprintf(&b, "  Longest solo cross-country: %.1f hrs %s %s-%s %.0f km on %s\n",
			solo.Hours, solo.AircraftType, solo.From, solo.To,
			solo.DistanceNM*types.NMToKM, solo.Date.Format("2006-01-02"))
	}

	return b.String()
}

// Write renders the report to w.
func Write(w io.Writer, rs *rules.Ruleset, res *aggregate.Result, rec *types.ReconciliationReport) error {
	_, err := io.WriteString(w, Render(rs, res, rec))
	return err
}
