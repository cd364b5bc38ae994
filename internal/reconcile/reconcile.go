// Package reconcile cross-checks an aggregation pass against the
// arithmetic identities the CAAI form must satisfy.
//
// None of the checks fail hard: real logbooks violate these identities in
// small ways all the time, and the operator needs the numbers, not a stack
// trace. Every deviation beyond tolerance is reported for inspection.
package reconcile

import (
	"math"

	"github.com/nivasraf/caai-logbook/internal/aggregate"
	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

// rollupEpsilon bounds float drift on the category identity, which is a
// sum of identical terms along two paths and must otherwise match exactly.
const rollupEpsilon = 1e-6

// Reconcile verifies one finished pass and computes the half-credit grand
// total. The result is purely informational.
func Reconcile(rs *rules.Ruleset, res *aggregate.Result) types.ReconciliationReport {
	g := res.Grand

	roleSum := g.PIC + g.SIC + g.Student
	diff := math.Abs(g.FormTotal - roleSum)

	rep := types.ReconciliationReport{
		FormTotal:      g.FormTotal,
		RoleSum:        roleSum,
		SumCheckDiff:   diff,
		SumCheckPass:   diff < rs.SumCheckEpsilon(),
		CAAIGrandTotal: g.PIC + g.SIC/rs.SICCreditDivisor() + g.Student,
		LongestSoloXC:  g.LongestSoloXC,
	}

	// Per-type: the six role buckets must add back up to the type's form
	// total. A gap means a flight fell through the chain unaccounted or
	// was double-counted.
	for _, code := range res.RealTypes() {
		ts := res.Types[code]
		sum := ts.DayPIC + ts.DaySIC + ts.DayStudent +
			ts.NightPIC + ts.NightSIC + ts.NightStudent
		if d := math.Abs(ts.FormTotal - sum); d >= rs.RoleCheckEpsilon() {
			rep.TypeMismatches = append(rep.TypeMismatches, types.TypeMismatch{
				TypeCode: code,
				RoleSum:  sum,
				Total:    ts.FormTotal,
				Diff:     d,
			})
		}
	}

	// Per-category: rolling up the types of each category must reproduce
	// the allocation the aggregator tracked independently per flight.
	rollup := make(map[types.CategoryCode]float64)
	for _, code := range res.RealTypes() {
		ts := res.Types[code]
		rollup[ts.Category] += ts.FormTotal
	}
	for _, cat := range types.Categories {
		grandAlloc := g.CategoryFormTotals[cat]
		if d := math.Abs(rollup[cat] - grandAlloc); d > rollupEpsilon {
			rep.CategoryMismatches = append(rep.CategoryMismatches, types.CategoryMismatch{
				Category: cat,
				Rollup:   rollup[cat],
				Grand:    grandAlloc,
				Diff:     d,
			})
		}
	}

	return rep
}

// CategoryRollup sums each category's constituent type form totals, in the
// fixed category order used by the form. Exposed for report rendering.
func CategoryRollup(res *aggregate.Result) map[types.CategoryCode]float64 {
	rollup := make(map[types.CategoryCode]float64)
	for _, code := range res.RealTypes() {
		ts := res.Types[code]
		rollup[ts.Category] += ts.FormTotal
	}
	return rollup
}
