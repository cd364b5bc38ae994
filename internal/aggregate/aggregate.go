// Package aggregate folds classified flights into per-type statistics and
// grand totals in a single forward pass.
//
// One Aggregator serves exactly one pass: accumulators are created on the
// first flight of each type and never shared or reused. Source order
// matters — the longest-solo selection and the form row cap break ties by
// first occurrence.
package aggregate

import (
	"sort"

	"github.com/nivasraf/caai-logbook/internal/classify"
	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

// Result is the outcome of one aggregation pass.
type Result struct {
	// Types maps normalized type code to its accumulated stats.
	Types map[string]*types.TypeStats
	// Order lists type codes by descending total time, ties broken by
	// first appearance in the input.
	Order []string
	Grand types.GrandTotals
}

// RealTypes returns the non-simulator type codes in report order.
func (r *Result) RealTypes() []string {
	out := make([]string, 0, len(r.Order))
	for _, code := range r.Order {
		if !r.Types[code].Simulator {
			out = append(out, code)
		}
	}
	return out
}

// SimTypes returns the simulator device type codes in report order.
func (r *Result) SimTypes() []string {
	out := make([]string, 0, len(r.Order))
	for _, code := range r.Order {
		if r.Types[code].Simulator {
			out = append(out, code)
		}
	}
	return out
}

// Aggregator accumulates one pass over an ordered flight sequence.
type Aggregator struct {
	rules      *rules.Ruleset
	classifier *classify.Classifier

	stats map[string]*types.TypeStats
	order []string
	grand types.GrandTotals

	// Warnf receives audit warnings (default category assignments,
	// single-engine SIC fall-throughs). Nil disables them.
	Warnf func(format string, args ...any)
}

// New returns an Aggregator for a single pass.
func New(rs *rules.Ruleset, c *classify.Classifier) *Aggregator {
	return &Aggregator{
		rules:      rs,
		classifier: c,
		stats:      make(map[string]*types.TypeStats),
		grand: types.GrandTotals{
			CategoryFormTotals: make(map[types.CategoryCode]float64),
		},
	}
}

// Run is a convenience wrapper: classify and aggregate recs in one pass.
func Run(rs *rules.Ruleset, recs []types.FlightRecord) *Result {
	a := New(rs, classify.New(rs))
	for _, rec := range recs {
		a.Add(rec)
	}
	return a.Result()
}

func (a *Aggregator) warnf(format string, args ...any) {
	if a.Warnf != nil {
		a.Warnf(format, args...)
	}
}

func (a *Aggregator) typeStats(code string, cat types.AircraftCategory, rawType string) *types.TypeStats {
	ts, ok := a.stats[code]
	if !ok {
		ts = &types.TypeStats{
			TypeCode:  code,
			Category:  cat.Code,
			FirstSeen: len(a.order),
		}
		a.stats[code] = ts
		a.order = append(a.order, code)
		if !cat.Simulator && !a.rules.HasCategoryMarker(rawType) {
			a.warnf("Warning: no category marker for type %s, assigned default single-engine piston", code)
		}
	}
	return ts
}

// Add folds one flight record into the pass. Records without an aircraft
// type are separator rows and only bump the skip tally.
func (a *Aggregator) Add(rec types.FlightRecord) {
	if rec.AircraftType == "" {
		a.grand.Skipped++
		return
	}

	cat := a.rules.Classify(rec.AircraftType, rec.Registration)

	// Simulator sessions never reach role classification: they carry
	// device time only, credited back to an aircraft row at form time.
	if cat.Simulator {
		ts := a.typeStats(cat.NormalizedType, cat, rec.AircraftType)
		ts.Simulator = true
		ts.Flights++
		ts.InstSimDevice += rec.TotalTime
		a.grand.SimDevice += rec.TotalTime
		return
	}

	ts := a.typeStats(cat.NormalizedType, cat, rec.AircraftType)
	ts.Flights++
	ts.Total += rec.TotalTime
	a.grand.Flights++

	cls := a.classifier.Classify(rec, cat)
	day := clampPos(cls.DayTime)
	night := clampPos(cls.NightTime)

	// Instrument time counts for every role.
	ts.InstActual += rec.ActualInst
	ts.InstSimAir += rec.SimInst
	a.grand.ActualInst += rec.ActualInst
	a.grand.SimInstAir += rec.SimInst

	ts.Night += night
	ts.NightLandings += rec.NightLandings
	a.grand.Total += rec.TotalTime
	a.grand.Night += night
	a.grand.NightLandings += rec.NightLandings

	if cls.CrossCountry {
		a.grand.XCAllRoles += rec.TotalTime
	}
	if !cat.SingleEngine {
		a.grand.MultiEngine += rec.TotalTime
	}
	if a.rules.IsComplex(cat.NormalizedType) {
		ts.ComplexTime += rec.TotalTime
		a.grand.Complex += rec.TotalTime
		if rec.TotalTime > 0 {
			a.grand.ComplexFlights = append(a.grand.ComplexFlights, rec)
		}
	}

	if rec.SoloTime > 0 && cls.Role != types.RoleStudent && cls.CrossCountry {
		if best := a.grand.LongestSoloXC; best == nil || rec.DistanceNM > best.DistanceNM {
			a.grand.LongestSoloXC = &types.SoloCrossCountry{
				Date:         rec.Date,
				AircraftType: rec.AircraftType,
				From:         rec.From,
				To:           rec.To,
				Hours:        rec.SoloTime,
				DistanceNM:   rec.DistanceNM,
			}
		}
	}

	switch cls.Rule {
	case classify.RuleStudent:
		ts.DayStudent += day
		ts.NightStudent += night
		ts.FormTotal += rec.TotalTime
		ts.DualReceived += rec.TotalTime
		a.grand.Student += rec.TotalTime
		a.grand.Dual += rec.TotalTime
		a.grand.FormTotal += rec.TotalTime
		a.grand.CategoryFormTotals[cat.Code] += rec.TotalTime
		if night > 0 {
			a.grand.NightStudent += night
		}
		if cls.DualInstrument {
			instTime := rec.ActualInst + rec.SimInst
			ts.DualInst += instTime
			a.grand.DualInst += instTime
			a.grand.InstDualFlights = append(a.grand.InstDualFlights, rec)
		}

	case classify.RuleSafetyPilot:
		// Deliberately outside FormTotal: the regulator does not credit
		// safety-pilot time on single-engine aircraft.
		ts.SafetyPilot += rec.TotalTime
		a.grand.SafetyPilotSE += rec.TotalTime

	case classify.RuleSIC:
		ts.DaySIC += day
		ts.NightSIC += night
		ts.FormTotal += rec.TotalTime
		a.grand.SIC += rec.TotalTime
		a.grand.FormTotal += rec.TotalTime
		a.grand.CategoryFormTotals[cat.Code] += rec.TotalTime
		a.grand.NightSIC += night

	case classify.RuleSICSingleEngine:
		a.warnf("Warning: SIC time on single-engine type %s credited as PIC", cat.NormalizedType)
		a.addPIC(ts, rec, cls, cat, day, night, false)

	case classify.RuleSolo:
		a.addPIC(ts, rec, cls, cat, day, night, true)

	default:
		a.addPIC(ts, rec, cls, cat, day, night, false)
	}
}

func (a *Aggregator) addPIC(ts *types.TypeStats, rec types.FlightRecord, cls types.ClassifiedFlight, cat types.AircraftCategory, day, night float64, solo bool) {
	ts.DayPIC += day
	ts.NightPIC += night
	ts.FormTotal += rec.TotalTime
	a.grand.PIC += rec.TotalTime
	a.grand.FormTotal += rec.TotalTime
	a.grand.CategoryFormTotals[cat.Code] += rec.TotalTime
	if solo {
		ts.Solo += rec.TotalTime
		a.grand.Solo += rec.TotalTime
	}
	if cls.CrossCountry {
		ts.DayPICXC += day
		ts.NightPICXC += night
		a.grand.PICXC += rec.TotalTime
		a.grand.XC += rec.TotalTime
		if solo {
			a.grand.SoloXC += rec.TotalTime
		}
	}
	if night > 0 {
		a.grand.NightPIC += night
		if cls.CrossCountry {
			a.grand.NightPICXC += night
		}
		a.grand.NightPICFlights = append(a.grand.NightPICFlights, rec)
	}
}

// Result finalizes the pass: computes the report ordering and returns the
// accumulated stats. The Aggregator must not be reused afterwards.
func (a *Aggregator) Result() *Result {
	order := make([]string, len(a.order))
	copy(order, a.order)
	sort.SliceStable(order, func(i, j int) bool {
		return a.stats[order[i]].Total > a.stats[order[j]].Total
	})
	return &Result{
		Types: a.stats,
		Order: order,
		Grand: a.grand,
	}
}

func clampPos(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
