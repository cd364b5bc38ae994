// Package classify assigns a duty role to each flight record.
//
// The role chain is an explicit ordered list of (predicate, role) pairs
// evaluated first-match-wins. The order encodes regulatory precedence: an
// instructional flight is always Student time no matter what else the row
// reports, and SIC only exists on multi-engine aircraft. Reordering the
// chain changes the law being applied, so the order is part of the
// contract and covered by tests.
package classify

import (
	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

// Rule names, stable identifiers for audit output and tests.
const (
	RuleStudent         = "student"
	RuleSafetyPilot     = "safety-pilot"
	RuleSIC             = "sic"
	RuleSICSingleEngine = "sic-single-engine"
	RuleSolo            = "solo"
	RuleDefault         = "default"
)

// Signals are the per-flight facts the chain branches on.
type Signals struct {
	HasInstructor bool
	SafetyPilot   bool
	SICReported   bool
	Solo          bool
	SingleEngine  bool
}

// Rule is one entry of the priority chain.
type Rule struct {
	Name  string
	Role  types.Role
	Match func(Signals) bool
}

// Classifier applies the role chain using a fixed ruleset.
type Classifier struct {
	rules *rules.Ruleset
	chain []Rule
}

// New returns a Classifier over the given ruleset.
func New(rs *rules.Ruleset) *Classifier {
	return &Classifier{
		rules: rs,
		chain: []Rule{
			{
				Name: RuleStudent,
				Role: types.RoleStudent,
				Match: func(s Signals) bool {
					return s.HasInstructor
				},
			},
			{
				Name: RuleSafetyPilot,
				Role: types.RoleSafetyPilot,
				Match: func(s Signals) bool {
					return s.SafetyPilot && s.SingleEngine
				},
			},
			{
				Name: RuleSIC,
				Role: types.RoleSIC,
				Match: func(s Signals) bool {
					return s.SICReported && !s.SingleEngine
				},
			},
			// SIC reported on a single-engine aircraft is PIC time: the
			// CAAI scheme has no second-in-command on single-pilot types.
			{
				Name: RuleSICSingleEngine,
				Role: types.RolePIC,
				Match: func(s Signals) bool {
					return s.SICReported && s.SingleEngine
				},
			},
			{
				Name: RuleSolo,
				Role: types.RolePIC,
				Match: func(s Signals) bool {
					return s.Solo
				},
			},
		},
	}
}

// Chain returns the rule chain in evaluation order.
func (c *Classifier) Chain() []Rule {
	return c.chain
}

// Signals derives the chain inputs for one record.
func (c *Classifier) Signals(rec types.FlightRecord, cat types.AircraftCategory) Signals {
	hasInstructor := rec.Instructor != "" || rec.DualReceived > 0
	return Signals{
		HasInstructor: hasInstructor,
		SafetyPilot:   c.rules.IsSafetyPilot(rec.Remarks),
		SICReported:   rec.SICTime > 0 && !hasInstructor,
		Solo:          rec.SoloTime > 0,
		SingleEngine:  cat.SingleEngine,
	}
}

// Classify assigns exactly one role and the derived flags to a flight.
// It is pure: no logging, no mutation of rec.
func (c *Classifier) Classify(rec types.FlightRecord, cat types.AircraftCategory) types.ClassifiedFlight {
	sig := c.Signals(rec, cat)

	role := types.RolePIC
	name := RuleDefault
	for _, rule := range c.chain {
		if rule.Match(sig) {
			role = rule.Role
			name = rule.Name
			break
		}
	}

	return types.ClassifiedFlight{
		Role:           role,
		Rule:           name,
		CrossCountry:   c.IsCrossCountry(rec),
		DualInstrument: role == types.RoleStudent && (rec.ActualInst > 0 || rec.SimInst > 0),
		DayTime:        rec.TotalTime - rec.NightTime,
		NightTime:      rec.NightTime,
	}
}

// IsCrossCountry reports the XC flag: an explicit XC time entry or a leg
// longer than the regulatory distance threshold. Either alone suffices.
func (c *Classifier) IsCrossCountry(rec types.FlightRecord) bool {
	return rec.XCTime > 0 || rec.DistanceNM > c.rules.CrossCountryNM()
}
