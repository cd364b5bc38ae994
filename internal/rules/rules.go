// Package rules implements the CAAI aircraft classification tables.
//
// The CAAI tofes-shaot groups aircraft into four categories:
//
//	Group א - Single-Engine Piston
//	Group ב - Multi-Engine Piston
//	Group ג - Multi-Engine Jet/Turboprop
//	Group ד - Single-Engine Turboprop
//
// All tables are immutable once a Ruleset is built. Matching is
// case-insensitive and deterministic: every type code maps to exactly
// one category, falling back to single-engine piston.
package rules

import (
	"strings"

	"github.com/nivasraf/caai-logbook/internal/types"
)

// CategoryRule assigns a category to any type code containing one of its
// markers. Rules are evaluated in declaration order; the first match wins,
// so jet/turboprop markers must precede piston markers.
type CategoryRule struct {
	Markers []string
	Code    types.CategoryCode
}

// Config holds the lookup tables a Ruleset is built from.
type Config struct {
	MultiEngineTypes  []string
	ComplexTypes      []string
	TypeAliases       map[string]string
	SimTypeMarkers    []string
	SimRegMarkers     []string
	SimRegFirstToken  []string
	CategoryRules     []CategoryRule
	DefaultCategory   types.CategoryCode
	GroupLetters      map[types.CategoryCode]string
	DeviceSuffixes    []string
	DeviceAliases     map[string]string
	CrossCountryNM    float64
	FormTypeRows      int
	SumCheckEpsilon   float64
	RoleCheckEpsilon  float64
	SICCreditDivisor  float64
	SafetyPilotMarker string
}

// Ruleset answers classification queries from fixed lookup tables.
type Ruleset struct {
	multiEngine      map[string]bool
	complexTypes     map[string]bool
	typeAliases      map[string]string
	simTypeMarkers   []string
	simRegMarkers    []string
	simRegFirstToken map[string]bool
	categoryRules    []CategoryRule
	defaultCategory  types.CategoryCode
	groupLetters     map[types.CategoryCode]string
	deviceSuffixes   []string
	deviceAliases    map[string]string

	crossCountryNM    float64
	formTypeRows      int
	sumCheckEpsilon   float64
	roleCheckEpsilon  float64
	sicCreditDivisor  float64
	safetyPilotMarker string
}

// New builds a Ruleset from cfg. The tables are copied; the caller's
// Config can be discarded afterwards.
func New(cfg Config) *Ruleset {
	rs := &Ruleset{
		multiEngine:      make(map[string]bool, len(cfg.MultiEngineTypes)),
		complexTypes:     make(map[string]bool, len(cfg.ComplexTypes)),
		typeAliases:      make(map[string]string, len(cfg.TypeAliases)),
		simTypeMarkers:   append([]string(nil), cfg.SimTypeMarkers...),
		simRegMarkers:    append([]string(nil), cfg.SimRegMarkers...),
		simRegFirstToken: make(map[string]bool, len(cfg.SimRegFirstToken)),
		categoryRules:    make([]CategoryRule, 0, len(cfg.CategoryRules)),
		defaultCategory:  cfg.DefaultCategory,
		groupLetters:     make(map[types.CategoryCode]string, len(cfg.GroupLetters)),
		deviceSuffixes:   append([]string(nil), cfg.DeviceSuffixes...),
		deviceAliases:    make(map[string]string, len(cfg.DeviceAliases)),

		crossCountryNM:    cfg.CrossCountryNM,
		formTypeRows:      cfg.FormTypeRows,
		sumCheckEpsilon:   cfg.SumCheckEpsilon,
		roleCheckEpsilon:  cfg.RoleCheckEpsilon,
		sicCreditDivisor:  cfg.SICCreditDivisor,
		safetyPilotMarker: strings.ToLower(cfg.SafetyPilotMarker),
	}
	for _, t := range cfg.MultiEngineTypes {
		rs.multiEngine[strings.ToUpper(t)] = true
	}
	for _, t := range cfg.ComplexTypes {
		rs.complexTypes[strings.ToUpper(t)] = true
	}
	for k, v := range cfg.TypeAliases {
		rs.typeAliases[strings.ToUpper(k)] = strings.ToUpper(v)
	}
	for _, t := range cfg.SimRegFirstToken {
		rs.simRegFirstToken[strings.ToUpper(t)] = true
	}
	for _, r := range cfg.CategoryRules {
		markers := make([]string, len(r.Markers))
		for i, m := range r.Markers {
			markers[i] = strings.ToUpper(m)
		}
		rs.categoryRules = append(rs.categoryRules, CategoryRule{Markers: markers, Code: r.Code})
	}
	for k, v := range cfg.GroupLetters {
		rs.groupLetters[k] = v
	}
	for k, v := range cfg.DeviceAliases {
		rs.deviceAliases[strings.ToUpper(k)] = strings.ToUpper(v)
	}
	return rs
}

// Default returns the ruleset for the current CAAI form revision.
func Default() *Ruleset {
	return New(Config{
		MultiEngineTypes: []string{"A319", "A320", "H25B", "PA44", "BE76"},
		ComplexTypes:     []string{"PA44", "BE76"},
		TypeAliases: map[string]string{
			"C172R":    "C172",
			"C172K":    "C172",
			"P28A-161": "PA28",
			"P28A-181": "PA28",
		},
		SimTypeMarkers:   []string{"SIM", "FTD", "FFS"},
		SimRegMarkers:    []string{"FRASCA", "FLIGHT SAFETY", "CAE"},
		SimRegFirstToken: []string{"ATP"},
		CategoryRules: []CategoryRule{
			// Jet/turboprop markers come first so codes that also appear
			// in the piston sets are never downgraded.
			{Markers: []string{"A319", "A320", "H25B"}, Code: types.CategoryMEJetTurboprop},
			{Markers: []string{"PA44", "BE76"}, Code: types.CategoryMEPiston},
		},
		DefaultCategory: types.CategorySEPiston,
		GroupLetters: map[types.CategoryCode]string{
			types.CategorySEPiston:       "א",
			types.CategorySETurboprop:    "ד",
			types.CategoryMEPiston:       "ב",
			types.CategoryMEJetTurboprop: "ג",
		},
		DeviceSuffixes: []string{" SIM", " FTD", " FFS"},
		DeviceAliases: map[string]string{
			"FRASCA":             "C172",
			"A320":               "A319",
			"FLIGHT SAFETY":      "H25B",
			"ATP - CTP TRAINING": "A319",
		},
		CrossCountryNM:    27,
		FormTypeRows:      10,
		SumCheckEpsilon:   0.5,
		RoleCheckEpsilon:  0.2,
		SICCreditDivisor:  2,
		SafetyPilotMarker: "safety pilot",
	})
}

// NormalizeType returns the canonical form of an aircraft type code,
// collapsing known variants (C172R -> C172, P28A-161 -> PA28).
func (rs *Ruleset) NormalizeType(aircraftType string) string {
	t := strings.ToUpper(strings.TrimSpace(aircraftType))
	if canonical, ok := rs.typeAliases[t]; ok {
		return canonical
	}
	return t
}

// IsSimulator reports whether an entry is a simulator or training device.
// Markers can appear in the type code or the registration.
func (rs *Ruleset) IsSimulator(aircraftType, registration string) bool {
	atype := strings.ToUpper(aircraftType)
	reg := strings.ToUpper(registration)
	for _, m := range rs.simTypeMarkers {
		if strings.Contains(atype, m) {
			return true
		}
	}
	for _, m := range rs.simRegMarkers {
		if strings.Contains(reg, m) {
			return true
		}
	}
	if fields := strings.Fields(reg); len(fields) > 0 && rs.simRegFirstToken[fields[0]] {
		return true
	}
	return false
}

// IsSingleEngine reports whether an aircraft type is single-engine.
// Types not in the multi-engine table are single-engine by default;
// simulator codes are never treated as single-engine.
func (rs *Ruleset) IsSingleEngine(aircraftType string) bool {
	atype := strings.ToUpper(aircraftType)
	return !rs.multiEngine[atype] && !strings.Contains(atype, "SIM")
}

// IsComplex reports whether the (normalized) type has retractable gear and
// a variable-pitch propeller.
func (rs *Ruleset) IsComplex(aircraftType string) bool {
	return rs.complexTypes[rs.NormalizeType(aircraftType)]
}

// CategoryOf returns the category code for an aircraft type. Marker match
// is by substring on the upper-cased raw code, in rule order.
func (rs *Ruleset) CategoryOf(aircraftType string) types.CategoryCode {
	atype := strings.ToUpper(aircraftType)
	for _, rule := range rs.categoryRules {
		for _, m := range rule.Markers {
			if strings.Contains(atype, m) {
				return rule.Code
			}
		}
	}
	return rs.defaultCategory
}

// HasCategoryMarker reports whether any category rule matches the type,
// i.e. whether CategoryOf resolved by marker rather than by default.
func (rs *Ruleset) HasCategoryMarker(aircraftType string) bool {
	atype := strings.ToUpper(aircraftType)
	for _, rule := range rs.categoryRules {
		for _, m := range rule.Markers {
			if strings.Contains(atype, m) {
				return true
			}
		}
	}
	return false
}

// GroupLetter returns the Hebrew group letter for a category code.
func (rs *Ruleset) GroupLetter(code types.CategoryCode) string {
	if letter, ok := rs.groupLetters[code]; ok {
		return letter
	}
	return rs.groupLetters[rs.defaultCategory]
}

// Classify resolves everything derivable from the type code and
// registration in one call.
func (rs *Ruleset) Classify(aircraftType, registration string) types.AircraftCategory {
	code := rs.CategoryOf(aircraftType)
	return types.AircraftCategory{
		Code:           code,
		GroupLetter:    rs.GroupLetter(code),
		NormalizedType: rs.NormalizeType(aircraftType),
		SingleEngine:   rs.IsSingleEngine(aircraftType),
		Complex:        rs.IsComplex(aircraftType),
		Simulator:      rs.IsSimulator(aircraftType, registration),
	}
}

// ResolveDeviceType maps a simulator device label to the aircraft type its
// instrument time is credited against: suffix tokens are stripped, then the
// result is looked up in the device alias table.
func (rs *Ruleset) ResolveDeviceType(deviceType string) string {
	t := strings.ToUpper(deviceType)
	for _, suffix := range rs.deviceSuffixes {
		t = strings.ReplaceAll(t, suffix, "")
	}
	if aliased, ok := rs.deviceAliases[t]; ok {
		return aliased
	}
	return t
}

// IsSafetyPilot reports whether the remarks carry the safety-pilot marker.
func (rs *Ruleset) IsSafetyPilot(remarks string) bool {
	return strings.Contains(strings.ToLower(remarks), rs.safetyPilotMarker)
}

// CrossCountryNM returns the distance threshold above which a flight is
// cross-country regardless of its logged XC time.
func (rs *Ruleset) CrossCountryNM() float64 { return rs.crossCountryNM }

// FormTypeRows returns the number of aircraft-type rows on the summary form.
func (rs *Ruleset) FormTypeRows() int { return rs.formTypeRows }

// SumCheckEpsilon returns the tolerance for the grand-total identity check.
func (rs *Ruleset) SumCheckEpsilon() float64 { return rs.sumCheckEpsilon }

// RoleCheckEpsilon returns the tolerance for per-type role-sum checks.
func (rs *Ruleset) RoleCheckEpsilon() float64 { return rs.roleCheckEpsilon }

// SICCreditDivisor returns the divisor applied to SIC time in the
// half-credit grand total.
func (rs *Ruleset) SICCreditDivisor() float64 { return rs.sicCreditDivisor }
