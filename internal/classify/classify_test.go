package classify

import (
	"math"
	"testing"

	"github.com/nivasraf/caai-logbook/internal/rules"
	"github.com/nivasraf/caai-logbook/internal/types"
)

func newTestClassifier() (*Classifier, *rules.Ruleset) {
	rs := rules.Default()
	return New(rs), rs
}

func TestClassifyRole(t *testing.T) {
	c, rs := newTestClassifier()

	tests := []struct {
		name     string
		rec      types.FlightRecord
		wantRole types.Role
		wantRule string
	}{
		{
			name: "instructor name wins over everything",
			rec: types.FlightRecord{
				AircraftType: "PA44",
				TotalTime:    1.5,
				SICTime:      1.5,
				SoloTime:     1.5,
				Instructor:   "J. Cohen",
			},
			wantRole: types.RoleStudent,
			wantRule: RuleStudent,
		},
		{
			name: "dual received alone marks a student flight",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.2,
				DualReceived: 1.2,
			},
			wantRole: types.RoleStudent,
			wantRule: RuleStudent,
		},
		{
			name: "safety pilot on single-engine",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.5,
				Remarks:      "Safety Pilot for N123",
			},
			wantRole: types.RoleSafetyPilot,
			wantRule: RuleSafetyPilot,
		},
		{
			name: "safety pilot marker on multi-engine falls through",
			rec: types.FlightRecord{
				AircraftType: "PA44",
				TotalTime:    1.5,
				Remarks:      "safety pilot",
			},
			wantRole: types.RolePIC,
			wantRule: RuleDefault,
		},
		{
			name: "sic on multi-engine",
			rec: types.FlightRecord{
				AircraftType: "A319",
				TotalTime:    2.0,
				SICTime:      2.0,
			},
			wantRole: types.RoleSIC,
			wantRule: RuleSIC,
		},
		{
			name: "sic on single-engine resolves to PIC",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    3.0,
				SICTime:      3.0,
			},
			wantRole: types.RolePIC,
			wantRule: RuleSICSingleEngine,
		},
		{
			name: "solo flight is PIC",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.0,
				SoloTime:     1.0,
			},
			wantRole: types.RolePIC,
			wantRule: RuleSolo,
		},
		{
			name: "no markers at all defaults to PIC",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.0,
			},
			wantRole: types.RolePIC,
			wantRule: RuleDefault,
		},
		{
			name: "sic with instructor is still a student flight",
			rec: types.FlightRecord{
				AircraftType: "PA44",
				TotalTime:    1.8,
				SICTime:      1.8,
				Instructor:   "M. Levi",
			},
			wantRole: types.RoleStudent,
			wantRule: RuleStudent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := rs.Classify(tt.rec.AircraftType, tt.rec.Registration)
			got := c.Classify(tt.rec, cat)
			if got.Role != tt.wantRole {
				t.Errorf("Role = %v, want %v", got.Role, tt.wantRole)
			}
			if got.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", got.Rule, tt.wantRule)
			}
		})
	}
}

func TestClassifyCrossCountry(t *testing.T) {
	c, rs := newTestClassifier()

	tests := []struct {
		name string
		rec  types.FlightRecord
		want bool
	}{
		{
			name: "explicit xc time",
			rec:  types.FlightRecord{AircraftType: "C172", TotalTime: 2.0, XCTime: 2.0},
			want: true,
		},
		{
			name: "distance above threshold without xc field",
			rec:  types.FlightRecord{AircraftType: "C172", TotalTime: 1.0, DistanceNM: 27.1},
			want: true,
		},
		{
			name: "distance exactly at threshold is not xc",
			rec:  types.FlightRecord{AircraftType: "C172", TotalTime: 1.0, DistanceNM: 27},
			want: false,
		},
		{
			name: "short local flight",
			rec:  types.FlightRecord{AircraftType: "C172", TotalTime: 1.0, DistanceNM: 5.4},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := rs.Classify(tt.rec.AircraftType, tt.rec.Registration)
			got := c.Classify(tt.rec, cat)
			if got.CrossCountry != tt.want {
				t.Errorf("CrossCountry = %v, want %v", got.CrossCountry, tt.want)
			}
		})
	}
}

func TestClassifyDualInstrument(t *testing.T) {
	c, rs := newTestClassifier()

	tests := []struct {
		name string
		rec  types.FlightRecord
		want bool
	}{
		{
			name: "student with hood time",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.5,
				SimInst:      0.8,
				Instructor:   "J. Cohen",
			},
			want: true,
		},
		{
			name: "student with actual instrument",
			rec: types.FlightRecord{
				AircraftType: "PA44",
				TotalTime:    1.5,
				ActualInst:   0.5,
				DualReceived: 1.5,
			},
			want: true,
		},
		{
			name: "instrument time outside instruction does not set the flag",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.5,
				ActualInst:   1.0,
			},
			want: false,
		},
		{
			name: "student without instrument time",
			rec: types.FlightRecord{
				AircraftType: "C172",
				TotalTime:    1.0,
				Instructor:   "J. Cohen",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := rs.Classify(tt.rec.AircraftType, tt.rec.Registration)
			got := c.Classify(tt.rec, cat)
			if got.DualInstrument != tt.want {
				t.Errorf("DualInstrument = %v, want %v", got.DualInstrument, tt.want)
			}
		})
	}
}

func TestClassifyDayNightSplit(t *testing.T) {
	c, rs := newTestClassifier()

	rec := types.FlightRecord{AircraftType: "C172", TotalTime: 2.7, NightTime: 1.2}
	cat := rs.Classify(rec.AircraftType, rec.Registration)
	got := c.Classify(rec, cat)

	if math.Abs(got.DayTime+got.NightTime-rec.TotalTime) > 1e-9 {
		t.Errorf("day %.2f + night %.2f != total %.2f", got.DayTime, got.NightTime, rec.TotalTime)
	}
	if got.NightTime != 1.2 {
		t.Errorf("NightTime = %.2f, want 1.2", got.NightTime)
	}
}

func TestChainOrder(t *testing.T) {
	c, _ := newTestClassifier()

	want := []string{RuleStudent, RuleSafetyPilot, RuleSIC, RuleSICSingleEngine, RuleSolo}
	chain := c.Chain()
	if len(chain) != len(want) {
		t.Fatalf("chain has %d rules, want %d", len(chain), len(want))
	}
	for i, name := range want {
		if chain[i].Name != name {
			t.Errorf("chain[%d] = %q, want %q", i, chain[i].Name, name)
		}
	}
}

func TestRoleIsAlwaysAssigned(t *testing.T) {
	c, rs := newTestClassifier()

	valid := map[types.Role]bool{
		types.RolePIC:         true,
		types.RoleSIC:         true,
		types.RoleStudent:     true,
		types.RoleSafetyPilot: true,
	}

	recs := []types.FlightRecord{
		{AircraftType: "C172", TotalTime: 1.0},
		{AircraftType: "PA44", TotalTime: 1.0, SICTime: 1.0},
		{AircraftType: "ZZZZ", TotalTime: 0.5, Remarks: "ferry"},
		{AircraftType: "BE76", TotalTime: 2.2, SoloTime: 2.2},
	}
	for _, rec := range recs {
		cat := rs.Classify(rec.AircraftType, rec.Registration)
		got := c.Classify(rec, cat)
		if !valid[got.Role] {
			t.Errorf("Classify(%+v) produced invalid role %q", rec, got.Role)
		}
	}
}
