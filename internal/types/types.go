package types

import (
	"time"
)

// NMToKM converts nautical miles to kilometers. Distances are tracked in
// nautical miles; the form wants kilometers.
const NMToKM = 1.852

// Role is the duty classification assigned to a single flight.
type Role string

const (
	RolePIC         Role = "PIC"
	RoleSIC         Role = "SIC"
	RoleStudent     Role = "Student"
	RoleSafetyPilot Role = "Safety Pilot"
)

// CategoryCode identifies a CAAI aircraft group.
type CategoryCode string

const (
	CategorySEPiston       CategoryCode = "SE_PISTON"
	CategorySETurboprop    CategoryCode = "SE_TURBOPROP"
	CategoryMEPiston       CategoryCode = "ME_PISTON"
	CategoryMEJetTurboprop CategoryCode = "ME_JET_TURBOPROP"
)

// Categories lists the four groups in the form's column order.
var Categories = []CategoryCode{
	CategorySEPiston,
	CategorySETurboprop,
	CategoryMEPiston,
	CategoryMEJetTurboprop,
}

// FlightRecord represents one normalized logbook row
type FlightRecord struct {
	Date          time.Time `json:"date"`
	AircraftType  string    `json:"aircraft_type"`
	Registration  string    `json:"registration"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	TotalTime     float64   `json:"total_time"`
	PICTime       float64   `json:"pic_time"`
	SICTime       float64   `json:"sic_time"`
	NightTime     float64   `json:"night_time"`
	XCTime        float64   `json:"xc_time"`
	ActualInst    float64   `json:"actual_instrument"`
	SimInst       float64   `json:"simulated_instrument"`
	DualReceived  float64   `json:"dual_received"`
	DualGiven     float64   `json:"dual_given"`
	SoloTime      float64   `json:"solo_time"`
	DistanceNM    float64   `json:"distance_nm"`
	DayLandings   int       `json:"day_landings"`
	NightLandings int       `json:"night_landings"`
	Instructor    string    `json:"instructor"`
	Remarks       string    `json:"remarks"`
}

// AircraftCategory represents the derived classification of an aircraft type
type AircraftCategory struct {
	Code           CategoryCode `json:"code"`
	GroupLetter    string       `json:"group_letter"`
	NormalizedType string       `json:"normalized_type"`
	SingleEngine   bool         `json:"single_engine"`
	Complex        bool         `json:"complex"`
	Simulator      bool         `json:"simulator"`
}

// ClassifiedFlight represents the role and flags assigned to one flight
type ClassifiedFlight struct {
	Role           Role    `json:"role"`
	Rule           string  `json:"rule"`
	CrossCountry   bool    `json:"cross_country"`
	DualInstrument bool    `json:"dual_instrument"`
	DayTime        float64 `json:"day_time"`
	NightTime      float64 `json:"night_time"`
}

// TypeStats accumulates totals for one normalized aircraft type
type TypeStats struct {
	TypeCode      string       `json:"type_code"`
	Category      CategoryCode `json:"category"`
	Simulator     bool         `json:"simulator"`
	FirstSeen     int          `json:"first_seen"`
	Flights       int          `json:"flights"`
	Total         float64      `json:"total"`
	FormTotal     float64      `json:"form_total"`
	DayPIC        float64      `json:"day_pic"`
	DayPICXC      float64      `json:"day_pic_xc"`
	DaySIC        float64      `json:"day_sic"`
	DayStudent    float64      `json:"day_student"`
	NightPIC      float64      `json:"night_pic"`
	NightPICXC    float64      `json:"night_pic_xc"`
	NightSIC      float64      `json:"night_sic"`
	NightStudent  float64      `json:"night_student"`
	InstActual    float64      `json:"inst_actual"`
	InstSimAir    float64      `json:"inst_sim_air"`
	InstSimDevice float64      `json:"inst_sim_device"`
	DualReceived  float64      `json:"dual_received"`
	DualInst      float64      `json:"dual_inst"`
	Night         float64      `json:"night"`
	Solo          float64      `json:"solo"`
	NightLandings int          `json:"night_landings"`
	ComplexTime   float64      `json:"complex_time"`
	SafetyPilot   float64      `json:"safety_pilot"`
}

// SoloCrossCountry represents the longest solo cross-country candidate
type SoloCrossCountry struct {
	Date         time.Time `json:"date"`
	AircraftType string    `json:"aircraft_type"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Hours        float64   `json:"hours"`
	DistanceNM   float64   `json:"distance_nm"`
}

// GrandTotals accumulates totals across all aircraft types in one pass
type GrandTotals struct {
	PIC           float64 `json:"pic"`
	PICXC         float64 `json:"pic_xc"`
	SIC           float64 `json:"sic"`
	Student       float64 `json:"student"`
	NightPIC      float64 `json:"night_pic"`
	NightPICXC    float64 `json:"night_pic_xc"`
	NightSIC      float64 `json:"night_sic"`
	NightStudent  float64 `json:"night_student"`
	ActualInst    float64 `json:"actual_inst"`
	SimInstAir    float64 `json:"sim_inst_air"`
	SimDevice     float64 `json:"sim_device"`
	Total         float64 `json:"total"`
	FormTotal     float64 `json:"form_total"`
	Night         float64 `json:"night"`
	Dual          float64 `json:"dual"`
	DualInst      float64 `json:"dual_inst"`
	Solo          float64 `json:"solo"`
	SoloXC        float64 `json:"solo_xc"`
	NightLandings int     `json:"night_landings"`
	XC            float64 `json:"xc"`
	XCAllRoles    float64 `json:"xc_all_roles"`
	Complex       float64 `json:"complex"`
	SafetyPilotSE float64 `json:"safety_pilot_se"`
	MultiEngine   float64 `json:"multi_engine"`
	Flights       int     `json:"flights"`
	Skipped       int     `json:"skipped"`

	// Independent per-category form-time allocation, checked by the
	// reconciler against the per-type rollup.
	CategoryFormTotals map[CategoryCode]float64 `json:"category_form_totals"`

	// Flight lists carried for the long-form report sheets.
	NightPICFlights []FlightRecord    `json:"night_pic_flights,omitempty"`
	InstDualFlights []FlightRecord    `json:"inst_dual_flights,omitempty"`
	ComplexFlights  []FlightRecord    `json:"complex_flights,omitempty"`
	LongestSoloXC   *SoloCrossCountry `json:"longest_solo_xc,omitempty"`
}

// TypeMismatch represents a per-type role-sum deviation found by the reconciler
type TypeMismatch struct {
	TypeCode string  `json:"type_code"`
	RoleSum  float64 `json:"role_sum"`
	Total    float64 `json:"total"`
	Diff     float64 `json:"diff"`
}

// CategoryMismatch represents a per-category rollup deviation
type CategoryMismatch struct {
	Category CategoryCode `json:"category"`
	Rollup   float64      `json:"rollup"`
	Grand    float64      `json:"grand"`
	Diff     float64      `json:"diff"`
}

// ReconciliationReport represents the cross-check results for one pass
type ReconciliationReport struct {
	FormTotal          float64            `json:"form_total"`
	RoleSum            float64            `json:"role_sum"`
	SumCheckDiff       float64            `json:"sum_check_diff"`
	SumCheckPass       bool               `json:"sum_check_pass"`
	CAAIGrandTotal     float64            `json:"caai_grand_total"`
	TypeMismatches     []TypeMismatch     `json:"type_mismatches,omitempty"`
	CategoryMismatches []CategoryMismatch `json:"category_mismatches,omitempty"`
	LongestSoloXC      *SoloCrossCountry  `json:"longest_solo_xc,omitempty"`
}

// JobState represents the lifecycle phase of a conversion job
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// ConversionJob represents one uploaded logbook awaiting conversion
type ConversionJob struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StoredPath  string    `json:"stored_path"`
	PilotName   string    `json:"pilot_name"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// JobStatus represents the current state of a conversion job
type JobStatus struct {
	ID        string    `json:"id"`
	State     JobState  `json:"state"`
	Error     string    `json:"error,omitempty"`
	FormPath  string    `json:"form_path,omitempty"`
	Flights   int       `json:"flights"`
	Skipped   int       `json:"skipped"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PipelineRun represents one archived conversion run
type PipelineRun struct {
	ID             string    `json:"id"`
	SourceFile     string    `json:"source_file"`
	PilotName      string    `json:"pilot_name"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Flights        int       `json:"flights"`
	Skipped        int       `json:"skipped"`
	FormTotal      float64   `json:"form_total"`
	CAAIGrandTotal float64   `json:"caai_grand_total"`
	SumCheckPass   bool      `json:"sum_check_pass"`
}
