package testutils

import (
	"fmt"
	"os"
	"time"

	"github.com/nivasraf/caai-logbook/internal/types"
)

// MockFlightRecord creates a plain day PIC flight for testing
func MockFlightRecord(aircraftType string, totalTime float64) types.FlightRecord {
	return types.FlightRecord{
		Date:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		AircraftType: aircraftType,
		Registration: "4X-TST",
		From:         "LLHZ",
		To:           "LLHA",
		TotalTime:    totalTime,
		PICTime:      totalTime,
	}
}

// MockStudentFlight creates a dual-instruction flight for testing
func MockStudentFlight(aircraftType string, totalTime float64) types.FlightRecord {
	rec := MockFlightRecord(aircraftType, totalTime)
	rec.PICTime = 0
	rec.Instructor = "A. Instructor"
	rec.DualReceived = totalTime
	return rec
}

// MockSimulatorRecord creates a training-device entry for testing
func MockSimulatorRecord(deviceType string, totalTime float64) types.FlightRecord {
	rec := MockFlightRecord(deviceType, totalTime)
	rec.Registration = "FRASCA 142"
	rec.From = ""
	rec.To = ""
	rec.SimInst = totalTime
	return rec
}

// MockJob creates a conversion job for testing
func MockJob(id string) *types.ConversionJob {
	return &types.ConversionJob{
		ID:          id,
		FileName:    fmt.Sprintf("logbook-%s.csv", id),
		StoredPath:  fmt.Sprintf("/tmp/uploads/logbook-%s.csv", id),
		PilotName:   "Test Pilot",
		SubmittedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
}

// WaitForCondition polls condition until it is true or the timeout expires
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("condition not met within %v", timeout)
}

// IsIntegrationTest reports whether integration tests are enabled
func IsIntegrationTest() bool {
	return os.Getenv("INTEGRATION_TESTS") == "true"
}
