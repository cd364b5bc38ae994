package testutils

import (
	"testing"
	"time"
)

func TestMockFlightRecord(t *testing.T) {
	rec := MockFlightRecord("C172", 1.5)

	if rec.AircraftType != "C172" {
		t.Errorf("AircraftType = %q, want C172", rec.AircraftType)
	}
	if rec.TotalTime != 1.5 || rec.PICTime != 1.5 {
		t.Errorf("Expected total and PIC time 1.5, got %v/%v", rec.TotalTime, rec.PICTime)
	}
	if rec.Instructor != "" {
		t.Error("Plain PIC flight must not carry an instructor")
	}
}

func TestMockStudentFlight(t *testing.T) {
	rec := MockStudentFlight("PA28", 1.2)

	if rec.Instructor == "" {
		t.Error("Student flight must carry an instructor")
	}
	if rec.DualReceived != 1.2 {
		t.Errorf("DualReceived = %v, want 1.2", rec.DualReceived)
	}
	if rec.PICTime != 0 {
		t.Errorf("PICTime = %v, want 0", rec.PICTime)
	}
}

func TestMockSimulatorRecord(t *testing.T) {
	rec := MockSimulatorRecord("C172 SIM", 2.0)

	if rec.Registration != "FRASCA 142" {
		t.Errorf("Registration = %q, want a simulator vendor marker", rec.Registration)
	}
	if rec.SimInst != 2.0 {
		t.Errorf("SimInst = %v, want 2.0", rec.SimInst)
	}
}

func TestMockJob(t *testing.T) {
	job := MockJob("j1")

	if job.ID != "j1" {
		t.Errorf("ID = %q, want j1", job.ID)
	}
	if job.FileName == "" || job.StoredPath == "" {
		t.Error("Expected file name and stored path to be populated")
	}
}

func TestWaitForCondition_Success(t *testing.T) {
	calls := 0
	err := WaitForCondition(func() bool {
		calls++
		return calls >= 3
	}, time.Second)
	if err != nil {
		t.Errorf("WaitForCondition failed: %v", err)
	}
}

func TestWaitForCondition_Timeout(t *testing.T) {
	err := WaitForCondition(func() bool { return false }, 50*time.Millisecond)
	if err == nil {
		t.Error("Expected timeout error")
	}
}
