package stats

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nivasraf/caai-logbook/internal/db"
	"github.com/nivasraf/caai-logbook/internal/types"
)

// Stats tracks pipeline processing statistics
type Stats struct {
	// Import counts
	RowsRead     uint64
	RowsImported uint64
	RowsSkipped  uint64

	// Classification counts
	PICFlights         uint64
	SICFlights         uint64
	StudentFlights     uint64
	SafetyPilotFlights uint64
	SimulatorEntries   uint64
	DefaultCategories  uint64

	// Job counts
	JobsProcessed uint64
	JobsFailed    uint64

	// Timing
	LastJobTime    time.Time
	ProcessingTime time.Duration

	// Database client for persistence
	db *db.Client

	mu sync.RWMutex
}

// New creates a new Stats instance
func New() *Stats {
	return &Stats{
		LastJobTime: time.Now(),
	}
}

// SetDB sets the database client for persistence
func (s *Stats) SetDB(db *db.Client) {
	s.mu.Lock()
	s.db = db
	s.mu.Unlock()
}

// Persist stores the current statistics in the database
func (s *Stats) Persist() error {
	s.mu.RLock()
	if s.db == nil {
		s.mu.RUnlock()
		return fmt.Errorf("database client not set")
	}
	s.mu.RUnlock()

	stats := s.GetStats()
	return s.db.StorePipelineStats(stats)
}

// AddRowsRead adds to the rows read counter
func (s *Stats) AddRowsRead(n int) {
	atomic.AddUint64(&s.RowsRead, uint64(n))
}

// AddRowsImported adds to the rows imported counter
func (s *Stats) AddRowsImported(n int) {
	atomic.AddUint64(&s.RowsImported, uint64(n))
}

// AddRowsSkipped adds to the rows skipped counter
func (s *Stats) AddRowsSkipped(n int) {
	atomic.AddUint64(&s.RowsSkipped, uint64(n))
}

// CountRole increments the counter for one classified flight's role
func (s *Stats) CountRole(role types.Role) {
	switch role {
	case types.RolePIC:
		atomic.AddUint64(&s.PICFlights, 1)
	case types.RoleSIC:
		atomic.AddUint64(&s.SICFlights, 1)
	case types.RoleStudent:
		atomic.AddUint64(&s.StudentFlights, 1)
	case types.RoleSafetyPilot:
		atomic.AddUint64(&s.SafetyPilotFlights, 1)
	}
}

// IncrementSimulatorEntries increments the simulator entries counter
func (s *Stats) IncrementSimulatorEntries() {
	atomic.AddUint64(&s.SimulatorEntries, 1)
}

// IncrementDefaultCategories increments the default-assigned category counter
func (s *Stats) IncrementDefaultCategories() {
	atomic.AddUint64(&s.DefaultCategories, 1)
}

// IncrementJobsProcessed increments the processed jobs counter
func (s *Stats) IncrementJobsProcessed() {
	atomic.AddUint64(&s.JobsProcessed, 1)
}

// IncrementJobsFailed increments the failed jobs counter
func (s *Stats) IncrementJobsFailed() {
	atomic.AddUint64(&s.JobsFailed, 1)
}

// UpdateLastJobTime updates the last job time
func (s *Stats) UpdateLastJobTime() {
	s.mu.Lock()
	s.LastJobTime = time.Now()
	s.mu.Unlock()
}

// AddProcessingTime adds to the total processing time
func (s *Stats) AddProcessingTime(duration time.Duration) {
	s.mu.Lock()
	s.ProcessingTime += duration
	s.mu.Unlock()
}

// GetStats returns a copy of the current statistics
func (s *Stats) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"rows_read":            atomic.LoadUint64(&s.RowsRead),
		"rows_imported":        atomic.LoadUint64(&s.RowsImported),
		"rows_skipped":         atomic.LoadUint64(&s.RowsSkipped),
		"pic_flights":          atomic.LoadUint64(&s.PICFlights),
		"sic_flights":          atomic.LoadUint64(&s.SICFlights),
		"student_flights":      atomic.LoadUint64(&s.StudentFlights),
		"safety_pilot_flights": atomic.LoadUint64(&s.SafetyPilotFlights),
		"simulator_entries":    atomic.LoadUint64(&s.SimulatorEntries),
		"default_categories":   atomic.LoadUint64(&s.DefaultCategories),
		"jobs_processed":       atomic.LoadUint64(&s.JobsProcessed),
		"jobs_failed":          atomic.LoadUint64(&s.JobsFailed),
		"last_job_time":        s.LastJobTime,
		"processing_time":      s.ProcessingTime,
	}
}

// String returns a string representation of the statistics
func (s *Stats) String() string {
	stats := s.GetStats()
	return fmt.Sprintf(
		"Rows Read: %d\n"+
			"Rows Imported: %d\n"+
			"Rows Skipped: %d\n"+
			"PIC Flights: %d\n"+
			"SIC Flights: %d\n"+
			"Student Flights: %d\n"+
			"Safety Pilot Flights: %d\n"+
			"Simulator Entries: %d\n"+
			"Default Categories: %d\n"+
			"Jobs Processed: %d\n"+
			"Jobs Failed: %d\n"+
			"Last Job Time: %s\n"+
			"Processing Time: %s",
		stats["rows_read"],
		stats["rows_imported"],
		stats["rows_skipped"],
		stats["pic_flights"],
		stats["sic_flights"],
		stats["student_flights"],
		stats["safety_pilot_flights"],
		stats["simulator_entries"],
		stats["default_categories"],
		stats["jobs_processed"],
		stats["jobs_failed"],
		stats["last_job_time"],
		stats["processing_time"],
	)
}

// StartPersistence starts periodic persistence of statistics
func (s *Stats) StartPersistence(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final persistence before shutdown
			if err := s.Persist(); err != nil {
				fmt.Printf("Failed to persist final statistics: %v\n", err)
			}
			return
		case <-ticker.C:
			if err := s.Persist(); err != nil {
				fmt.Printf("Failed to persist statistics: %v\n", err)
			}
		}
	}
}
