package db

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/nivasraf/caai-logbook/internal/types"
)

type Client struct {
	db *sql.DB
}

// New creates a new database client
func New(connStr string) (*Client, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Client{db: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// CreateRun records the start of a conversion run
func (c *Client) CreateRun(run *types.PipelineRun) error {
	query := `
		INSERT INTO runs (
			run_id, source_file, pilot_name, started_at
		) VALUES ($1, $2, $3, $4)
	`
	_, err := c.db.Exec(query,
		run.ID, run.SourceFile, run.PilotName, run.StartedAt,
	)
	return err
}

// CompleteRun stores the outcome of a finished run
func (c *Client) CompleteRun(run *types.PipelineRun) error {
	query := `
		UPDATE runs SET
			finished_at = $1, flights = $2, skipped = $3,
			form_total = $4, caai_grand_total = $5, sum_check_pass = $6
		WHERE run_id = $7
	`
	_, err := c.db.Exec(query,
		run.FinishedAt, run.Flights, run.Skipped,
		run.FormTotal, run.CAAIGrandTotal, run.SumCheckPass,
		run.ID,
	)
	return err
}

// GetRun retrieves a single run by ID
func (c *Client) GetRun(runID string) (*types.PipelineRun, error) {
	query := `
		SELECT run_id, source_file, pilot_name, started_at, finished_at,
			flights, skipped, form_total, caai_grand_total, sum_check_pass
		FROM runs
		WHERE run_id = $1
	`
	var (
		run      types.PipelineRun
		finished sql.NullTime
	)
	if err := c.db.QueryRow(query, runID).Scan(
		&run.ID, &run.SourceFile, &run.PilotName, &run.StartedAt, &finished,
		&run.Flights, &run.Skipped, &run.FormTotal, &run.CAAIGrandTotal, &run.SumCheckPass,
	); err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return &run, nil
}

// GetRecentRuns retrieves the most recently started runs
func (c *Client) GetRecentRuns(limit int) ([]*types.PipelineRun, error) {
	query := `
		SELECT run_id, source_file, pilot_name, started_at, finished_at,
			flights, skipped, form_total, caai_grand_total, sum_check_pass
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*types.PipelineRun
	for rows.Next() {
		var (
			run      types.PipelineRun
			finished sql.NullTime
		)
		if err := rows.Scan(
			&run.ID, &run.SourceFile, &run.PilotName, &run.StartedAt, &finished,
			&run.Flights, &run.Skipped, &run.FormTotal, &run.CAAIGrandTotal, &run.SumCheckPass,
		); err != nil {
			return nil, err
		}
		if finished.Valid {
			run.FinishedAt = finished.Time
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// StoreFlightRecords stores the normalized flight records of a run
func (c *Client) StoreFlightRecords(runID string, recs []types.FlightRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO flight_records (
			run_id, seq, flight_date, aircraft_type, registration,
			from_airport, to_airport, total_time, pic_time, sic_time,
			night_time, xc_time, actual_inst, sim_inst, dual_received,
			dual_given, solo_time, distance_nm, day_landings, night_landings,
			instructor, remarks
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, rec := range recs {
		if _, err := stmt.Exec(
			runID, i, rec.Date, rec.AircraftType, rec.Registration,
			rec.From, rec.To, rec.TotalTime, rec.PICTime, rec.SICTime,
			rec.NightTime, rec.XCTime, rec.ActualInst, rec.SimInst, rec.DualReceived,
			rec.DualGiven, rec.SoloTime, rec.DistanceNM, rec.DayLandings, rec.NightLandings,
			rec.Instructor, rec.Remarks,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetFlightRecords retrieves the stored flight records of a run in source order
func (c *Client) GetFlightRecords(runID string) ([]types.FlightRecord, error) {
	query := `
		SELECT flight_date, aircraft_type, registration, from_airport, to_airport,
			total_time, pic_time, sic_time, night_time, xc_time,
			actual_inst, sim_inst, dual_received, dual_given, solo_time,
			distance_nm, day_landings, night_landings, instructor, remarks
		FROM flight_records
		WHERE run_id = $1
		ORDER BY seq
	`
	rows, err := c.db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []types.FlightRecord
	for rows.Next() {
		var rec types.FlightRecord
		if err := rows.Scan(
			&rec.Date, &rec.AircraftType, &rec.Registration, &rec.From, &rec.To,
			&rec.TotalTime, &rec.PICTime, &rec.SICTime, &rec.NightTime, &rec.XCTime,
			&rec.ActualInst, &rec.SimInst, &rec.DualReceived, &rec.DualGiven, &rec.SoloTime,
			&rec.DistanceNM, &rec.DayLandings, &rec.NightLandings, &rec.Instructor, &rec.Remarks,
		); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// StoreGrandTotals stores the grand totals snapshot of a run. The category
// allocation is stored as a vector in form column order.
func (c *Client) StoreGrandTotals(runID string, g *types.GrandTotals) error {
	query := `
		INSERT INTO grand_totals (
			run_id, pic, pic_xc, sic, student, night_pic, night_pic_xc,
			night_sic, night_student, actual_inst, sim_inst_air, sim_device,
			total, form_total, night, dual, dual_inst, solo, solo_xc,
			night_landings, xc, xc_all_roles, complex_time, safety_pilot_se,
			multi_engine, flights, skipped, category_totals
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28
		)
	`
	categories := make([]float64, len(types.Categories))
	for i, cat := range types.Categories {
		categories[i] = g.CategoryFormTotals[cat]
	}

	_, err := c.db.Exec(query,
		runID, g.PIC, g.PICXC, g.SIC, g.Student, g.NightPIC, g.NightPICXC,
		g.NightSIC, g.NightStudent, g.ActualInst, g.SimInstAir, g.SimDevice,
		g.Total, g.FormTotal, g.Night, g.Dual, g.DualInst, g.Solo, g.SoloXC,
		g.NightLandings, g.XC, g.XCAllRoles, g.Complex, g.SafetyPilotSE,
		g.MultiEngine, g.Flights, g.Skipped, pq.Array(categories),
	)
	return err
}

// StorePipelineStats stores a snapshot of the pipeline counters
func (c *Client) StorePipelineStats(stats map[string]interface{}) error {
	query := `
		INSERT INTO pipeline_stats (
			time, rows_read, rows_imported, rows_skipped,
			pic_flights, sic_flights, student_flights, safety_pilot_flights,
			simulator_entries, default_categories,
			jobs_processed, jobs_failed, processing_time_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	processingTime := stats["processing_time"].(time.Duration).Milliseconds()

	_, err := c.db.Exec(query,
		time.Now(),
		stats["rows_read"], stats["rows_imported"], stats["rows_skipped"],
		stats["pic_flights"], stats["sic_flights"], stats["student_flights"],
		stats["safety_pilot_flights"], stats["simulator_entries"],
		stats["default_categories"], stats["jobs_processed"],
		stats["jobs_failed"], processingTime,
	)
	return err
}

// StoreReconciliation stores the verification outcome of a run
func (c *Client) StoreReconciliation(runID string, rep *types.ReconciliationReport) error {
	query := `
		INSERT INTO reconciliations (
			run_id, form_total, role_sum, sum_check_diff, sum_check_pass,
			caai_grand_total, type_mismatches, category_mismatches, checked_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := c.db.Exec(query,
		runID, rep.FormTotal, rep.RoleSum, rep.SumCheckDiff, rep.SumCheckPass,
		rep.CAAIGrandTotal, len(rep.TypeMismatches), len(rep.CategoryMismatches),
		time.Now(),
	)
	return err
}
