package migrations

import "time"

// InitialSchema creates the run archive schema
var InitialSchema = &Migration{
	ID:   "001_initial_schema",
	Name: "001_initial_schema",
	UpSQL: `
		-- Conversion runs
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			source_file TEXT NOT NULL,
			pilot_name TEXT,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			flights INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			form_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			caai_grand_total DOUBLE PRECISION NOT NULL DEFAULT 0,
			sum_check_pass BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at DESC);

		-- Normalized flight records, in source order per run
		CREATE TABLE IF NOT EXISTS flight_records (
			run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			flight_date DATE NOT NULL,
			aircraft_type TEXT,
			registration TEXT,
			from_airport TEXT,
			to_airport TEXT,
			total_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			pic_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			sic_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			night_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			xc_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			actual_inst DOUBLE PRECISION NOT NULL DEFAULT 0,
			sim_inst DOUBLE PRECISION NOT NULL DEFAULT 0,
			dual_received DOUBLE PRECISION NOT NULL DEFAULT 0,
			dual_given DOUBLE PRECISION NOT NULL DEFAULT 0,
			solo_time DOUBLE PRECISION NOT NULL DEFAULT 0,
			distance_nm DOUBLE PRECISION NOT NULL DEFAULT 0,
			day_landings INTEGER NOT NULL DEFAULT 0,
			night_landings INTEGER NOT NULL DEFAULT 0,
			instructor TEXT,
			remarks TEXT,
			PRIMARY KEY (run_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_flight_records_date ON flight_records (flight_date);
		CREATE INDEX IF NOT EXISTS idx_flight_records_type ON flight_records (aircraft_type);

		-- Grand totals snapshot per run, category allocation as a vector
		-- in form column order
		CREATE TABLE IF NOT EXISTS grand_totals (
			run_id TEXT PRIMARY KEY REFERENCES runs(run_id) ON DELETE CASCADE,
			pic DOUBLE PRECISION NOT NULL,
			pic_xc DOUBLE PRECISION NOT NULL,
			sic DOUBLE PRECISION NOT NULL,
			student DOUBLE PRECISION NOT NULL,
			night_pic DOUBLE PRECISION NOT NULL,
			night_pic_xc DOUBLE PRECISION NOT NULL,
			night_sic DOUBLE PRECISION NOT NULL,
			night_student DOUBLE PRECISION NOT NULL,
			actual_inst DOUBLE PRECISION NOT NULL,
			sim_inst_air DOUBLE PRECISION NOT NULL,
			sim_device DOUBLE PRECISION NOT NULL,
			total DOUBLE PRECISION NOT NULL,
			form_total DOUBLE PRECISION NOT NULL,
			night DOUBLE PRECISION NOT NULL,
			dual DOUBLE PRECISION NOT NULL,
			dual_inst DOUBLE PRECISION NOT NULL,
			solo DOUBLE PRECISION NOT NULL,
			solo_xc DOUBLE PRECISION NOT NULL,
			night_landings INTEGER NOT NULL,
			xc DOUBLE PRECISION NOT NULL,
			xc_all_roles DOUBLE PRECISION NOT NULL,
			complex_time DOUBLE PRECISION NOT NULL,
			safety_pilot_se DOUBLE PRECISION NOT NULL,
			multi_engine DOUBLE PRECISION NOT NULL,
			flights INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			category_totals DOUBLE PRECISION[] NOT NULL
		);

		-- Periodic pipeline counter snapshots
		CREATE TABLE IF NOT EXISTS pipeline_stats (
			time TIMESTAMPTZ NOT NULL,
			rows_read BIGINT NOT NULL DEFAULT 0,
			rows_imported BIGINT NOT NULL DEFAULT 0,
			rows_skipped BIGINT NOT NULL DEFAULT 0,
			pic_flights BIGINT NOT NULL DEFAULT 0,
			sic_flights BIGINT NOT NULL DEFAULT 0,
			student_flights BIGINT NOT NULL DEFAULT 0,
			safety_pilot_flights BIGINT NOT NULL DEFAULT 0,
			simulator_entries BIGINT NOT NULL DEFAULT 0,
			default_categories BIGINT NOT NULL DEFAULT 0,
			jobs_processed BIGINT NOT NULL DEFAULT 0,
			jobs_failed BIGINT NOT NULL DEFAULT 0,
			processing_time_ms BIGINT NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_pipeline_stats_time ON pipeline_stats (time DESC);

		-- Verification outcomes
		CREATE TABLE IF NOT EXISTS reconciliations (
			run_id TEXT PRIMARY KEY REFERENCES runs(run_id) ON DELETE CASCADE,
			form_total DOUBLE PRECISION NOT NULL,
			role_sum DOUBLE PRECISION NOT NULL,
			sum_check_diff DOUBLE PRECISION NOT NULL,
			sum_check_pass BOOLEAN NOT NULL,
			caai_grand_total DOUBLE PRECISION NOT NULL,
			type_mismatches INTEGER NOT NULL,
			category_mismatches INTEGER NOT NULL,
			checked_at TIMESTAMPTZ NOT NULL
		);
	`,
	DownSQL: `
		DROP TABLE IF EXISTS pipeline_stats;
		DROP TABLE IF EXISTS reconciliations;
		DROP TABLE IF EXISTS grand_totals;
		DROP TABLE IF EXISTS flight_records;
		DROP TABLE IF EXISTS runs;
	`,
	CreatedAt: time.Now(),
}
