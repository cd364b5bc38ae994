package migrations

import "time"

// RunReports adds the aggregate views the run history endpoints read
var RunReports = &Migration{
	ID:   "002_run_reports",
	Name: "002_run_reports",
	UpSQL: `
	-- Monthly conversion activity
	CREATE MATERIALIZED VIEW IF NOT EXISTS run_monthly_stats AS
	SELECT
		date_trunc('month', started_at) AS month,
		COUNT(*) AS runs,
		COUNT(*) FILTER (WHERE sum_check_pass) AS clean_runs,
		SUM(flights) AS flights,
		SUM(skipped) AS skipped,
		SUM(form_total) AS form_hours
	FROM runs
	WHERE finished_at IS NOT NULL
	GROUP BY month
	WITH NO DATA;

	CREATE UNIQUE INDEX IF NOT EXISTS idx_run_monthly_stats_month
		ON run_monthly_stats (month);

	-- Per-aircraft-type hours across all archived runs
	CREATE MATERIALIZED VIEW IF NOT EXISTS fleet_type_hours AS
	SELECT
		aircraft_type,
		COUNT(*) AS flights,
		SUM(total_time) AS total_time,
		SUM(night_time) AS night_time,
		MIN(flight_date) AS first_flight,
		MAX(flight_date) AS last_flight
	FROM flight_records
	WHERE aircraft_type IS NOT NULL AND aircraft_type <> ''
	GROUP BY aircraft_type
	WITH NO DATA;

	CREATE UNIQUE INDEX IF NOT EXISTS idx_fleet_type_hours_type
		ON fleet_type_hours (aircraft_type);
	`,
	DownSQL: `
	DROP MATERIALIZED VIEW IF EXISTS fleet_type_hours;
	DROP MATERIALIZED VIEW IF EXISTS run_monthly_stats;
	`,
	CreatedAt: time.Now(),
}
