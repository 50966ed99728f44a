// Package sqlgen holds the month-truncation expression, which differs
// between the sqlite and postgres backends, and the table DDL, which is the
// same for both, so the rest of internal/store can share one query
// implementation against either driver.
package sqlgen

import "fmt"

// Dialect names the two divergence points between backends.
type Dialect struct {
	Name       string
	DriverName string
}

// SQLite truncates dates via strftime; this is the CLI's zero-config default.
var SQLite = Dialect{Name: "sqlite", DriverName: "sqlite3"}

// Postgres truncates dates via date_trunc.
var Postgres = Dialect{Name: "postgres", DriverName: "postgres"}

// MonthTruncExpr returns a SQL expression producing the first-of-month
// calendar date for the given column, so rollups group consistently
// regardless of which side of the store boundary performs the truncation.
func (d Dialect) MonthTruncExpr(column string) string {
	switch d.Name {
	case "postgres":
		return fmt.Sprintf("date_trunc('month', %s)::date", column)
	default:
		return fmt.Sprintf("date(strftime('%%Y-%%m-01', %s))", column)
	}
}

// Schema returns the CREATE TABLE statements for this dialect, in dependency
// order. Both dialects use string primary keys (asset_tag, wo_number) so no
// autoincrement/serial machinery is required.
func (d Dialect) Schema() []string {
	textType := "TEXT"
	dateType := "DATE"
	if d.Name == "postgres" {
		dateType = "DATE"
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS equipment_registry (
			asset_tag %s PRIMARY KEY,
			serial %s NOT NULL,
			class %s NOT NULL,
			manufacturer %s NOT NULL,
			model %s NOT NULL,
			facility_id %s NOT NULL,
			department %s NOT NULL,
			acquisition_date %s NOT NULL,
			acquisition_cost %s NOT NULL,
			installation_date %s,
			warranty_expiration %s,
			useful_life_months INTEGER,
			status %s NOT NULL,
			disposition_date %s,
			disposition_method %s
		)`, textType, textType, textType, textType, textType, textType, textType,
			dateType, textType, dateType, dateType, textType, dateType, textType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS work_orders (
			wo_number %s PRIMARY KEY,
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			type %s NOT NULL,
			priority %s NOT NULL,
			opened_date %s NOT NULL,
			completed_date %s,
			labor_hours DOUBLE PRECISION,
			labor_cost %s,
			parts_cost %s,
			vendor_service_cost %s,
			total_cost %s,
			downtime_hours DOUBLE PRECISION,
			technician_type %s NOT NULL,
			root_cause %s
		)`, textType, textType, textType, textType, dateType, dateType,
			textType, textType, textType, textType, textType, textType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS service_contracts (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			type %s NOT NULL,
			provider %s NOT NULL,
			annual_cost %s NOT NULL,
			start_date %s NOT NULL,
			end_date %s NOT NULL,
			includes_parts BOOLEAN NOT NULL DEFAULT FALSE,
			includes_labor BOOLEAN NOT NULL DEFAULT FALSE,
			includes_pm BOOLEAN NOT NULL DEFAULT FALSE,
			response_time_hours DOUBLE PRECISION,
			uptime_guarantee_pct DOUBLE PRECISION
		)`, textType, textType, textType, textType, dateType, dateType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pm_schedules (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			pm_type %s NOT NULL,
			frequency_months INTEGER NOT NULL,
			estimated_duration_hours DOUBLE PRECISION,
			estimated_cost %s,
			last_completed %s,
			next_due %s
		)`, textType, textType, textType, dateType, dateType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS monthly_rollups (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			month %s NOT NULL,
			pm_cost %s NOT NULL,
			corrective_cost %s NOT NULL,
			parts_cost %s NOT NULL,
			contract_cost_allocated %s NOT NULL,
			downtime_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			work_order_count INTEGER NOT NULL DEFAULT 0,
			total_cost %s NOT NULL,
			PRIMARY KEY (equipment_ref, month)
		)`, textType, dateType, textType, textType, textType, textType, textType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS cost_forecasts (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			forecast_date %s NOT NULL,
			horizon_months INTEGER NOT NULL,
			method %s NOT NULL,
			monthly_forecasts %s NOT NULL,
			annual_tco_current_year %s NOT NULL,
			annual_tco_next_year %s NOT NULL,
			cumulative_tco_to_date %s NOT NULL,
			model_metrics %s NOT NULL
		)`, textType, dateType, textType, textType, textType, textType, textType, textType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS replacement_analyses (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			analysis_date %s NOT NULL,
			current_age_months INTEGER NOT NULL,
			remaining_book_value %s NOT NULL,
			annual_maintenance_current %s NOT NULL,
			annual_maintenance_projected %s NOT NULL,
			replacement_cost_estimate %s NOT NULL,
			npv_continue_operating %s NOT NULL,
			npv_replace_now %s NOT NULL,
			npv_savings_if_replaced %s NOT NULL,
			recommended_action %s NOT NULL,
			discount_rate %s NOT NULL,
			optimal_replacement_date %s
		)`, textType, dateType, textType, textType, textType, textType, textType,
			textType, textType, textType, textType, dateType),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS depreciation_schedules (
			equipment_ref %s NOT NULL REFERENCES equipment_registry(asset_tag) ON DELETE CASCADE,
			fiscal_year INTEGER NOT NULL,
			method %s NOT NULL,
			beginning_book_value %s NOT NULL,
			depreciation_expense %s NOT NULL,
			ending_book_value %s NOT NULL,
			accumulated_depreciation %s NOT NULL,
			PRIMARY KEY (equipment_ref, method, fiscal_year)
		)`, textType, textType, textType, textType, textType, textType),
	}
}
