package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joelpate/equipcost/internal/store/sqlgen"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// sqlBackend is the shared implementation behind both sqlitestore and
// pgstore: every query is written once against "?" placeholders and rebound
// per-driver by sqlx, and the only hand-dialected SQL is month truncation
// (sqlgen.Dialect.MonthTruncExpr) and the year extraction in
// ClassRepairYearCounts.
type sqlBackend struct {
	db      *sqlx.DB
	dialect sqlgen.Dialect
	cache   *ReadCache
}

// NewSQLBackend wires an already-open *sqlx.DB against a dialect and
// optional read cache. Exported so internal/store/sqlitestore and
// internal/store/pgstore can each supply their own driver-specific
// connection setup and share the rest.
func NewSQLBackend(db *sqlx.DB, dialect sqlgen.Dialect, cache *ReadCache) Store {
	return &sqlBackend{db: db, dialect: dialect, cache: cache}
}

func (s *sqlBackend) Close() error { return s.db.Close() }

func (s *sqlBackend) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperr.StoreError(err, "migrate")
		}
	}
	return nil
}

func (s *sqlBackend) BeginTx(ctx context.Context) (Tx, error) {
	sqlxTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperr.StoreError(err, "begin transaction")
	}
	return &sqlTx{tx: sqlxTx, dialect: s.dialect, cache: s.cache}, nil
}

type sqlTx struct {
	tx      *sqlx.Tx
	dialect sqlgen.Dialect
	cache   *ReadCache
}

func (t *sqlTx) Commit() error   { return t.tx.Commit() }
func (t *sqlTx) Rollback() error { return t.tx.Rollback() }

func (t *sqlTx) rebind(query string) string { return t.tx.Rebind(query) }

// --- Equipment registry ----------------------------------------------------

func (t *sqlTx) GetEquipment(ctx context.Context, assetTag string) (*models.EquipmentRegistry, error) {
	var e models.EquipmentRegistry
	query := t.rebind(`SELECT asset_tag, serial, class, manufacturer, model, facility_id, department,
		acquisition_date, acquisition_cost, installation_date, warranty_expiration, useful_life_months,
		status, disposition_date, disposition_method FROM equipment_registry WHERE asset_tag = ?`)
	err := t.tx.GetContext(ctx, &e, query, assetTag)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("equipment", assetTag)
	}
	if err != nil {
		return nil, apperr.StoreError(err, "get equipment")
	}
	return &e, nil
}

func (t *sqlTx) ListEquipment(ctx context.Context, filter EquipmentFilter) ([]models.EquipmentRegistry, error) {
	query := `SELECT asset_tag, serial, class, manufacturer, model, facility_id, department,
		acquisition_date, acquisition_cost, installation_date, warranty_expiration, useful_life_months,
		status, disposition_date, disposition_method FROM equipment_registry WHERE 1=1`
	var args []interface{}
	if filter.FacilityID != "" {
		query += " AND facility_id = ?"
		args = append(args, filter.FacilityID)
	}
	if filter.Class != "" {
		query += " AND class = ?"
		args = append(args, filter.Class)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY asset_tag"

	var rows []models.EquipmentRegistry
	if err := t.tx.SelectContext(ctx, &rows, t.rebind(query), args...); err != nil {
		return nil, apperr.StoreError(err, "list equipment")
	}
	return rows, nil
}

func (t *sqlTx) UpsertEquipment(ctx context.Context, e models.EquipmentRegistry) error {
	_, err := t.tx.ExecContext(ctx, t.rebind(`DELETE FROM equipment_registry WHERE asset_tag = ?`), e.AssetTag)
	if err != nil {
		return apperr.StoreError(err, "upsert equipment (delete)")
	}
	query := t.rebind(`INSERT INTO equipment_registry
		(asset_tag, serial, class, manufacturer, model, facility_id, department, acquisition_date,
		 acquisition_cost, installation_date, warranty_expiration, useful_life_months, status,
		 disposition_date, disposition_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = t.tx.ExecContext(ctx, query, e.AssetTag, e.Serial, e.Class, e.Manufacturer, e.Model,
		e.FacilityID, e.Department, e.AcquisitionDate, e.AcquisitionCost, e.InstallationDate,
		e.WarrantyExpiration, e.UsefulLifeMonths, e.Status, e.DispositionDate, e.DispositionMethod)
	if err != nil {
		return apperr.StoreError(err, "upsert equipment (insert)")
	}
	return nil
}

// --- Work orders ------------------------------------------------------------

func (t *sqlTx) ListWorkOrders(ctx context.Context, equipmentRef string) ([]models.WorkOrder, error) {
	query := t.rebind(`SELECT wo_number, equipment_ref, type, priority, opened_date, completed_date,
		labor_hours, labor_cost, parts_cost, vendor_service_cost, total_cost, downtime_hours,
		technician_type, root_cause FROM work_orders WHERE equipment_ref = ? ORDER BY opened_date`)
	var rows []models.WorkOrder
	if err := t.tx.SelectContext(ctx, &rows, query, equipmentRef); err != nil {
		return nil, apperr.StoreError(err, "list work orders")
	}
	return rows, nil
}

func (t *sqlTx) ListCorrectiveWorkOrders(ctx context.Context, equipmentRef string) ([]models.WorkOrder, error) {
	query := t.rebind(`SELECT wo_number, equipment_ref, type, priority, opened_date, completed_date,
		labor_hours, labor_cost, parts_cost, vendor_service_cost, total_cost, downtime_hours,
		technician_type, root_cause FROM work_orders
		WHERE equipment_ref = ? AND type = ? ORDER BY opened_date`)
	var rows []models.WorkOrder
	if err := t.tx.SelectContext(ctx, &rows, query, equipmentRef, models.WOCorrectiveRepair); err != nil {
		return nil, apperr.StoreError(err, "list corrective work orders")
	}
	return rows, nil
}

func (t *sqlTx) MonthlyWorkOrderGroups(ctx context.Context, equipmentRef string) ([]WorkOrderMonthGroup, error) {
	monthExpr := t.dialect.MonthTruncExpr("opened_date")
	query := t.rebind(fmt.Sprintf(`SELECT %s AS month, type,
		COALESCE(SUM(total_cost), 0) AS total_cost,
		COALESCE(SUM(parts_cost), 0) AS parts_cost,
		COALESCE(SUM(downtime_hours), 0) AS downtime_hours,
		COUNT(*) AS work_order_count
		FROM work_orders WHERE equipment_ref = ?
		GROUP BY %s, type ORDER BY month`, monthExpr, monthExpr))

	rows, err := t.tx.QueryxContext(ctx, query, equipmentRef)
	if err != nil {
		return nil, apperr.StoreError(err, "monthly work order groups")
	}
	defer rows.Close()

	var out []WorkOrderMonthGroup
	for rows.Next() {
		var g WorkOrderMonthGroup
		var woType string
		if err := rows.Scan(&g.Month, &woType, &g.TotalCost, &g.PartsCost, &g.DowntimeHours, &g.WorkOrderCount); err != nil {
			return nil, apperr.StoreError(err, "scan monthly work order group")
		}
		g.Type = models.WorkOrderType(woType)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (t *sqlTx) InsertWorkOrder(ctx context.Context, wo models.WorkOrder) error {
	query := t.rebind(`INSERT INTO work_orders
		(wo_number, equipment_ref, type, priority, opened_date, completed_date, labor_hours,
		 labor_cost, parts_cost, vendor_service_cost, total_cost, downtime_hours, technician_type, root_cause)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, wo.WONumber, wo.EquipmentRef, wo.Type, wo.Priority,
		wo.OpenedDate, wo.CompletedDate, wo.LaborHours, wo.LaborCost, wo.PartsCost,
		wo.VendorServiceCost, wo.TotalCost, wo.DowntimeHours, wo.TechnicianType, wo.RootCause)
	if err != nil {
		return apperr.StoreError(err, "insert work order")
	}
	return nil
}

// --- Service contracts -------------------------------------------------------

func (t *sqlTx) ListContracts(ctx context.Context, equipmentRef string) ([]models.ServiceContract, error) {
	query := t.rebind(`SELECT equipment_ref, type, provider, annual_cost, start_date, end_date,
		includes_parts, includes_labor, includes_pm, response_time_hours, uptime_guarantee_pct
		FROM service_contracts WHERE equipment_ref = ? ORDER BY start_date`)
	var rows []models.ServiceContract
	if err := t.tx.SelectContext(ctx, &rows, query, equipmentRef); err != nil {
		return nil, apperr.StoreError(err, "list contracts")
	}
	return rows, nil
}

func (t *sqlTx) InsertContract(ctx context.Context, c models.ServiceContract) error {
	query := t.rebind(`INSERT INTO service_contracts
		(equipment_ref, type, provider, annual_cost, start_date, end_date, includes_parts,
		 includes_labor, includes_pm, response_time_hours, uptime_guarantee_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, c.EquipmentRef, c.Type, c.Provider, c.AnnualCost,
		c.StartDate, c.EndDate, c.IncludesParts, c.IncludesLabor, c.IncludesPM,
		c.ResponseTimeHours, c.UptimeGuaranteePct)
	if err != nil {
		return apperr.StoreError(err, "insert contract")
	}
	return nil
}

// --- PM schedules -------------------------------------------------------------

func (t *sqlTx) InsertPMSchedule(ctx context.Context, p models.PMSchedule) error {
	query := t.rebind(`INSERT INTO pm_schedules
		(equipment_ref, pm_type, frequency_months, estimated_duration_hours, estimated_cost,
		 last_completed, next_due) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, p.EquipmentRef, p.PMType, p.FrequencyMonths,
		p.EstimatedDurationHours, p.EstimatedCost, p.LastCompleted, p.NextDue)
	if err != nil {
		return apperr.StoreError(err, "insert pm schedule")
	}
	return nil
}

// --- Monthly rollups ------------------------------------------------------------

func (t *sqlTx) DeleteRollups(ctx context.Context, equipmentRef string) error {
	_, err := t.tx.ExecContext(ctx, t.rebind(`DELETE FROM monthly_rollups WHERE equipment_ref = ?`), equipmentRef)
	if err != nil {
		return apperr.StoreError(err, "delete rollups")
	}
	t.cache.invalidate(costHistoryKey(equipmentRef))
	return nil
}

func (t *sqlTx) InsertRollup(ctx context.Context, r models.MonthlyRollup) error {
	query := t.rebind(`INSERT INTO monthly_rollups
		(equipment_ref, month, pm_cost, corrective_cost, parts_cost, contract_cost_allocated,
		 downtime_hours, work_order_count, total_cost) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, r.EquipmentRef, r.Month, r.PMCost, r.CorrectiveCost,
		r.PartsCost, r.ContractCostAllocated, r.DowntimeHours, r.WorkOrderCount, r.TotalCost)
	if err != nil {
		return apperr.StoreError(err, "insert rollup")
	}
	t.cache.invalidate(costHistoryKey(r.EquipmentRef))
	return nil
}

func (t *sqlTx) GetCostHistory(ctx context.Context, equipmentRef string) ([]models.MonthlyRollup, error) {
	if cached, ok := t.cache.get(costHistoryKey(equipmentRef)); ok {
		if rows, ok := cached.([]models.MonthlyRollup); ok {
			return rows, nil
		}
	}
	query := t.rebind(`SELECT equipment_ref, month, pm_cost, corrective_cost, parts_cost,
		contract_cost_allocated, downtime_hours, work_order_count, total_cost
		FROM monthly_rollups WHERE equipment_ref = ? ORDER BY month`)
	var rows []models.MonthlyRollup
	if err := t.tx.SelectContext(ctx, &rows, query, equipmentRef); err != nil {
		return nil, apperr.StoreError(err, "get cost history")
	}
	t.cache.set(costHistoryKey(equipmentRef), rows)
	return rows, nil
}

func (t *sqlTx) TrailingRollupTotal(ctx context.Context, equipmentRef string, sinceDays int) (models.Money, int, error) {
	cutoff := models.Today().AddDays(-sinceDays)
	query := t.rebind(`SELECT COALESCE(SUM(total_cost), 0), COUNT(*) FROM monthly_rollups
		WHERE equipment_ref = ? AND month >= ?`)
	var total models.Money
	var count int
	if err := t.tx.QueryRowxContext(ctx, query, equipmentRef, cutoff).Scan(&total, &count); err != nil {
		return models.Money{}, 0, apperr.StoreError(err, "trailing rollup total")
	}
	return total, count, nil
}

func (t *sqlTx) RollupTotalsThrough(ctx context.Context, equipmentRef string, asOf *models.CalendarDate) (RollupTotals, error) {
	query := `SELECT COALESCE(SUM(pm_cost),0), COALESCE(SUM(corrective_cost),0), COALESCE(SUM(parts_cost),0),
		COALESCE(SUM(contract_cost_allocated),0), COALESCE(SUM(total_cost),0), COALESCE(SUM(downtime_hours),0)
		FROM monthly_rollups WHERE equipment_ref = ?`
	args := []interface{}{equipmentRef}
	if asOf != nil {
		query += " AND month <= ?"
		args = append(args, *asOf)
	}
	var tot RollupTotals
	row := t.tx.QueryRowxContext(ctx, t.rebind(query), args...)
	if err := row.Scan(&tot.PMCost, &tot.CorrectiveCost, &tot.PartsCost, &tot.ContractCostAllocated,
		&tot.TotalCost, &tot.DowntimeHours); err != nil {
		return RollupTotals{}, apperr.StoreError(err, "rollup totals")
	}
	return tot, nil
}

// --- Cost forecasts ----------------------------------------------------------

func (t *sqlTx) InsertCostForecast(ctx context.Context, f models.CostForecast) error {
	forecastsJSON, err := json.Marshal(f.MonthlyForecasts)
	if err != nil {
		return apperr.StoreError(err, "marshal monthly forecasts")
	}
	metricsJSON, err := json.Marshal(f.ModelMetrics)
	if err != nil {
		return apperr.StoreError(err, "marshal model metrics")
	}
	query := t.rebind(`INSERT INTO cost_forecasts
		(equipment_ref, forecast_date, horizon_months, method, monthly_forecasts,
		 annual_tco_current_year, annual_tco_next_year, cumulative_tco_to_date, model_metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = t.tx.ExecContext(ctx, query, f.EquipmentRef, f.ForecastDate, f.HorizonMonths, f.Method,
		string(forecastsJSON), f.AnnualTCOCurrentYear, f.AnnualTCONextYear, f.CumulativeTCOToDate,
		string(metricsJSON))
	if err != nil {
		return apperr.StoreError(err, "insert cost forecast")
	}
	return nil
}

// --- Depreciation schedules ----------------------------------------------------

func (t *sqlTx) DeleteDepreciationSchedule(ctx context.Context, equipmentRef string, method models.DepreciationMethod) error {
	query := t.rebind(`DELETE FROM depreciation_schedules WHERE equipment_ref = ? AND method = ?`)
	if _, err := t.tx.ExecContext(ctx, query, equipmentRef, method); err != nil {
		return apperr.StoreError(err, "delete depreciation schedule")
	}
	return nil
}

func (t *sqlTx) InsertDepreciationRow(ctx context.Context, row models.DepreciationSchedule) error {
	query := t.rebind(`INSERT INTO depreciation_schedules
		(equipment_ref, fiscal_year, method, beginning_book_value, depreciation_expense,
		 ending_book_value, accumulated_depreciation) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, row.EquipmentRef, row.FiscalYear, row.Method,
		row.BeginningBookValue, row.DepreciationExpense, row.EndingBookValue, row.AccumulatedDepreciation)
	if err != nil {
		return apperr.StoreError(err, "insert depreciation row")
	}
	return nil
}

func (t *sqlTx) GetDepreciationSchedule(ctx context.Context, equipmentRef string, method models.DepreciationMethod) ([]models.DepreciationSchedule, error) {
	query := t.rebind(`SELECT equipment_ref, fiscal_year, method, beginning_book_value,
		depreciation_expense, ending_book_value, accumulated_depreciation
		FROM depreciation_schedules WHERE equipment_ref = ? AND method = ? ORDER BY fiscal_year`)
	var rows []models.DepreciationSchedule
	if err := t.tx.SelectContext(ctx, &rows, query, equipmentRef, method); err != nil {
		return nil, apperr.StoreError(err, "get depreciation schedule")
	}
	return rows, nil
}

// --- Replacement analysis -------------------------------------------------------

func (t *sqlTx) InsertReplacementAnalysis(ctx context.Context, ra models.ReplacementAnalysis) error {
	query := t.rebind(`INSERT INTO replacement_analyses
		(equipment_ref, analysis_date, current_age_months, remaining_book_value,
		 annual_maintenance_current, annual_maintenance_projected, replacement_cost_estimate,
		 npv_continue_operating, npv_replace_now, npv_savings_if_replaced, recommended_action,
		 discount_rate, optimal_replacement_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := t.tx.ExecContext(ctx, query, ra.EquipmentRef, ra.AnalysisDate, ra.CurrentAgeMonths,
		ra.RemainingBookValue, ra.AnnualMaintenanceCurrent, ra.AnnualMaintenanceProjected,
		ra.ReplacementCostEstimate, ra.NPVContinueOperating, ra.NPVReplaceNow,
		ra.NPVSavingsIfReplaced, ra.RecommendedAction, ra.DiscountRate, ra.OptimalReplacementDate)
	if err != nil {
		return apperr.StoreError(err, "insert replacement analysis")
	}
	return nil
}

// --- Class-level aggregation ------------------------------------------------------

func (t *sqlTx) ClassRepairYearCounts(ctx context.Context, class string) ([]ClassYearRepairCount, error) {
	if cached, ok := t.cache.get(classRepairsKey(class)); ok {
		if rows, ok := cached.([]ClassYearRepairCount); ok {
			return rows, nil
		}
	}

	yearExpr := "strftime('%Y', wo.opened_date)"
	if t.dialect.Name == "postgres" {
		yearExpr = "extract(year from wo.opened_date)::text"
	}
	query := t.rebind(fmt.Sprintf(`SELECT e.acquisition_date, %s AS yr, COUNT(*)
		FROM work_orders wo JOIN equipment_registry e ON e.asset_tag = wo.equipment_ref
		WHERE e.class = ? AND wo.type = ?
		GROUP BY e.asset_tag, e.acquisition_date, yr`, yearExpr))

	rows, err := t.tx.QueryxContext(ctx, query, class, models.WOCorrectiveRepair)
	if err != nil {
		return nil, apperr.StoreError(err, "class repair year counts")
	}
	defer rows.Close()

	var out []ClassYearRepairCount
	for rows.Next() {
		var acq models.CalendarDate
		var yearStr string
		var count int
		if err := rows.Scan(&acq, &yearStr, &count); err != nil {
			return nil, apperr.StoreError(err, "scan class repair year count")
		}
		var year int
		if _, err := fmt.Sscanf(yearStr, "%d", &year); err != nil {
			continue
		}
		midYear := models.NewCalendarDate(time.Date(year, 7, 1, 0, 0, 0, 0, time.UTC))
		ageMonths := float64(midYear.SubDays(acq)) / 30.44
		if ageMonths <= 0 {
			continue
		}
		out = append(out, ClassYearRepairCount{AgeMonths: ageMonths, AnnualRepairCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StoreError(err, "class repair year counts rows")
	}
	t.cache.set(classRepairsKey(class), out)
	return out, nil
}

func (t *sqlTx) ClassAvgAcquisitionCost(ctx context.Context, class, excludeAssetTag string) (models.Money, error) {
	query := t.rebind(`SELECT COALESCE(AVG(acquisition_cost), 0) FROM equipment_registry
		WHERE class = ? AND asset_tag != ?`)
	var avg models.Money
	if err := t.tx.QueryRowxContext(ctx, query, class, excludeAssetTag).Scan(&avg); err != nil {
		return models.Money{}, apperr.StoreError(err, "class avg acquisition cost")
	}
	return avg, nil
}

// --- Fleet-wide aggregations --------------------------------------------------

func (t *sqlTx) ListActiveEquipment(ctx context.Context, facilityID string) ([]models.EquipmentRegistry, error) {
	return t.ListEquipment(ctx, EquipmentFilter{FacilityID: facilityID, Status: models.StatusActive})
}

func (t *sqlTx) CountAgingAssets(ctx context.Context, facilityID string) (int, error) {
	query := `SELECT acquisition_date, useful_life_months FROM equipment_registry WHERE useful_life_months IS NOT NULL`
	var args []interface{}
	if facilityID != "" {
		query += " AND facility_id = ?"
		args = append(args, facilityID)
	}
	rows, err := t.tx.QueryxContext(ctx, t.rebind(query), args...)
	if err != nil {
		return 0, apperr.StoreError(err, "count aging assets")
	}
	defer rows.Close()

	today := models.Today()
	count := 0
	for rows.Next() {
		var acq models.CalendarDate
		var lifeMonths int
		if err := rows.Scan(&acq, &lifeMonths); err != nil {
			return 0, apperr.StoreError(err, "scan aging asset")
		}
		ageMonths := float64(today.SubDays(acq)) / 30.44
		if ageMonths > float64(lifeMonths) {
			count++
		}
	}
	return count, rows.Err()
}

func (t *sqlTx) TopCostClasses(ctx context.Context, facilityID string, limit int) ([]models.ClassCostRanking, error) {
	cutoff := models.Today().AddDays(-365)
	query := `SELECT e.class, COALESCE(SUM(r.total_cost), 0) AS annual_cost
		FROM monthly_rollups r JOIN equipment_registry e ON e.asset_tag = r.equipment_ref
		WHERE r.month >= ?`
	args := []interface{}{cutoff}
	if facilityID != "" {
		query += " AND e.facility_id = ?"
		args = append(args, facilityID)
	}
	query += " GROUP BY e.class ORDER BY annual_cost DESC LIMIT ?"
	args = append(args, limit)

	var out []models.ClassCostRanking
	if err := t.tx.SelectContext(ctx, &out, t.rebind(query), args...); err != nil {
		return nil, apperr.StoreError(err, "top cost classes")
	}
	return out, nil
}

func (t *sqlTx) FleetTotalAnnualCost(ctx context.Context, facilityID string) (models.Money, int, error) {
	cutoff := models.Today().AddDays(-365)
	query := `SELECT COALESCE(SUM(r.total_cost), 0), COUNT(DISTINCT r.equipment_ref)
		FROM monthly_rollups r JOIN equipment_registry e ON e.asset_tag = r.equipment_ref
		WHERE r.month >= ?`
	args := []interface{}{cutoff}
	if facilityID != "" {
		query += " AND e.facility_id = ?"
		args = append(args, facilityID)
	}
	var total models.Money
	var count int
	if err := t.tx.QueryRowxContext(ctx, t.rebind(query), args...).Scan(&total, &count); err != nil {
		return models.Money{}, 0, apperr.StoreError(err, "fleet total annual cost")
	}
	return total, count, nil
}
