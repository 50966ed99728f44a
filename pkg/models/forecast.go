package models

// ForecastMethod is the sum type dispatching between the two supported
// time-series models, chosen by value rather than by a type hierarchy.
type ForecastMethod string

const (
	MethodARIMA                 ForecastMethod = "arima"
	MethodExponentialSmoothing  ForecastMethod = "exponential_smoothing"
	MethodAuto                  ForecastMethod = "auto"
)

// MonthlyForecastPoint is a single predicted month within a CostForecast.
type MonthlyForecastPoint struct {
	Month         CalendarDate `json:"month"`
	PredictedCost Money        `json:"predicted_cost"`
	LowerBound    Money        `json:"lower_bound"`
	UpperBound    Money        `json:"upper_bound"`
}

// ModelMetrics reports holdout accuracy for a fitted forecast model.
type ModelMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	MAPE float64 `json:"mape"`
}

// CostForecast is the persisted output of the Forecaster for one asset.
type CostForecast struct {
	EquipmentRef          string                 `json:"equipment_ref" db:"equipment_ref"`
	ForecastDate           CalendarDate           `json:"forecast_date" db:"forecast_date"`
	HorizonMonths          int                    `json:"horizon_months" db:"horizon_months"`
	Method                 ForecastMethod         `json:"method" db:"method"`
	MonthlyForecasts       []MonthlyForecastPoint `json:"monthly_forecasts" db:"-"`
	MonthlyForecastsJSON   string                 `json:"-" db:"monthly_forecasts"`
	AnnualTCOCurrentYear   Money                  `json:"annual_tco_current_year" db:"annual_tco_current_year"`
	AnnualTCONextYear      Money                  `json:"annual_tco_next_year" db:"annual_tco_next_year"`
	CumulativeTCOToDate    Money                  `json:"cumulative_tco_to_date" db:"cumulative_tco_to_date"`
	ModelMetrics           ModelMetrics           `json:"model_metrics" db:"-"`
	ModelMetricsJSON       string                 `json:"-" db:"model_metrics"`
}

// ReplacementAction is the recommended outcome of a repair-vs-replace
// decision.
type ReplacementAction string

const (
	ActionContinueOperating  ReplacementAction = "continue_operating"
	ActionPlanReplacement    ReplacementAction = "plan_replacement"
	ActionReplaceImmediately ReplacementAction = "replace_immediately"
)

// ReplacementAnalysis is the persisted output of NPVAnalyzer.RepairVsReplace.
type ReplacementAnalysis struct {
	EquipmentRef               string            `json:"equipment_ref" db:"equipment_ref"`
	AnalysisDate               CalendarDate      `json:"analysis_date" db:"analysis_date"`
	CurrentAgeMonths           int               `json:"current_age_months" db:"current_age_months"`
	RemainingBookValue         Money             `json:"remaining_book_value" db:"remaining_book_value"`
	AnnualMaintenanceCurrent   Money             `json:"annual_maintenance_current" db:"annual_maintenance_current"`
	AnnualMaintenanceProjected Money             `json:"annual_maintenance_projected" db:"annual_maintenance_projected"`
	ReplacementCostEstimate    Money             `json:"replacement_cost_estimate" db:"replacement_cost_estimate"`
	NPVContinueOperating       Money             `json:"npv_continue_operating" db:"npv_continue_operating"`
	NPVReplaceNow              Money             `json:"npv_replace_now" db:"npv_replace_now"`
	NPVSavingsIfReplaced       Money             `json:"npv_savings_if_replaced" db:"npv_savings_if_replaced"`
	RecommendedAction          ReplacementAction `json:"recommended_action" db:"recommended_action"`
	DiscountRate               Rate              `json:"discount_rate" db:"discount_rate"`
	OptimalReplacementDate     *CalendarDate     `json:"optimal_replacement_date,omitempty" db:"optimal_replacement_date"`
}

// DepreciationMethod selects between straight-line and MACRS schedules.
type DepreciationMethod string

const (
	DepStraightLine DepreciationMethod = "straight_line"
	DepMACRS        DepreciationMethod = "macrs"
)

// DepreciationSchedule is a single fiscal year's row in an asset's
// depreciation schedule.
type DepreciationSchedule struct {
	EquipmentRef            string             `json:"equipment_ref" db:"equipment_ref"`
	FiscalYear              int                `json:"fiscal_year" db:"fiscal_year"`
	Method                  DepreciationMethod `json:"method" db:"method"`
	BeginningBookValue      Money              `json:"beginning_book_value" db:"beginning_book_value"`
	DepreciationExpense     Money              `json:"depreciation_expense" db:"depreciation_expense"`
	EndingBookValue         Money              `json:"ending_book_value" db:"ending_book_value"`
	AccumulatedDepreciation Money              `json:"accumulated_depreciation" db:"accumulated_depreciation"`
}

// BathtubCurveParams are the seven fitted parameters of the piecewise
// failure-rate model for an equipment class.
type BathtubCurveParams struct {
	EquipmentClass string  `json:"equipment_class" db:"equipment_class"`
	ShapeEarly     float64 `json:"shape_early" db:"shape_early"`
	ScaleEarly     float64 `json:"scale_early" db:"scale_early"`
	RateUseful     float64 `json:"rate_useful" db:"rate_useful"`
	ShapeWear      float64 `json:"shape_wear" db:"shape_wear"`
	ScaleWear      float64 `json:"scale_wear" db:"scale_wear"`
	TEarly         float64 `json:"t_early" db:"t_early"`
	TWear          float64 `json:"t_wear" db:"t_wear"`
}

// RemainingLifeMethod records which estimation path produced a
// RemainingLifeEstimate.
type RemainingLifeMethod string

const (
	RLMethodUsefulLifeDefault     RemainingLifeMethod = "useful_life_default"
	RLMethodBathtubCurve          RemainingLifeMethod = "bathtub_curve"
	RLMethodBathtubCurveNoThreshold RemainingLifeMethod = "bathtub_curve_no_threshold"
)

// RemainingLifeEstimate is the result of BathtubModeler.EstimateRemainingUsefulLife.
type RemainingLifeEstimate struct {
	EquipmentRef      string              `json:"equipment_ref"`
	RemainingMonths   int                 `json:"remaining_months"`
	Confidence        float64             `json:"confidence"`
	Method            RemainingLifeMethod `json:"method"`
}

// FailurePrediction is the result of MTBFPredictor.PredictNextFailure.
type FailurePrediction struct {
	EquipmentRef            string       `json:"equipment_ref"`
	MTBFDays                float64      `json:"mtbf_days"`
	PredictedNextFailure    CalendarDate `json:"predicted_next_failure"`
	ProbabilityWithin90Days float64      `json:"probability_within_90_days"`
	EstimatedRepairCost     Money        `json:"estimated_repair_cost"`
}

// TCOReport is the result of TCOCalculator.CalculateTCO.
type TCOReport struct {
	EquipmentRef                    string  `json:"equipment_ref"`
	AsOf                             CalendarDate `json:"as_of"`
	AcquisitionCost                  Money   `json:"acquisition_cost"`
	CumulativeMaintenance            Money   `json:"cumulative_maintenance"`
	DowntimeCost                     Money   `json:"downtime_cost"`
	TotalTCO                         Money   `json:"total_tco"`
	AgeYears                         float64 `json:"age_years"`
	AnnualizedTCO                    Money   `json:"annualized_tco"`
	MaintenanceToAcquisitionRatio    float64 `json:"maintenance_to_acquisition_ratio"`
}

// TCOComparison is the result of TCOCalculator.CompareTCO.
type TCOComparison struct {
	Reports            []TCOReport `json:"reports"`
	BestAssetTag       string      `json:"best_asset_tag"`
	WorstAssetTag      string      `json:"worst_asset_tag"`
	FleetAvgAnnualized Money       `json:"fleet_avg_annualized_tco"`
}

// FleetCostSummary is a fleet-wide rollup of per-asset cost figures,
// used by the dashboard and fleet report.
type FleetCostSummary struct {
	FacilityID        string             `json:"facility_id,omitempty"`
	TotalEquipment     int                `json:"total_equipment"`
	TotalAnnualCost    Money              `json:"total_annual_cost"`
	AvgCostPerAsset    Money              `json:"avg_cost_per_asset"`
	TopCostClasses     []ClassCostRanking `json:"top_cost_classes"`
	AgingAssetsCount   int                `json:"aging_assets_count"`
}

// ClassCostRanking is one entry in FleetCostSummary.TopCostClasses.
type ClassCostRanking struct {
	Class      string `json:"class" db:"class"`
	AnnualCost Money  `json:"annual_cost" db:"annual_cost"`
}

// AgeCohort is one age bucket of the fleet age-distribution breakdown
// (0-2, 3-5, 6-8, 9-11, 12+ years), with a per-class asset count and
// trailing-12-month cost figures for that bucket.
type AgeCohort struct {
	Cohort                string         `json:"cohort"`
	Count                 int            `json:"count"`
	EquipmentClasses      map[string]int `json:"equipment_classes"`
	TotalAnnualCost       Money          `json:"total_annual_cost"`
	AvgAnnualCostPerAsset Money          `json:"avg_annual_cost_per_asset"`
}

// ReplacementPriority is one ranked entry from
// FleetOptimizer.RankReplacementPriorities.
type ReplacementPriority struct {
	Rank               int               `json:"rank"`
	EquipmentRef       string            `json:"equipment_ref"`
	AssetTag           string            `json:"asset_tag"`
	AgeMonths          int               `json:"age_months"`
	NPVSavings         Money             `json:"npv_savings"`
	ReplacementCost    Money             `json:"replacement_cost"`
	RecommendedAction  ReplacementAction `json:"recommended_action"`
	WithinBudget       bool              `json:"within_budget"`
}

// ReplacementScheduleYear is one fiscal year's slice of
// FleetOptimizer.OptimalReplacementSchedule.
type ReplacementScheduleYear struct {
	FiscalYear    int                   `json:"fiscal_year"`
	Replacements  []ReplacementPriority `json:"replacements"`
	YearSpend     Money                 `json:"year_spend"`
	YearSavings   Money                 `json:"year_savings"`
}

// ReplacementSchedule is the full multi-year schedule with totals.
type ReplacementSchedule struct {
	Years       []ReplacementScheduleYear `json:"years"`
	TotalSpend  Money                     `json:"total_spend"`
	TotalSavings Money                    `json:"total_savings"`
}
