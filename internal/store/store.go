// Package store defines the abstract persistence contract the analytical
// core depends on, independent of the concrete sqlite or postgres backend
// selected at runtime.
package store

import (
	"context"

	"github.com/joelpate/equipcost/pkg/models"
)

// EquipmentFilter narrows ListEquipment by facility and/or class; empty
// fields are unconstrained.
type EquipmentFilter struct {
	FacilityID string
	Class      string
	Status     models.EquipmentStatus
}

// WorkOrderMonthGroup is one (month, type) aggregation bucket produced by
// Aggregator's grouped work-order query.
type WorkOrderMonthGroup struct {
	Month          models.CalendarDate
	Type           models.WorkOrderType
	TotalCost      models.Money
	PartsCost      models.Money
	DowntimeHours  float64
	WorkOrderCount int
}

// RollupTotals is the set of summed rollup fields used by the TCO
// calculator.
type RollupTotals struct {
	PMCost                models.Money
	CorrectiveCost        models.Money
	PartsCost             models.Money
	ContractCostAllocated models.Money
	TotalCost             models.Money
	DowntimeHours         float64
}

// ClassYearRepairCount is one calendar year's corrective-repair count for an
// asset of a given class, used by the bathtub curve fitter.
type ClassYearRepairCount struct {
	AgeMonths         float64
	AnnualRepairCount int
}

// Store is the top-level persistence handle; every operation runs inside a
// transaction the caller controls.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
	// Migrate creates every table if it does not already exist.
	Migrate(ctx context.Context) error
}

// Tx is a transactional view over every entity the core reads or writes.
// Callers must call Commit or Rollback exactly once.
type Tx interface {
	Commit() error
	Rollback() error

	// Equipment registry.
	GetEquipment(ctx context.Context, assetTag string) (*models.EquipmentRegistry, error)
	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]models.EquipmentRegistry, error)
	UpsertEquipment(ctx context.Context, e models.EquipmentRegistry) error

	// Work orders.
	ListWorkOrders(ctx context.Context, equipmentRef string) ([]models.WorkOrder, error)
	ListCorrectiveWorkOrders(ctx context.Context, equipmentRef string) ([]models.WorkOrder, error)
	MonthlyWorkOrderGroups(ctx context.Context, equipmentRef string) ([]WorkOrderMonthGroup, error)
	InsertWorkOrder(ctx context.Context, wo models.WorkOrder) error

	// Service contracts.
	ListContracts(ctx context.Context, equipmentRef string) ([]models.ServiceContract, error)
	InsertContract(ctx context.Context, c models.ServiceContract) error

	// PM schedules.
	InsertPMSchedule(ctx context.Context, p models.PMSchedule) error

	// Monthly rollups.
	DeleteRollups(ctx context.Context, equipmentRef string) error
	InsertRollup(ctx context.Context, r models.MonthlyRollup) error
	GetCostHistory(ctx context.Context, equipmentRef string) ([]models.MonthlyRollup, error)
	TrailingRollupTotal(ctx context.Context, equipmentRef string, sinceDays int) (models.Money, int, error)
	RollupTotalsThrough(ctx context.Context, equipmentRef string, asOf *models.CalendarDate) (RollupTotals, error)

	// Cost forecasts.
	InsertCostForecast(ctx context.Context, f models.CostForecast) error

	// Depreciation schedules.
	DeleteDepreciationSchedule(ctx context.Context, equipmentRef string, method models.DepreciationMethod) error
	InsertDepreciationRow(ctx context.Context, row models.DepreciationSchedule) error
	GetDepreciationSchedule(ctx context.Context, equipmentRef string, method models.DepreciationMethod) ([]models.DepreciationSchedule, error)

	// Replacement analysis.
	InsertReplacementAnalysis(ctx context.Context, ra models.ReplacementAnalysis) error

	// Class-level aggregation, shared by BathtubModeler and NPVAnalyzer.
	ClassRepairYearCounts(ctx context.Context, class string) ([]ClassYearRepairCount, error)
	ClassAvgAcquisitionCost(ctx context.Context, class, excludeAssetTag string) (models.Money, error)

	// Fleet-wide aggregations.
	ListActiveEquipment(ctx context.Context, facilityID string) ([]models.EquipmentRegistry, error)
	CountAgingAssets(ctx context.Context, facilityID string) (int, error)
	TopCostClasses(ctx context.Context, facilityID string, limit int) ([]models.ClassCostRanking, error)
	FleetTotalAnnualCost(ctx context.Context, facilityID string) (models.Money, int, error)
}
