package models

// EquipmentStatus is the lifecycle state of a registry entry.
type EquipmentStatus string

const (
	StatusActive             EquipmentStatus = "active"
	StatusInactive            EquipmentStatus = "inactive"
	StatusPendingReplacement EquipmentStatus = "pending_replacement"
)

// EquipmentRegistry is a single tracked piece of capital equipment.
type EquipmentRegistry struct {
	AssetTag             string          `json:"asset_tag" db:"asset_tag"`
	Serial               string          `json:"serial" db:"serial"`
	Class                string          `json:"class" db:"class"`
	Manufacturer         string          `json:"manufacturer" db:"manufacturer"`
	Model                string          `json:"model" db:"model"`
	FacilityID           string          `json:"facility_id" db:"facility_id"`
	Department           string          `json:"department" db:"department"`
	AcquisitionDate      CalendarDate    `json:"acquisition_date" db:"acquisition_date"`
	AcquisitionCost      Money           `json:"acquisition_cost" db:"acquisition_cost"`
	InstallationDate     *CalendarDate   `json:"installation_date,omitempty" db:"installation_date"`
	WarrantyExpiration   *CalendarDate   `json:"warranty_expiration,omitempty" db:"warranty_expiration"`
	UsefulLifeMonths     *int            `json:"useful_life_months,omitempty" db:"useful_life_months"`
	Status               EquipmentStatus `json:"status" db:"status"`
	DispositionDate      *CalendarDate   `json:"disposition_date,omitempty" db:"disposition_date"`
	DispositionMethod    *string         `json:"disposition_method,omitempty" db:"disposition_method"`
}

// WorkOrderType categorizes the kind of maintenance activity performed.
type WorkOrderType string

const (
	WOCorrectiveRepair     WorkOrderType = "corrective_repair"
	WOPreventiveMaintenance WorkOrderType = "preventive_maintenance"
	WOSafetyInspection     WorkOrderType = "safety_inspection"
	WOCalibration          WorkOrderType = "calibration"
)

// WorkOrderPriority is the urgency tier of a work order.
type WorkOrderPriority string

const (
	PriorityEmergency WorkOrderPriority = "emergency"
	PriorityUrgent    WorkOrderPriority = "urgent"
	PriorityRoutine   WorkOrderPriority = "routine"
	PriorityScheduled WorkOrderPriority = "scheduled"
)

// TechnicianType identifies who performed the work.
type TechnicianType string

const (
	TechInHouse       TechnicianType = "in_house"
	TechOEM           TechnicianType = "oem"
	TechThirdPartyISO TechnicianType = "third_party_iso"
)

// WorkOrder is a unit of maintenance activity against an asset.
type WorkOrder struct {
	WONumber          string            `json:"wo_number" db:"wo_number"`
	EquipmentRef      string            `json:"equipment_ref" db:"equipment_ref"`
	Type              WorkOrderType     `json:"type" db:"type"`
	Priority          WorkOrderPriority `json:"priority" db:"priority"`
	OpenedDate        CalendarDate      `json:"opened_date" db:"opened_date"`
	CompletedDate     *CalendarDate     `json:"completed_date,omitempty" db:"completed_date"`
	LaborHours        *float64          `json:"labor_hours,omitempty" db:"labor_hours"`
	LaborCost         *Money            `json:"labor_cost,omitempty" db:"labor_cost"`
	PartsCost         *Money            `json:"parts_cost,omitempty" db:"parts_cost"`
	VendorServiceCost *Money            `json:"vendor_service_cost,omitempty" db:"vendor_service_cost"`
	TotalCost         *Money            `json:"total_cost,omitempty" db:"total_cost"`
	DowntimeHours     *float64          `json:"downtime_hours,omitempty" db:"downtime_hours"`
	TechnicianType    TechnicianType    `json:"technician_type" db:"technician_type"`
	RootCause         *string           `json:"root_cause,omitempty" db:"root_cause"`
}

// ContractType categorizes a service contract's coverage shape.
type ContractType string

const (
	ContractFullService      ContractType = "full_service"
	ContractPreventiveOnly   ContractType = "preventive_only"
	ContractPartsOnly        ContractType = "parts_only"
	ContractTimeAndMaterials ContractType = "time_and_materials"
	ContractPerCall          ContractType = "per_call"
)

// ServiceContract is a maintenance vendor agreement covering an asset.
type ServiceContract struct {
	EquipmentRef      string       `json:"equipment_ref" db:"equipment_ref"`
	Type              ContractType `json:"type" db:"type"`
	Provider          string       `json:"provider" db:"provider"`
	AnnualCost        Money        `json:"annual_cost" db:"annual_cost"`
	StartDate         CalendarDate `json:"start_date" db:"start_date"`
	EndDate           CalendarDate `json:"end_date" db:"end_date"`
	IncludesParts     bool         `json:"includes_parts" db:"includes_parts"`
	IncludesLabor     bool         `json:"includes_labor" db:"includes_labor"`
	IncludesPM        bool         `json:"includes_pm" db:"includes_pm"`
	ResponseTimeHours *float64     `json:"response_time_hours,omitempty" db:"response_time_hours"`
	UptimeGuaranteePct *float64    `json:"uptime_guarantee_pct,omitempty" db:"uptime_guarantee_pct"`
}

// PMSchedule is a recurring preventive-maintenance plan for an asset.
type PMSchedule struct {
	EquipmentRef           string        `json:"equipment_ref" db:"equipment_ref"`
	PMType                 string        `json:"pm_type" db:"pm_type"`
	FrequencyMonths        int           `json:"frequency_months" db:"frequency_months"`
	EstimatedDurationHours *float64      `json:"estimated_duration_hours,omitempty" db:"estimated_duration_hours"`
	EstimatedCost          *Money        `json:"estimated_cost,omitempty" db:"estimated_cost"`
	LastCompleted          *CalendarDate `json:"last_completed,omitempty" db:"last_completed"`
	NextDue                *CalendarDate `json:"next_due,omitempty" db:"next_due"`
}

// MonthlyRollup is the per-asset-per-month cost fact produced by the
// aggregator.
type MonthlyRollup struct {
	EquipmentRef          string       `json:"equipment_ref" db:"equipment_ref"`
	Month                 CalendarDate `json:"month" db:"month"`
	PMCost                Money        `json:"pm_cost" db:"pm_cost"`
	CorrectiveCost        Money        `json:"corrective_cost" db:"corrective_cost"`
	PartsCost             Money        `json:"parts_cost" db:"parts_cost"`
	ContractCostAllocated Money        `json:"contract_cost_allocated" db:"contract_cost_allocated"`
	DowntimeHours         float64      `json:"downtime_hours" db:"downtime_hours"`
	WorkOrderCount        int          `json:"work_order_count" db:"work_order_count"`
	TotalCost             Money        `json:"total_cost" db:"total_cost"`
}
