package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joelpate/equipcost/internal/aggregator"
	"github.com/joelpate/equipcost/internal/depreciation"
	"github.com/joelpate/equipcost/internal/fleet"
	"github.com/joelpate/equipcost/internal/forecast"
	"github.com/joelpate/equipcost/internal/npv"
	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/tco"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

// handlers wires every HTTP route to the analytical core. BathtubModeler
// and MTBFPredictor have no HTTP route in the external interface and are
// exercised only from the CLI's analyze subcommand.
type handlers struct {
	db       store.Store
	agg      *aggregator.Aggregator
	dep      *depreciation.Depreciator
	fc       *forecast.Forecaster
	tc       *tco.TCOCalculator
	nv       *npv.NPVAnalyzer
	fleetOpt *fleet.FleetOptimizer
	metrics  *metricsCollector
}

// Config holds the tunables passed through from the environment or CLI
// flags, including EQUIPCOST_DISCOUNT_RATE and the downtime hourly rate.
type Config struct {
	DiscountRate       float64
	DowntimeHourlyRate float64
	MinHistoryMonths   int
}

func newHandlers(db store.Store, cfg Config) *handlers {
	return &handlers{
		db:       db,
		agg:      aggregator.New(db),
		dep:      depreciation.New(db),
		fc:       forecast.New(db, cfg.MinHistoryMonths),
		tc:       tco.New(db, cfg.DowntimeHourlyRate),
		nv:       npv.New(db, cfg.DiscountRate),
		fleetOpt: fleet.New(db, cfg.DiscountRate),
		metrics:  newMetricsCollector(),
	}
}

func (h *handlers) listEquipment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.EquipmentFilter{
		FacilityID: q.Get("facility"),
		Class:      q.Get("class"),
	}
	if s := q.Get("status"); s != "" {
		filter.Status = models.EquipmentStatus(s)
	}

	tx, err := h.db.BeginTx(r.Context())
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "begin transaction"))
		return
	}
	defer tx.Rollback()

	items, err := tx.ListEquipment(r.Context(), filter)
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "list equipment"))
		return
	}

	p := parsePage(r)
	start, end := p.slice(len(items))
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items:      items[start:end],
		Page:       p.Number,
		PageSize:   p.Size,
		TotalItems: len(items),
	})
}

func (h *handlers) getEquipment(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	tx, err := h.db.BeginTx(r.Context())
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "begin transaction"))
		return
	}
	defer tx.Rollback()

	eq, err := tx.GetEquipment(r.Context(), tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eq)
}

func (h *handlers) listWorkOrders(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	tx, err := h.db.BeginTx(r.Context())
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "begin transaction"))
		return
	}
	defer tx.Rollback()

	if _, err := tx.GetEquipment(r.Context(), tag); err != nil {
		writeError(w, r, err)
		return
	}
	wos, err := tx.ListWorkOrders(r.Context(), tag)
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "list work orders"))
		return
	}

	p := parsePage(r)
	start, end := p.slice(len(wos))
	writeJSON(w, http.StatusOK, paginatedResponse{
		Items:      wos[start:end],
		Page:       p.Number,
		PageSize:   p.Size,
		TotalItems: len(wos),
	})
}

func (h *handlers) costHistory(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	history, err := h.agg.GetCostHistory(r.Context(), tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type generateForecastRequest struct {
	EquipmentRef string `json:"equipment_ref"`
	HorizonMonths int   `json:"horizon_months"`
	Method        string `json:"method"`
}

func (h *handlers) generateForecast(w http.ResponseWriter, r *http.Request) {
	var req generateForecastRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, apperr.InvalidArgument(err.Error()))
		return
	}
	horizon := req.HorizonMonths
	if horizon <= 0 {
		horizon = 36
	}
	method := models.ForecastMethod(req.Method)
	if method == "" {
		method = models.MethodAuto
	}

	result, err := h.fc.ForecastEquipment(r.Context(), req.EquipmentRef, horizon, method)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.metrics.forecastRuns.WithLabelValues(string(method), outcome).Inc()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) getForecast(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	result, err := h.fc.ForecastEquipment(r.Context(), tag, 36, models.MethodAuto)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) fleetForecastSummary(w http.ResponseWriter, r *http.Request) {
	facility := r.URL.Query().Get("facility")
	summary, err := h.agg.GetFleetCostSummary(r.Context(), facility)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handlers) getTCO(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	report, err := h.tc.CalculateTCO(r.Context(), tag, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) compareTCO(w http.ResponseWriter, r *http.Request) {
	tags := r.URL.Query()["tag"]
	cmp, err := h.tc.CompareTCO(r.Context(), tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

type repairVsReplaceRequest struct {
	ReplacementCost *float64 `json:"replacement_cost"`
	HorizonYears    int      `json:"horizon_years"`
}

func (h *handlers) repairVsReplace(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	var req repairVsReplaceRequest
	_ = decodeJSON(r, &req)

	var cost *models.Money
	if req.ReplacementCost != nil {
		m := models.NewMoney(*req.ReplacementCost)
		cost = &m
	}
	horizon := req.HorizonYears
	if horizon <= 0 {
		horizon = 5
	}

	analysis, err := h.nv.RepairVsReplace(r.Context(), tag, cost, horizon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *handlers) getDepreciation(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	method := models.DepStraightLine
	if m := r.URL.Query().Get("method"); m == string(models.DepMACRS) {
		method = models.DepMACRS
	}

	bookValue, err := h.dep.ComputeBookValue(r.Context(), tag, method)
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := h.db.BeginTx(r.Context())
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "begin transaction"))
		return
	}
	defer tx.Rollback()

	schedule, err := tx.GetDepreciationSchedule(r.Context(), tag, method)
	if err != nil {
		writeError(w, r, apperr.StoreError(err, "get depreciation schedule"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"equipment_ref":      tag,
		"method":             method,
		"current_book_value": bookValue,
		"schedule":           schedule,
	})
}

func (h *handlers) replacementPriorities(w http.ResponseWriter, r *http.Request) {
	facility := r.URL.Query().Get("facility")
	budget := parseFloatQuery(r, "budget", 2_000_000)

	priorities, err := h.fleetOpt.RankReplacementPriorities(r.Context(), facility, models.NewMoney(budget))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, priorities)
}

func (h *handlers) replacementSchedule(w http.ResponseWriter, r *http.Request) {
	facility := r.URL.Query().Get("facility")
	budget := parseFloatQuery(r, "budget", 2_000_000)
	horizon := int(parseFloatQuery(r, "horizon_years", 5))

	schedule, err := h.fleetOpt.OptimalReplacementSchedule(r.Context(), facility, models.NewMoney(budget), horizon)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *handlers) ageAnalysis(w http.ResponseWriter, r *http.Request) {
	facility := r.URL.Query().Get("facility")

	cohorts, err := h.agg.AgeCohortAnalysis(r.Context(), facility)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"facility_id": facility,
		"cohorts":     cohorts,
	})
}

func (h *handlers) fleetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
