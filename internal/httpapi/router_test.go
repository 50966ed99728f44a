package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/models"
)

func newTestRouter(t *testing.T) (http.Handler, context.Context) {
	t.Helper()
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: "EQ-1", Serial: "SN-1", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Now().AddDate(-2, 0, 0)),
		AcquisitionCost: models.NewMoney(20000), Status: models.StatusActive,
	}))
	require.NoError(t, tx.Commit())

	return NewRouter(db, Config{DiscountRate: 0.08, DowntimeHourlyRate: 500, MinHistoryMonths: 24}), ctx
}

func TestGetEquipment_Found(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/equipment/EQ-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEquipment_NotFoundReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/equipment/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEquipment_Paginates(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/equipment/?page=1&page_size=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompareTCO_RequiresTwoTagsReturnsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/tco/compare?tag=EQ-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint_ReportsHealthy(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint_ExposesPrometheusFormat(t *testing.T) {
	router, _ := newTestRouter(t)

	// The request counter has no series until a request has completed.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "equipcost_http_requests_total")
}

func TestAgeAnalysis_BucketsFixtureAssetIntoYoungCohort(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/fleet/age-analysis?facility=FAC-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "0-2 years")
	assert.Contains(t, rec.Body.String(), "ventilator")
}
