package mtbf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelpate/equipcost/internal/store"
	"github.com/joelpate/equipcost/internal/store/sqlitestore"
	"github.com/joelpate/equipcost/pkg/apperr"
	"github.com/joelpate/equipcost/pkg/models"
)

func seedCorrective(t *testing.T, ctx context.Context, db store.Store, assetTag string, openedDates []time.Time, costs []float64) {
	t.Helper()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.UpsertEquipment(ctx, models.EquipmentRegistry{
		AssetTag: assetTag, Serial: "SN", Class: "ventilator", Manufacturer: "Acme", Model: "M1",
		FacilityID: "FAC-1", Department: "ICU",
		AcquisitionDate: models.NewCalendarDate(time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)),
		AcquisitionCost: models.NewMoney(10000), Status: models.StatusActive,
	}))
	for i, d := range openedDates {
		cost := models.NewMoney(costs[i])
		require.NoError(t, tx.InsertWorkOrder(ctx, models.WorkOrder{
			WONumber: assetTag + "-WO-" + time.Now().Format("150405.000000000") + "-" + itoa(i),
			EquipmentRef: assetTag, Type: models.WOCorrectiveRepair, Priority: models.PriorityUrgent,
			OpenedDate: models.NewCalendarDate(d), TotalCost: &cost, TechnicianType: models.TechInHouse,
		}))
	}
	require.NoError(t, tx.Commit())
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var b []byte
	for i > 0 {
		b = append([]byte{digits[i%10]}, b...)
		i /= 10
	}
	return string(b)
}

func TestPredictNextFailure_InsufficientHistory(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	seedCorrective(t, ctx, db, "EQ-1", []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, []float64{500})

	p := New(db)
	_, err = p.PredictNextFailure(ctx, "EQ-1")
	require.Error(t, err)
	code, ok := apperr.Code(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeInsufficientRepairHistory, code)
}

func TestPredictNextFailure_ComputesMTBF(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitestore.Open(ctx, ":memory:", 0)
	require.NoError(t, err)
	defer db.Close()

	dates := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	costs := []float64{400, 450, 500}
	seedCorrective(t, ctx, db, "EQ-2", dates, costs)

	p := New(db)
	pred, err := p.PredictNextFailure(ctx, "EQ-2")
	require.NoError(t, err)
	assert.Greater(t, pred.MTBFDays, 0.0)
	assert.GreaterOrEqual(t, pred.ProbabilityWithin90Days, 0.0)
	assert.LessOrEqual(t, pred.ProbabilityWithin90Days, 1.0)
	assert.InDelta(t, 450*1.05, pred.EstimatedRepairCost.Float64(), 0.5)
}
