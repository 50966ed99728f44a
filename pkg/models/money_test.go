package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_ArithmeticRoundsToCents(t *testing.T) {
	a := NewMoney(10.005)
	b := NewMoney(2.004)

	assert.Equal(t, "10.01", a.String())
	assert.Equal(t, "12.01", a.Add(b).String())
	assert.Equal(t, "8.01", a.Sub(b).String())
	assert.Equal(t, "20.02", a.Mul(2).String())
	assert.Equal(t, "5.01", a.Div(2).String())
}

func TestMoney_DivByZeroReturnsZero(t *testing.T) {
	m := NewMoney(500).Div(0)
	assert.True(t, m.IsZero())
}

func TestMoney_ComparisonHelpers(t *testing.T) {
	low := NewMoney(10)
	high := NewMoney(20)

	assert.True(t, high.GreaterThan(low))
	assert.True(t, low.LessThan(high))
	assert.Equal(t, 0, low.Cmp(NewMoney(10)))
	assert.True(t, NewMoney(0).IsZero())
	assert.True(t, NewMoney(1).IsPositive())
}

func TestMoney_ValueAndScanRoundTrip(t *testing.T) {
	m := NewMoney(1234.5)
	v, err := m.Value()
	require.NoError(t, err)

	var scanned Money
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, m.String(), scanned.String())

	var fromFloat Money
	require.NoError(t, fromFloat.Scan(1234.5))
	assert.Equal(t, m.String(), fromFloat.String())

	var fromNil Money
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var fromBogus Money
	assert.Error(t, fromBogus.Scan(true))
}

func TestMoney_MarshalUnmarshalJSON(t *testing.T) {
	m := NewMoney(99.9)
	b, err := m.MarshalJSON()
	require.NoError(t, err)

	var round Money
	require.NoError(t, round.UnmarshalJSON(b))
	assert.Equal(t, m.String(), round.String())
}

func TestCalendarDate_FirstOfMonthAndAddMonths(t *testing.T) {
	d := NewCalendarDate(time.Date(2026, time.March, 17, 13, 45, 0, 0, time.UTC))

	assert.Equal(t, "2026-03-01", d.FirstOfMonth().String())
	assert.Equal(t, "2026-05-17", d.AddMonths(2).String())
	assert.Equal(t, "2026-01-17", d.AddMonths(-2).String())
}

func TestCalendarDate_SubDaysAndComparisons(t *testing.T) {
	earlier := NewCalendarDate(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	later := NewCalendarDate(time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 10, later.SubDays(earlier))
	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.True(t, earlier.Equal(NewCalendarDate(time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC))))
}

func TestCalendarDate_FiscalYearCrossesOctober(t *testing.T) {
	beforeOctober := NewCalendarDate(time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC))
	onOctober := NewCalendarDate(time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 2026, beforeOctober.FiscalYear())
	assert.Equal(t, 2027, onOctober.FiscalYear())
}

func TestCalendarDate_ScanAcceptsDateAndTimestamp(t *testing.T) {
	var fromDate CalendarDate
	require.NoError(t, fromDate.Scan("2026-06-15"))
	assert.Equal(t, "2026-06-15", fromDate.String())

	var fromTimestamp CalendarDate
	require.NoError(t, fromTimestamp.Scan("2026-06-15T08:30:00Z"))
	assert.Equal(t, "2026-06-15", fromTimestamp.String())

	var fromBytes CalendarDate
	require.NoError(t, fromBytes.Scan([]byte("2026-06-15")))
	assert.Equal(t, "2026-06-15", fromBytes.String())

	var fromTime CalendarDate
	require.NoError(t, fromTime.Scan(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-06-15", fromTime.String())

	var fromNil CalendarDate
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())
}

func TestCalendarDate_ValueIsNilForZero(t *testing.T) {
	var zero CalendarDate
	v, err := zero.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRate_RoundsToFourPlaces(t *testing.T) {
	r := NewRate(0.080125)
	assert.Equal(t, "0.0801", r.String())

	v, err := r.Value()
	require.NoError(t, err)

	var scanned Rate
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, r.String(), scanned.String())
}
