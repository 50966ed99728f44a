package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point monetary amount, always quantized to 2 fractional
// digits. Zero value is $0.00.
type Money struct {
	d decimal.Decimal
}

// NewMoney builds a Money from a float, quantizing to 2 places.
func NewMoney(v float64) Money {
	return Money{d: decimal.NewFromFloat(v).Round(2)}
}

// MoneyFromDecimal wraps an already-computed decimal, quantizing to 2 places.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d: d.Round(2)}
}

func (m Money) Decimal() decimal.Decimal { return m.d }
func (m Money) Float64() float64         { f, _ := m.d.Float64(); return f }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d).Round(2)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d).Round(2)} }
func (m Money) Mul(f float64) Money {
	return Money{d: m.d.Mul(decimal.NewFromFloat(f)).Round(2)}
}
func (m Money) Div(f float64) Money {
	if f == 0 {
		return Money{}
	}
	return Money{d: m.d.Div(decimal.NewFromFloat(f)).Round(2)}
}
func (m Money) Neg() Money { return Money{d: m.d.Neg()} }

func (m Money) IsZero() bool       { return m.d.IsZero() }
func (m Money) IsPositive() bool   { return m.d.IsPositive() }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }

func (m Money) String() string { return m.d.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.d = d.Round(2)
	return nil
}

// Value implements driver.Valuer for sqlx/database-sql persistence.
func (m Money) Value() (driver.Value, error) {
	return m.d.StringFixed(2), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		m.d = decimal.Zero
		return nil
	case float64:
		m.d = decimal.NewFromFloat(v).Round(2)
		return nil
	case int64:
		m.d = decimal.NewFromInt(v).Round(2)
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return err
		}
		m.d = d.Round(2)
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		m.d = d.Round(2)
		return nil
	default:
		return fmt.Errorf("models: cannot scan %T into Money", src)
	}
}

// Rate is a fixed-point fraction quantized to 4 places (the discount rate
// of a ReplacementAnalysis).
type Rate struct {
	d decimal.Decimal
}

func NewRate(v float64) Rate {
	return Rate{d: decimal.NewFromFloat(v).Round(4)}
}

func (r Rate) Float64() float64 { f, _ := r.d.Float64(); return f }
func (r Rate) String() string   { return r.d.StringFixed(4) }

func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.d.StringFixed(4)), nil
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	r.d = d.Round(4)
	return nil
}

func (r Rate) Value() (driver.Value, error) {
	return r.d.StringFixed(4), nil
}

func (r *Rate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.d = decimal.Zero
		return nil
	case float64:
		r.d = decimal.NewFromFloat(v).Round(4)
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return err
		}
		r.d = d.Round(4)
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		r.d = d.Round(4)
		return nil
	default:
		return fmt.Errorf("models: cannot scan %T into Rate", src)
	}
}

// CalendarDate is a time.Time truncated to UTC midnight — a date without a
// time-of-day component.
type CalendarDate struct {
	t time.Time
}

const calendarDateLayout = "2006-01-02"

// NewCalendarDate truncates an arbitrary time to its UTC calendar date.
func NewCalendarDate(t time.Time) CalendarDate {
	y, mo, d := t.Date()
	return CalendarDate{t: time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current UTC calendar date.
func Today() CalendarDate { return NewCalendarDate(time.Now()) }

// FirstOfMonth truncates to the first day of the date's month.
func (d CalendarDate) FirstOfMonth() CalendarDate {
	y, mo, _ := d.t.Date()
	return CalendarDate{t: time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)}
}

// AddMonths advances by n wall-clock months (negative n moves backward).
func (d CalendarDate) AddMonths(n int) CalendarDate {
	return NewCalendarDate(d.t.AddDate(0, n, 0))
}

// AddDays advances by n days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.t.AddDate(0, 0, n))
}

func (d CalendarDate) Year() int       { return d.t.Year() }
func (d CalendarDate) Month() int      { return int(d.t.Month()) }
func (d CalendarDate) Day() int        { return d.t.Day() }
func (d CalendarDate) Time() time.Time { return d.t }

// Before, After, Equal mirror time.Time's comparison semantics.
func (d CalendarDate) Before(o CalendarDate) bool { return d.t.Before(o.t) }
func (d CalendarDate) After(o CalendarDate) bool  { return d.t.After(o.t) }
func (d CalendarDate) Equal(o CalendarDate) bool  { return d.t.Equal(o.t) }

// SubDays returns the number of days from o to d (d - o).
func (d CalendarDate) SubDays(o CalendarDate) int {
	return int(d.t.Sub(o.t).Hours() / 24)
}

// FiscalYear returns the October-September fiscal year this date belongs to:
// year+1 when month >= October, else year.
func (d CalendarDate) FiscalYear() int {
	if d.Month() >= 10 {
		return d.Year() + 1
	}
	return d.Year()
}

func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

func (d CalendarDate) String() string { return d.t.Format(calendarDateLayout) }

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(calendarDateLayout) + `"`), nil
}

func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		d.t = time.Time{}
		return nil
	}
	t, err := time.Parse(calendarDateLayout, s)
	if err != nil {
		return err
	}
	*d = NewCalendarDate(t)
	return nil
}

func (d CalendarDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.t.Format(calendarDateLayout), nil
}

func (d *CalendarDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		d.t = time.Time{}
		return nil
	case time.Time:
		*d = NewCalendarDate(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("models: cannot scan %T into CalendarDate", src)
	}
}

func (d *CalendarDate) scanString(s string) error {
	if s == "" {
		d.t = time.Time{}
		return nil
	}
	// Accept either a plain date or a full RFC3339 timestamp (sqlite drivers
	// sometimes round-trip DATE columns as timestamps).
	if t, err := time.Parse(calendarDateLayout, s[:min(len(s), 10)]); err == nil {
		*d = NewCalendarDate(t)
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*d = NewCalendarDate(t)
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
