// Package date wraps civil.Date with the SQL plumbing needed to store
// date-only milestone fields (announce, effective, ex, record, pay) in
// postgres DATE columns without timezone drift.
package date

import (
	"database/sql/driver"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

type Date struct {
	civil.Date
}

func New(year int, month time.Month, day int) Date {
	return Date{Date: civil.Date{Year: year, Month: month, Day: day}}
}

func DateOf(t time.Time) Date {
	var d Date
	d.Date.Year, d.Date.Month, d.Date.Day = t.Date()
	return d
}

// Parse accepts the ISO form only ("2006-01-02").
func Parse(s string) (Date, error) {
	d, err := civil.ParseDate(s)
	if err != nil {
		return Date{}, err
	}
	return Date{Date: d}, nil
}

// Ptr is a convenience for the many optional date fields on the aggregate.
func Ptr(d Date) *Date {
	return &d
}

func (d Date) Equal(other Date) bool {
	return d.Date == other.Date
}

func (d Date) After(other Date) bool {
	return other.Date.Before(d.Date)
}

func (d Date) Value() (driver.Value, error) {
	return d.Date.String(), nil
}

func (d *Date) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		if !v.IsZero() {
			d.Date = civil.DateOf(v)
		}
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		d.Date = parsed.Date
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		d.Date = parsed.Date
		return nil
	default:
		return fmt.Errorf("unsupported date column type %T", value)
	}
}
