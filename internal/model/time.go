package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// isoLayout is the wire format for every timestamp the API exposes: a
// naive ISO-8601 string in UTC with second precision and no zone suffix,
// mirroring how DATETIME columns are stored.
const isoLayout = "2006-01-02T15:04:05"

// Time wraps time.Time so that JSON marshalling produces the naive
// ISO-8601 form and database scanning accepts whatever the driver hands
// back (time.Time with parseTime=true, raw bytes otherwise).
type Time struct {
	time.Time
}

// NewTime returns a Time normalized to UTC with second precision.
func NewTime(t time.Time) Time {
	return Time{t.UTC().Truncate(time.Second)}
}

// MarshalJSON renders the timestamp as "2006-01-02T15:04:05" in UTC.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(isoLayout) + `"`), nil
}

// UnmarshalJSON accepts the naive layout as well as RFC3339 for
// tolerance with clients that append a zone suffix.
func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(isoLayout, s); err == nil {
		t.Time = parsed.UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

// Scan implements sql.Scanner.
func (t *Time) Scan(v interface{}) error {
	switch x := v.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = x.UTC()
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	}
	return fmt.Errorf("model: cannot scan %T into Time", v)
}

// Value implements driver.Valuer so Time can be used as a query argument.
func (t Time) Value() (driver.Value, error) {
	return t.UTC(), nil
}

func (t *Time) parse(s string) error {
	// DATETIME columns come back as "2006-01-02 15:04:05" when the driver
	// is not configured with parseTime.
	parsed, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		parsed, err = time.Parse(isoLayout, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed.UTC()
	return nil
}
