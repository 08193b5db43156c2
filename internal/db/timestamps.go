package db

import (
	"fmt"
	"time"

	"github.com/randalmurphal/opengrid/internal/db/driver"
)

// SQLite has no timestamp type, so times round-trip as RFC3339 text there.
// PostgreSQL columns are TIMESTAMPTZ and take time.Time directly.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// now returns the current time at the precision both backends can store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// timeArg converts t into the bind value the dialect expects.
func timeArg(dialect driver.Dialect, t time.Time) any {
	if dialect == driver.DialectPostgres {
		return t.UTC()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// optionalTimeArg is timeArg for nullable columns.
func optionalTimeArg(dialect driver.Dialect, t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeArg(dialect, *t)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// nullTime scans TEXT (SQLite) and TIMESTAMPTZ (PostgreSQL) columns alike.
type nullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (n *nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = nullTime{}
		return nil
	case time.Time:
		*n = nullTime{Time: v.UTC(), Valid: true}
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("scan time: unsupported type %T", src)
	}
}

func (n *nullTime) parse(s string) error {
	if s == "" {
		*n = nullTime{}
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		return err
	}
	*n = nullTime{Time: t, Valid: true}
	return nil
}

// Ptr returns nil for NULL, otherwise a pointer to the time.
func (n nullTime) Ptr() *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
