package model

import (
	"encoding/json"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Date is a calendar date as written to the history store. The zero value is
// an absent date. A stored value that does not parse is kept verbatim and
// reported as invalid.
type Date struct {
	t   time.Time
	raw string
}

func NewDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts the store layout plus the timestamp shapes older rows
// were written with. Blank input is an absent date.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t)
		}
	}
	return Date{raw: s}
}

func (d Date) IsZero() bool { return d.t.IsZero() && d.raw == "" }

func (d Date) Valid() bool { return !d.t.IsZero() }

func (d Date) Invalid() bool { return d.t.IsZero() && d.raw != "" }

func (d Date) Time() time.Time { return d.t }

// ExpiredAt reports whether the date lies before now. Invalid dates count as
// expired; absent dates never do.
func (d Date) ExpiredAt(now time.Time) bool {
	if d.Invalid() {
		return true
	}
	return d.Valid() && d.t.Before(now)
}

func (d Date) String() string {
	if d.Valid() {
		return d.t.Format(DateLayout)
	}
	return d.raw
}

// Display is the dashboard rendering: "N/A" when absent, "Error" when the
// stored value is unreadable.
func (d Date) Display() string {
	switch {
	case d.Valid():
		return d.t.Format(DateLayout)
	case d.Invalid():
		return "Error"
	}
	return "N/A"
}

func (d Date) Equal(o Date) bool {
	return d.t.Equal(o.t) && d.raw == o.raw
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}
