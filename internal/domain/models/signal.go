package models

import (
	"fmt"
	"time"
)

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText renders the date as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses YYYY-MM-DD.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("parse date %q: %w", b, err)
	}
	*d = DateOf(t)
	return nil
}

// NoData is the register code for a day the provider said nothing about.
const NoData uint16 = 0

// DailySignal is one provider verdict for one calendar day.
type DailySignal struct {
	Date    Date
	Value   uint16
	Message string // advisory text, ecowatt only; never exposed over Modbus
}

// WindowDay is one slot of a register window.
type WindowDay struct {
	Offset  int    `json:"offset"`
	Address uint16 `json:"address"`
	Date    Date   `json:"date"`
	Value   uint16 `json:"value"`
	Color   string `json:"color"`
	Message string `json:"message,omitempty"`
}

// SignalWindow is the fixed run of days a job last wrote to its block.
type SignalWindow struct {
	Job       string      `json:"job"`
	RunID     string      `json:"run_id"`
	Generated time.Time   `json:"generated"`
	Fetched   bool        `json:"fetched"`
	Days      []WindowDay `json:"days"`
}

// Palette maps register codes to color names for one provider.
type Palette []string

// Name returns the color name for code v, or "n/a" when out of range.
func (p Palette) Name(v uint16) string {
	if int(v) < len(p) {
		return p[v]
	}
	return "n/a"
}

var (
	EcogazPalette  = Palette{"n/a", "green", "yellow", "orange", "red"}
	EcowattPalette = Palette{"n/a", "green", "orange", "red"}
)

// RegisterValue is the content of one register slot: a 16-bit code or unknown.
type RegisterValue struct {
	V     uint16
	Known bool
}

// Known wraps v as a populated register value.
func Known(v uint16) RegisterValue { return RegisterValue{V: v, Known: true} }

// Unknown is the value of a slot not yet populated, or explicitly cleared.
func Unknown() RegisterValue { return RegisterValue{} }
