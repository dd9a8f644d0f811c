package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseDateOnly(t *testing.T) {
	got, ok := ParseDate("2022-11-07")
	if !ok {
		t.Fatalf("expected ok")
	}
	if y, m, d := got.Date(); y != 2022 || m != time.November || d != 7 {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateKeepsOffset(t *testing.T) {
	// midnight in Paris is still the previous day in UTC
	got, ok := ParseDate("2022-12-06T00:00:00+01:00")
	if !ok {
		t.Fatalf("expected ok")
	}
	if _, _, d := got.Date(); d != 6 {
		t.Fatalf("expected day 6 in source offset, got %v", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "tomorrow", "2022-13-01", "07/11/2022"} {
		if _, ok := ParseDate(s); ok {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestLoadLocationParis(t *testing.T) {
	loc, err := LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loc.String() != "Europe/Paris" {
		t.Fatalf("unexpected location %s", loc)
	}
}
