package schedule

import (
	"testing"
	"time"
)

func TestStartOfHour(t *testing.T) {
	in := time.Date(2024, 1, 10, 15, 30, 45, 999, time.UTC)
	want := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	if got := StartOfHour(in); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestStartOfHourAlreadyAligned(t *testing.T) {
	in := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	if got := StartOfHour(in); !got.Equal(in) {
		t.Fatalf("expected aligned time unchanged, got %s", got)
	}
}

func TestStartOfHourHalfHourZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	in := time.Date(2024, 1, 10, 15, 30, 0, 0, loc)
	got := StartOfHour(in)
	if got.Hour() != 15 || got.Minute() != 0 {
		t.Fatalf("expected wall-clock 15:00, got %s", got)
	}
}

func TestIsPast(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	if !IsPast(now.Add(-time.Second), now) {
		t.Fatalf("expected earlier time to be past")
	}
	if IsPast(now, now) {
		t.Fatalf("expected equal time not to be past")
	}
	if IsPast(now.Add(time.Second), now) {
		t.Fatalf("expected later time not to be past")
	}
}

func TestHoursBefore(t *testing.T) {
	at := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	want := time.Date(2024, 1, 10, 13, 0, 0, 0, time.UTC)
	if got := HoursBefore(at, 2); !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
