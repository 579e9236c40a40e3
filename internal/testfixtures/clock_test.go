package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2026, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	if updated := clock.Advance(90 * time.Minute); !updated.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.NowFunc()(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockSameDay(t *testing.T) {
	clock := NewClock(time.Date(2026, time.March, 14, 23, 0, 0, 0, time.UTC))

	if !clock.SameDay(time.Date(2026, time.March, 14, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected same day")
	}
	if clock.SameDay(time.Date(2026, time.March, 15, 0, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected different day")
	}
}
