package scheduler

import (
	"sync"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	hour, minute, err := parseClock("06:30")
	if err != nil {
		t.Fatalf("parseClock: %v", err)
	}
	if hour != 6 || minute != 30 {
		t.Fatalf("got %d:%d", hour, minute)
	}

	for _, bad := range []string{"", "6", "24:00", "12:60", "ab:cd"} {
		if _, _, err := parseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	day, err := parseWeekday(" Sunday ")
	if err != nil {
		t.Fatalf("parseWeekday: %v", err)
	}
	if day != time.Sunday {
		t.Fatalf("got %v", day)
	}

	if _, err := parseWeekday("someday"); err == nil {
		t.Fatalf("expected error for unknown weekday")
	}
}

func TestDailyTriggerNextFire(t *testing.T) {
	t.Parallel()

	trigger, err := NewDailyTrigger("ingest", "06:00", time.UTC, nil)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}

	// Before 06:00 the fire is the same day; after, the next day.
	morning := time.Date(2026, time.March, 5, 5, 0, 0, 0, time.UTC)
	next := trigger.after(morning)
	want := time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	evening := time.Date(2026, time.March, 5, 18, 0, 0, 0, time.UTC)
	next = trigger.after(evening)
	want = time.Date(2026, time.March, 6, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestDailyTriggerExactBoundaryRollsOver(t *testing.T) {
	t.Parallel()

	trigger, err := NewDailyTrigger("ingest", "06:00", time.UTC, nil)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}

	at := time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	next := trigger.after(at)
	want := time.Date(2026, time.March, 6, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestWeeklyTriggerNextFire(t *testing.T) {
	t.Parallel()

	trigger, err := NewWeeklyTrigger("cleanup", "Sunday", "02:00", time.UTC, nil)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}

	// 2026-03-05 is a Thursday; next Sunday is the 8th.
	thursday := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	next := trigger.after(thursday)
	want := time.Date(2026, time.March, 8, 2, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}

	// Sunday after 02:00 rolls a full week.
	sunday := time.Date(2026, time.March, 8, 3, 0, 0, 0, time.UTC)
	next = trigger.after(sunday)
	want = time.Date(2026, time.March, 15, 2, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %v, want %v", next, want)
	}
}

func TestTriggerRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewDailyTrigger("x", "25:00", time.UTC, nil); err == nil {
		t.Fatalf("expected error for bad clock")
	}
	if _, err := NewWeeklyTrigger("x", "Noday", "02:00", time.UTC, nil); err == nil {
		t.Fatalf("expected error for bad weekday")
	}
}

func TestTriggerStartStopLifecycle(t *testing.T) {
	t.Parallel()

	trigger, err := NewDailyTrigger("ingest", "06:00", time.UTC, nil)
	if err != nil {
		t.Fatalf("new trigger: %v", err)
	}

	if trigger.Active() {
		t.Fatalf("fresh trigger must be inactive")
	}

	trigger.Start(func(time.Time) {})
	if !trigger.Active() {
		t.Fatalf("expected active after Start")
	}

	// Idempotent: a second Start must not panic or double-arm.
	trigger.Start(func(time.Time) {})

	trigger.Stop()
	if trigger.Active() {
		t.Fatalf("expected inactive after Stop")
	}
	if !trigger.Next().IsZero() {
		t.Fatalf("stopped trigger reports a next fire: %v", trigger.Next())
	}

	// Stop on a stopped trigger is a no-op.
	trigger.Stop()
}

func TestStoppedTriggerNeverRearms(t *testing.T) {
	t.Parallel()

	trigger := &ClockTrigger{name: "test"}
	stop := make(chan struct{})

	next := time.Date(2026, time.March, 5, 6, 0, 0, 0, time.UTC)
	if !trigger.armNext(next, stop) {
		t.Fatalf("expected armNext to succeed on a live trigger")
	}
	if !trigger.Next().Equal(next) {
		t.Fatalf("Next() = %v, want %v", trigger.Next(), next)
	}

	// Once stop is closed the loop must not publish a new fire time,
	// otherwise Next() would report a fire on an inactive trigger.
	close(stop)
	trigger.nextFire = time.Time{}
	if trigger.armNext(next.AddDate(0, 0, 1), stop) {
		t.Fatalf("armNext must refuse after stop")
	}
	if !trigger.Next().IsZero() {
		t.Fatalf("stopped trigger reports a next fire: %v", trigger.Next())
	}
}

func TestFireSkipsOverlappingRuns(t *testing.T) {
	t.Parallel()

	trigger := &ClockTrigger{name: "test"}

	release := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	runs := 0

	job := func(time.Time) {
		mu.Lock()
		runs++
		mu.Unlock()
		close(started)
		<-release
	}

	trigger.fire(job, time.Now())
	<-started

	// Second fire while the first run is blocked must be skipped.
	trigger.fire(job, time.Now())
	close(release)

	// Wait for the in-flight flag to clear.
	deadline := time.After(time.Second)
	for trigger.inFlight.Load() {
		select {
		case <-deadline:
			t.Fatalf("run never finished")
		case <-time.After(5 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if runs != 1 {
		t.Fatalf("expected 1 run, got %d", runs)
	}
}
