package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ClockTrigger fires a job at recurring wall-clock times in a fixed
// location. Overlapping runs of the same job are never started: if the
// previous run is still in flight when the trigger fires, that firing
// is skipped. The pipeline has no internal mutual exclusion, so this
// guard is load-bearing.
type ClockTrigger struct {
	name   string
	after  func(time.Time) time.Time
	logger *slog.Logger

	mu       sync.Mutex
	nextFire time.Time
	stop     chan struct{}
	active   bool

	inFlight atomic.Bool
}

// NewDailyTrigger fires every day at the given "HH:MM" local time.
func NewDailyTrigger(name, at string, loc *time.Location, logger *slog.Logger) (*ClockTrigger, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return nil, fmt.Errorf("daily trigger %s: %w", name, err)
	}

	after := func(now time.Time) time.Time {
		now = now.In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}

	return &ClockTrigger{name: name, after: after, logger: logger}, nil
}

// NewWeeklyTrigger fires once a week on the given weekday at "HH:MM".
func NewWeeklyTrigger(name, weekday, at string, loc *time.Location, logger *slog.Logger) (*ClockTrigger, error) {
	day, err := parseWeekday(weekday)
	if err != nil {
		return nil, fmt.Errorf("weekly trigger %s: %w", name, err)
	}
	hour, minute, err := parseClock(at)
	if err != nil {
		return nil, fmt.Errorf("weekly trigger %s: %w", name, err)
	}

	after := func(now time.Time) time.Time {
		now = now.In(loc)
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		offset := (int(day) - int(now.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, offset)
		if !next.After(now) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	}

	return &ClockTrigger{name: name, after: after, logger: logger}, nil
}

// Start launches the trigger loop. Calling Start on a running trigger
// is a no-op.
func (c *ClockTrigger) Start(job func(time.Time)) {
	if job == nil {
		return
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.stop = make(chan struct{})
	c.active = true
	stop := c.stop
	c.mu.Unlock()

	go c.loop(job, stop)
}

func (c *ClockTrigger) loop(job func(time.Time), stop chan struct{}) {
	for {
		next := c.after(time.Now())
		if !c.armNext(next, stop) {
			return
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case t := <-timer.C:
			c.fire(job, t)
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// armNext publishes the upcoming fire time unless stop already closed.
// Stop closes the channel and zeroes nextFire under the same mutex, so
// the loop must not resurrect a fire time afterwards.
func (c *ClockTrigger) armNext(next time.Time, stop chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-stop:
		return false
	default:
	}
	c.nextFire = next
	return true
}

func (c *ClockTrigger) fire(job func(time.Time), t time.Time) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.warn("previous run still in flight, skipping", "job", c.name)
		return
	}

	go func() {
		defer c.inFlight.Store(false)
		job(t)
	}()
}

// Stop halts the trigger loop. It does not cancel an in-flight run.
func (c *ClockTrigger) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}
	close(c.stop)
	c.active = false
	c.nextFire = time.Time{}
}

// Active reports whether the trigger loop is scheduled.
func (c *ClockTrigger) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Next returns the upcoming fire time, zero when stopped.
func (c *ClockTrigger) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextFire
}

func parseClock(at string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(at), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", at)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", at)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", at)
	}

	return hour, minute, nil
}

func parseWeekday(raw string) (time.Weekday, error) {
	names := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	if day, ok := names[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return day, nil
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", raw)
}

func (c *ClockTrigger) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
