package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is a task's recurrence cadence.
type Frequency string

const (
	Daily       Frequency = "daily"
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
)

// ParseFrequency normalizes a raw catalog cell into a Frequency.
// Unknown values are returned as an error so callers can exclude the row
// instead of silently treating it as never-due.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(raw))) {
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Fortnightly:
		return Fortnightly, nil
	case Monthly:
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown frequency %q", raw)
	}
}

// Date is a calendar day (no time-of-day, no location).
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate parses an ISO calendar date ("2006-01-02").
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string { return d.Time().Format(dateLayout) }

// Time returns the date at midnight UTC. UTC keeps day arithmetic immune to
// DST transitions.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }

// DaysSince returns d - o in whole days. Negative when o is in d's future.
func (d Date) DaysSince(o Date) int {
	return int(d.Time().Sub(o.Time()) / (24 * time.Hour))
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Task is one row of the catalog.
//
// Frequency is kept as the raw catalog cell so unparseable rows survive a
// load/save round trip untouched; scheduling code parses it on demand.
type Task struct {
	Area           string
	Activity       string
	Frequency      string
	EffortMinutes  float64
	EligiblePeople []string
	AssignedTo     string // empty = unassigned
	LastAssigned   *Date  // nil = never run
}

// Snapshot is an immutable-by-convention view of the whole catalog:
// scheduling clones it, transforms the clone, and hands the clone back for
// persistence.
type Snapshot struct {
	Preamble []string // the two verbatim leading lines
	Tasks    []Task
}

func (s *Snapshot) Clone() *Snapshot {
	cp := &Snapshot{
		Preamble: append([]string(nil), s.Preamble...),
		Tasks:    make([]Task, len(s.Tasks)),
	}
	copy(cp.Tasks, s.Tasks)
	for i := range cp.Tasks {
		cp.Tasks[i].EligiblePeople = append([]string(nil), s.Tasks[i].EligiblePeople...)
		if s.Tasks[i].LastAssigned != nil {
			d := *s.Tasks[i].LastAssigned
			cp.Tasks[i].LastAssigned = &d
		}
	}
	return cp
}

// ResetDueDates clears every task's last-assigned date so the next run
// treats the whole catalog as never-run. Assignments are left untouched.
func (s *Snapshot) ResetDueDates() {
	for i := range s.Tasks {
		s.Tasks[i].LastAssigned = nil
	}
}
