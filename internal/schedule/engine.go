package schedule

import (
	"time"

	"github.com/lokhor/cleaning-scheduler/internal/catalog"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

// PushItem is one task selected for today's delivery to a person's remote
// checklist. Row preserves catalog order so the remote list reads like the
// sheet does.
type PushItem struct {
	Person   string
	Area     string
	Activity string
	Row      int
}

// Engine runs one day's scheduling pass.
type Engine struct {
	resetDay time.Weekday
	log      logx.Logger
}

func New(resetDay time.Weekday, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{resetDay: resetDay, log: log}
}

// Run transforms the snapshot for today and returns the new snapshot plus
// the ordered push list. The input snapshot is never mutated.
//
// On the reset day every area gets a fresh owner first. Daily tasks are
// always pushed; everything slower is only (re)pushed on the reset day when
// due, so weekly-and-up work is batched into the start of the week even if
// its due window opened mid-week. Each pushed row gets today stamped as its
// last-assigned date.
func (e *Engine) Run(snap *catalog.Snapshot, today catalog.Date) (*catalog.Snapshot, []PushItem, error) {
	out := snap.Clone()
	isReset := today.Weekday() == e.resetDay

	if isReset {
		assignment, err := Assign(out.Tasks, today)
		if err != nil {
			return nil, nil, err
		}
		for i := range out.Tasks {
			if person, ok := assignment[out.Tasks[i].Area]; ok {
				out.Tasks[i].AssignedTo = person
			}
		}
		e.log.Info("areas reassigned", logx.Int("areas", len(assignment)))
	}

	var pushes []PushItem
	for i := range out.Tasks {
		t := &out.Tasks[i]

		if t.AssignedTo == "" {
			e.log.Warn("task has no assignee, skipping",
				logx.String("area", t.Area), logx.String("activity", t.Activity))
			continue
		}

		freq, err := catalog.ParseFrequency(t.Frequency)
		if err != nil {
			e.log.Warn("task excluded from cycle",
				logx.String("area", t.Area), logx.String("activity", t.Activity), logx.Err(err))
			continue
		}

		due, dqErr := IsDue(t.LastAssigned, freq, today)
		if dqErr != nil {
			e.log.Warn("task excluded from cycle",
				logx.String("area", t.Area), logx.String("activity", t.Activity), logx.Err(dqErr))
			continue
		}

		if freq == catalog.Daily || (isReset && due) {
			pushes = append(pushes, PushItem{
				Person:   t.AssignedTo,
				Area:     t.Area,
				Activity: t.Activity,
				Row:      i,
			})
			d := today
			t.LastAssigned = &d
		}
	}

	e.log.Info("daily pass complete",
		logx.String("date", today.String()),
		logx.Bool("reset_day", isReset),
		logx.Int("pushed", len(pushes)))
	return out, pushes, nil
}
