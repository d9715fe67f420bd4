package schedule

import (
	"sort"

	"github.com/lokhor/cleaning-scheduler/internal/catalog"
)

// Assignment maps area name to the person who owns it for the coming week.
type Assignment map[string]string

type areaInfo struct {
	name     string
	weight   float64
	eligible []string // sorted; falls back to the full universe
}

// Assign computes a fresh area-to-person mapping with greedy bin packing by
// descending weekly weight. It is deliberately not an optimal assignment:
// greedy keeps the result explainable and, with the fixed tie breaks below,
// fully deterministic for identical input.
//
// Weight charges daily tasks for 7 occurrences per week and every other
// frequency once per week whether or not it is actually due that week. That
// slightly over-charges fortnightly and monthly areas; it is the long-
// standing behavior and kept as-is.
func Assign(tasks []catalog.Task, today catalog.Date) (Assignment, error) {
	_ = today // part of the contract; the weights do not depend on the date

	universe := personUniverse(tasks)
	if len(universe) == 0 {
		return nil, ErrAssignmentImpossible
	}

	areas := collectAreas(tasks, universe)

	// Heaviest first. SliceStable keeps catalog order for equal weights.
	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].weight > areas[j].weight
	})

	load := make(map[string]float64, len(universe))
	out := make(Assignment, len(areas))
	for _, a := range areas {
		best := a.eligible[0]
		for _, p := range a.eligible[1:] {
			if load[p] < load[best] {
				best = p
			}
		}
		out[a.name] = best
		load[best] += a.weight
	}
	return out, nil
}

// personUniverse is the union of all eligibility sets, sorted so that
// equal-load ties always resolve to the alphabetically first person.
func personUniverse(tasks []catalog.Task) []string {
	seen := map[string]bool{}
	for _, t := range tasks {
		for _, p := range t.EligiblePeople {
			seen[p] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func collectAreas(tasks []catalog.Task, universe []string) []areaInfo {
	byName := map[string]*areaInfo{}
	var ordered []*areaInfo

	for _, t := range tasks {
		a := byName[t.Area]
		if a == nil {
			a = &areaInfo{name: t.Area, eligible: universe}
			byName[t.Area] = a
			ordered = append(ordered, a)
		}

		freq, err := catalog.ParseFrequency(t.Frequency)
		if err == nil && freq == catalog.Daily {
			a.weight += t.EffortMinutes * 7
		} else {
			a.weight += t.EffortMinutes
		}

		a.eligible = intersect(a.eligible, t.EligiblePeople)
	}

	out := make([]areaInfo, 0, len(ordered))
	for _, a := range ordered {
		if len(a.eligible) == 0 {
			// Never leave an area unassignable: an empty intersection falls
			// back to the full person universe.
			a.eligible = universe
		}
		out = append(out, *a)
	}
	return out
}

// intersect keeps the members of sorted that also appear in other,
// preserving sorted's order.
func intersect(sorted []string, other []string) []string {
	in := make(map[string]bool, len(other))
	for _, p := range other {
		in[p] = true
	}
	out := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if in[p] {
			out = append(out, p)
		}
	}
	return out
}
