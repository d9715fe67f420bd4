package catalog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

// ErrRead wraps any failure to load the catalog file. Callers treat it as
// fatal: nothing may be mutated or synced from a catalog we could not read.
var ErrRead = errors.New("catalog read failed")

// Canonical column headers. Matching is case-insensitive on load; Save
// always writes these exact names.
const (
	colArea       = "Area"
	colActivity   = "Activity"
	colFrequency  = "Frequency"
	colEffort     = "Effort Minutes"
	colEligible   = "Who Can Do This"
	colAssignedTo = "Currently Assigned To"
	colLastDate   = "Last Assigned Date"
)

const preambleLines = 2

// Store is the file-backed catalog collaborator.
type Store struct {
	path string
	log  logx.Logger
}

func NewStore(path string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

// Load reads the catalog: two verbatim preamble lines, a header row, then
// one task per row. Any failure is wrapped in ErrRead.
func (s *Store) Load() (*Snapshot, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	preamble := make([]string, 0, preambleLines)
	for i := 0; i < preambleLines; i++ {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("%w: missing preamble line %d", ErrRead, i+1)
		}
		preamble = append(preamble, strings.TrimRight(line, "\r\n"))
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrRead)
	}

	idx, err := headerIndex(records[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}

	tasks := make([]Task, 0, len(records)-1)
	for n, rec := range records[1:] {
		task, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrRead, n+1, err)
		}
		tasks = append(tasks, task)
	}

	s.log.Debug("catalog loaded",
		logx.String("path", s.path), logx.Int("tasks", len(tasks)))
	return &Snapshot{Preamble: preamble, Tasks: tasks}, nil
}

// Save atomically rewrites the whole catalog, re-emitting the preamble
// verbatim and the rows in snapshot order.
func (s *Store) Save(snap *Snapshot) error {
	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	for _, line := range snap.Preamble {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = f.Close()
			return err
		}
	}

	cw := csv.NewWriter(w)
	header := []string{colArea, colActivity, colFrequency, colEffort, colEligible, colAssignedTo, colLastDate}
	if err := cw.Write(header); err != nil {
		_ = f.Close()
		return err
	}
	for _, t := range snap.Tasks {
		if err := cw.Write(formatRow(t)); err != nil {
			_ = f.Close()
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}

	s.log.Debug("catalog saved",
		logx.String("path", s.path), logx.Int("tasks", len(snap.Tasks)))
	return nil
}

func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, want := range []string{colArea, colActivity, colFrequency, colEffort, colEligible, colAssignedTo, colLastDate} {
		if _, ok := idx[strings.ToLower(want)]; !ok {
			return nil, fmt.Errorf("missing column %q", want)
		}
	}
	return idx, nil
}

func cell(rec []string, idx map[string]int, col string) string {
	i, ok := idx[strings.ToLower(col)]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseRow(rec []string, idx map[string]int) (Task, error) {
	t := Task{
		Area:       cell(rec, idx, colArea),
		Activity:   cell(rec, idx, colActivity),
		Frequency:  cell(rec, idx, colFrequency),
		AssignedTo: cell(rec, idx, colAssignedTo),
	}

	if effort := cell(rec, idx, colEffort); effort != "" {
		v, err := strconv.ParseFloat(effort, 64)
		if err != nil {
			return Task{}, fmt.Errorf("bad effort %q", effort)
		}
		t.EffortMinutes = v
	}

	t.EligiblePeople = SplitPeople(cell(rec, idx, colEligible))

	if raw := cell(rec, idx, colLastDate); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return Task{}, fmt.Errorf("bad date %q", raw)
		}
		t.LastAssigned = &d
	}
	return t, nil
}

func formatRow(t Task) []string {
	last := ""
	if t.LastAssigned != nil {
		last = t.LastAssigned.String()
	}
	effort := strconv.FormatFloat(t.EffortMinutes, 'f', -1, 64)
	return []string{
		t.Area,
		t.Activity,
		t.Frequency,
		effort,
		strings.Join(t.EligiblePeople, ", "),
		t.AssignedTo,
		last,
	}
}

// SplitPeople parses a comma-separated people cell, trimming whitespace and
// dropping empties.
func SplitPeople(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
