package schedule

import (
	"errors"
	"fmt"
)

// ErrAssignmentImpossible means the catalog names nobody at all: no task can
// be assigned, so the run must abort before touching anything.
var ErrAssignmentImpossible = errors.New("no eligible people anywhere in the catalog")

// DataQualityError flags a row the engine excluded from this cycle. It is
// never fatal to the run.
type DataQualityError struct {
	Area     string
	Activity string
	Reason   string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: %s / %s: %s", e.Area, e.Activity, e.Reason)
}
