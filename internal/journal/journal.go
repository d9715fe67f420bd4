package journal

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

var ErrDisabled = errors.New("journal disabled")

// Config configures the journal.
//
// Driver values:
//   - "file": append-only JSON Lines file
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", the journal is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// RunRecord is one completed (or aborted) scheduling run.
// Keep it compact and schema-stable.
type RunRecord struct {
	ID       string        `json:"id"`
	Date     string        `json:"date"` // calendar day the run scheduled for
	Started  time.Time     `json:"started"`
	TookMS   int64         `json:"took_ms"`
	ResetDay bool          `json:"reset_day"`
	Pushed   int           `json:"pushed"`
	Error    string        `json:"error,omitempty"`
	Syncs    []SyncOutcome `json:"syncs,omitempty"`
}

// SyncOutcome is one person's remote-sync result within a run.
type SyncOutcome struct {
	Person string `json:"person"`
	Items  int    `json:"items"`
	Error  string `json:"error,omitempty"`
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string { return uuid.NewString() }

// Store is the minimal journal API.
type Store interface {
	AppendRun(ctx context.Context, rec RunRecord) error
	Close() error
}

// Open initializes the configured journal.
// It returns (nil, nil) if the journal is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown journal driver: " + driver)
	}
}
