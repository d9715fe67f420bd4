package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/lokhor/cleaning-scheduler/internal/catalog"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

// Serve runs the daily pass on an internal cron trigger until ctx is
// cancelled. One pass at a time: if a trigger fires while the previous pass
// is still running, the new one is skipped.
func (a *App) Serve(ctx context.Context) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	h, m, err := parseHHMM(a.cfg.Serve.At)
	if err != nil {
		return err
	}
	spec := fmt.Sprintf("%d %d * * *", m, h)

	var running atomic.Bool
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			a.log.Warn("previous pass still running, skipping trigger")
			return
		}
		defer running.Store(false)

		today := catalog.Today(loc)
		if err := a.RunOnce(ctx, today); err != nil {
			a.log.Error("daily pass failed", logx.String("date", today.String()), logx.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("serve: bad schedule %q: %w", a.cfg.Serve.At, err)
	}

	c.Start()
	a.log.Info("serve mode started",
		logx.String("at", a.cfg.Serve.At), logx.String("tz", loc.String()))

	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info("serve mode stopped")
	return nil
}

func parseHHMM(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
