// Package app wires the daily pass together: catalog in, schedule, catalog
// out, then remote sync.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lokhor/cleaning-scheduler/internal/catalog"
	"github.com/lokhor/cleaning-scheduler/internal/config"
	"github.com/lokhor/cleaning-scheduler/internal/journal"
	"github.com/lokhor/cleaning-scheduler/internal/keep"
	"github.com/lokhor/cleaning-scheduler/internal/reconcile"
	"github.com/lokhor/cleaning-scheduler/internal/schedule"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

type App struct {
	cfg     *config.Config
	log     logx.Logger
	store   *catalog.Store
	client  keep.Client
	journal journal.Store
}

func New(cfg *config.Config, log logx.Logger, client keep.Client, jstore journal.Store) *App {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &App{
		cfg:     cfg,
		log:     log,
		store:   catalog.NewStore(cfg.Catalog, log),
		client:  client,
		journal: jstore,
	}
}

// RunOnce performs one full day's pass for the given date.
//
// Ordering matters: the mutated catalog is saved to disk before any remote
// call, so a failed or unauthenticated sync can never lose the day's
// scheduling decision, only its delivery.
func (a *App) RunOnce(ctx context.Context, today catalog.Date) error {
	started := time.Now()
	resetDay, err := a.cfg.ResetWeekday()
	if err != nil {
		return err
	}

	rec := journal.RunRecord{
		ID:       journal.NewRunID(),
		Date:     today.String(),
		Started:  started,
		ResetDay: today.Weekday() == resetDay,
	}

	err = a.runOnce(ctx, today, resetDay, &rec)
	if err != nil {
		rec.Error = err.Error()
	}
	rec.TookMS = time.Since(started).Milliseconds()
	a.appendJournal(ctx, rec)
	return err
}

func (a *App) runOnce(ctx context.Context, today catalog.Date, resetDay time.Weekday, rec *journal.RunRecord) error {
	snap, err := a.store.Load()
	if err != nil {
		return err
	}

	engine := schedule.New(resetDay, a.log)
	next, pushes, err := engine.Run(snap, today)
	if err != nil {
		return err
	}
	rec.Pushed = len(pushes)

	if err := a.store.Save(next); err != nil {
		return fmt.Errorf("catalog save: %w", err)
	}

	lists := a.personLists(pushes)
	if len(lists) == 0 {
		a.log.Info("nothing to sync today")
		return nil
	}

	if err := a.client.Authenticate(ctx); err != nil {
		if !errors.Is(err, keep.ErrAuth) {
			err = fmt.Errorf("%w: %v", keep.ErrAuth, err)
		}
		return err
	}

	rec.Syncs = a.sync(ctx, lists)
	return nil
}

// personLists groups push items per person in a deterministic order:
// people alphabetically, items in catalog order within each. People with no
// configured list title are skipped with a warning.
func (a *App) personLists(pushes []schedule.PushItem) []reconcile.PersonList {
	byPerson := map[string][]schedule.PushItem{}
	for _, p := range pushes {
		byPerson[p.Person] = append(byPerson[p.Person], p)
	}

	people := make([]string, 0, len(byPerson))
	for p := range byPerson {
		people = append(people, p)
	}
	sort.Strings(people)

	lists := make([]reconcile.PersonList, 0, len(people))
	for _, person := range people {
		title, ok := a.cfg.ListTitle(person)
		if !ok {
			a.log.Warn("no list configured for person, skipping sync",
				logx.String("person", person),
				logx.Int("items", len(byPerson[person])))
			continue
		}
		lists = append(lists, reconcile.PersonList{
			Person: person,
			Title:  title,
			Items:  byPerson[person],
		})
	}
	return lists
}

func (a *App) sync(ctx context.Context, lists []reconcile.PersonList) []journal.SyncOutcome {
	r := reconcile.New(a.client, a.log)
	results := r.ReconcileAll(ctx, lists, a.cfg.Keep.ParallelSync)

	outcomes := make([]journal.SyncOutcome, 0, len(results))
	failed := 0
	for _, res := range results {
		o := journal.SyncOutcome{Person: res.Person, Items: res.Items}
		if res.Err != nil {
			o.Error = res.Err.Error()
			failed++
		}
		outcomes = append(outcomes, o)
	}

	a.log.Info("remote sync finished",
		logx.Int("people", len(results)), logx.Int("failed", failed))
	return outcomes
}

func (a *App) appendJournal(ctx context.Context, rec journal.RunRecord) {
	if a.journal == nil {
		return
	}
	if err := a.journal.AppendRun(ctx, rec); err != nil {
		a.log.Warn("journal append failed", logx.Err(err))
	}
}
