package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/lokhor/cleaning-scheduler/internal/keep"
	"github.com/lokhor/cleaning-scheduler/internal/schedule"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

// headerText renders an area header so it stands out from child items.
func headerText(area string) string { return "--- " + area + " ---" }

// PersonList is one person's day of work: the title of their remote list
// and their push items in catalog order.
type PersonList struct {
	Person string
	Title  string
	Items  []schedule.PushItem
}

type Reconciler struct {
	client keep.Client
	log    logx.Logger
}

func New(client keep.Client, log logx.Logger) *Reconciler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reconciler{client: client, log: log}
}

// Reconcile rebuilds one person's remote list from their push items.
func (r *Reconciler) Reconcile(ctx context.Context, pl PersonList) error {
	list, err := r.findOrCreate(ctx, pl.Title)
	if err != nil {
		return err
	}

	if err := r.clear(ctx, list); err != nil {
		return fmt.Errorf("clear %q: %w", pl.Title, err)
	}

	areas := groupByArea(pl.Items)

	headers, err := r.createHeaders(ctx, list, areas)
	if err != nil {
		return fmt.Errorf("headers %q: %w", pl.Title, err)
	}

	if err := r.createChildren(ctx, list, areas, headers); err != nil {
		return fmt.Errorf("children %q: %w", pl.Title, err)
	}

	r.log.Info("list reconciled",
		logx.String("person", pl.Person),
		logx.Int("areas", len(areas)),
		logx.Int("items", len(pl.Items)))
	return nil
}

func (r *Reconciler) findOrCreate(ctx context.Context, title string) (keep.ListID, error) {
	id, ok, err := r.client.FindList(ctx, title)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	return r.client.CreateList(ctx, title)
}

// clear deletes every existing item, checked ones included: checked items
// are finished work from a prior cycle and must not accumulate. The commit
// makes the store durably forget them before any new item is created.
func (r *Reconciler) clear(ctx context.Context, list keep.ListID) error {
	items, err := r.client.Items(ctx, list)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := r.client.DeleteItem(ctx, list, it.ID); err != nil {
			return err
		}
	}
	return r.client.Commit(ctx)
}

type areaGroup struct {
	name  string
	items []schedule.PushItem
}

// groupByArea buckets push items by area, areas ordered by first appearance
// in the push list (catalog order) and items kept in push order within each.
func groupByArea(items []schedule.PushItem) []areaGroup {
	idx := map[string]int{}
	var groups []areaGroup
	for _, it := range items {
		i, ok := idx[it.Area]
		if !ok {
			i = len(groups)
			idx[it.Area] = i
			groups = append(groups, areaGroup{name: it.Area})
		}
		groups[i].items = append(groups[i].items, it)
	}
	return groups
}

// createHeaders adds one header per area and commits, so every header has a
// durable identity before any child tries to reference it.
func (r *Reconciler) createHeaders(ctx context.Context, list keep.ListID, areas []areaGroup) (map[string]keep.ItemID, error) {
	headers := make(map[string]keep.ItemID, len(areas))
	for _, a := range areas {
		id, err := r.client.AddItem(ctx, list, headerText(a.name), false)
		if err != nil {
			return nil, err
		}
		headers[a.name] = id
	}
	if err := r.client.Commit(ctx); err != nil {
		return nil, err
	}
	return headers, nil
}

func (r *Reconciler) createChildren(ctx context.Context, list keep.ListID, areas []areaGroup, headers map[string]keep.ItemID) error {
	for _, a := range areas {
		parent := headers[a.name]
		for _, it := range a.items {
			id, err := r.client.AddItem(ctx, list, it.Activity, false)
			if err != nil {
				return err
			}
			if err := r.client.SetParent(ctx, list, id, parent); err != nil {
				return err
			}
		}
	}
	return r.client.Commit(ctx)
}

// Result is one person's sync outcome.
type Result struct {
	Person string
	Items  int
	Err    error
}

// ReconcileAll syncs every person's list, at most parallel at a time.
// A failure for one person never stops the others; each outcome is reported
// in the returned slice, ordered like the input.
func (r *Reconciler) ReconcileAll(ctx context.Context, lists []PersonList, parallel int) []Result {
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]Result, len(lists))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup

	for i, pl := range lists {
		wg.Add(1)
		go func(i int, pl PersonList) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			err := r.Reconcile(ctx, pl)
			if err != nil {
				r.log.Error("sync failed for person",
					logx.String("person", pl.Person), logx.Err(err))
			}
			results[i] = Result{Person: pl.Person, Items: len(pl.Items), Err: err}
		}(i, pl)
	}
	wg.Wait()
	return results
}
