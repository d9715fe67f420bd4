package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lokhor/cleaning-scheduler/internal/keep"
	"github.com/lokhor/cleaning-scheduler/internal/schedule"
	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

func push(person, area, activity string, row int) schedule.PushItem {
	return schedule.PushItem{Person: person, Area: area, Activity: activity, Row: row}
}

// shape flattens a remote list into (header text -> child texts in order).
func shape(t *testing.T, f *keep.Fake, title string) map[string][]string {
	t.Helper()
	ctx := context.Background()

	id, ok, err := f.FindList(ctx, title)
	require.NoError(t, err)
	require.True(t, ok, "list %q must exist", title)

	items, err := f.Items(ctx, id)
	require.NoError(t, err)

	headers := map[keep.ItemID]string{}
	out := map[string][]string{}
	for _, it := range items {
		if it.Parent == "" {
			headers[it.ID] = it.Text
			out[it.Text] = []string{}
		}
	}
	for _, it := range items {
		if it.Parent == "" {
			continue
		}
		h, ok := headers[it.Parent]
		require.True(t, ok, "child %q parented to a non-header", it.Text)
		out[h] = append(out[h], it.Text)
	}
	return out
}

func TestReconcileBuildsHierarchy(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())

	pl := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items: []schedule.PushItem{
			push("Alice", "Kitchen", "Wipe counters", 0),
			push("Alice", "Bathroom", "Scrub tub", 1),
		},
	}
	require.NoError(t, r.Reconcile(context.Background(), pl))

	got := shape(t, f, "Alice's Chores")
	require.Equal(t, map[string][]string{
		"--- Kitchen ---":  {"Wipe counters"},
		"--- Bathroom ---": {"Scrub tub"},
	}, got)

	// clear, headers, children: three commits.
	require.Equal(t, 3, f.Commits)
}

func TestReconcileIdempotent(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())

	pl := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items: []schedule.PushItem{
			push("Alice", "Kitchen", "Wipe counters", 0),
			push("Alice", "Kitchen", "Mop floor", 1),
			push("Alice", "Bathroom", "Scrub tub", 2),
		},
	}

	require.NoError(t, r.Reconcile(context.Background(), pl))
	first := shape(t, f, "Alice's Chores")

	require.NoError(t, r.Reconcile(context.Background(), pl))
	second := shape(t, f, "Alice's Chores")

	require.Equal(t, first, second)

	// Exactly one list and no stray items accumulated.
	id, _, err := f.FindList(context.Background(), "Alice's Chores")
	require.NoError(t, err)
	items, err := f.Items(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, items, 5)
}

func TestReconcileRemovesStaleAndCheckedItems(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())
	ctx := context.Background()

	// A previous cycle left items behind, one of them checked off.
	old := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items: []schedule.PushItem{
			push("Alice", "Garage", "Sort tools", 0),
			push("Alice", "Kitchen", "Wipe counters", 1),
		},
	}
	require.NoError(t, r.Reconcile(ctx, old))

	id, _, err := f.FindList(ctx, "Alice's Chores")
	require.NoError(t, err)
	items, err := f.Items(ctx, id)
	require.NoError(t, err)
	f.CheckItem(id, items[0].ID)

	// Today the Garage task is gone from the catalog.
	now := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items:  []schedule.PushItem{push("Alice", "Kitchen", "Wipe counters", 0)},
	}
	require.NoError(t, r.Reconcile(ctx, now))

	got := shape(t, f, "Alice's Chores")
	require.Equal(t, map[string][]string{
		"--- Kitchen ---": {"Wipe counters"},
	}, got)
}

func TestReconcileAreaOrderFollowsPushList(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())

	pl := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items: []schedule.PushItem{
			push("Alice", "Kitchen", "Wipe counters", 0),
			push("Alice", "Bathroom", "Scrub tub", 1),
			push("Alice", "Kitchen", "Mop floor", 2),
		},
	}
	require.NoError(t, r.Reconcile(context.Background(), pl))

	id, _, err := f.FindList(context.Background(), "Alice's Chores")
	require.NoError(t, err)
	items, err := f.Items(context.Background(), id)
	require.NoError(t, err)

	// Headers were created before any child, Kitchen first.
	require.Equal(t, "--- Kitchen ---", items[0].Text)
	require.Equal(t, "--- Bathroom ---", items[1].Text)

	got := shape(t, f, "Alice's Chores")
	require.Equal(t, []string{"Wipe counters", "Mop floor"}, got["--- Kitchen ---"])
}

func TestReconcileCreatesMissingList(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())

	pl := PersonList{Person: "Bob", Title: "Bob's Chores"}
	require.NoError(t, r.Reconcile(context.Background(), pl))

	_, ok, err := f.FindList(context.Background(), "Bob's Chores")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReconcileAllIsolatesFailures(t *testing.T) {
	f := keep.NewFake()
	r := New(f, logx.Nop())
	ctx := context.Background()

	// Fail every commit and verify each person reports the failure
	// independently instead of one failure aborting the batch.
	f.CommitErr = errors.New("boom")

	lists := []PersonList{
		{Person: "Alice", Title: "Alice's Chores", Items: []schedule.PushItem{push("Alice", "Kitchen", "Wipe counters", 0)}},
		{Person: "Bob", Title: "Bob's Chores", Items: []schedule.PushItem{push("Bob", "Garage", "Sort tools", 1)}},
	}
	results := r.ReconcileAll(ctx, lists, 2)
	require.Len(t, results, 2)
	require.Equal(t, "Alice", results[0].Person)
	require.Equal(t, "Bob", results[1].Person)
	require.Error(t, results[0].Err)
	require.Error(t, results[1].Err)

	// With the store healthy again, the same batch succeeds end to end.
	f.CommitErr = nil
	results = r.ReconcileAll(ctx, lists, 2)
	for _, res := range results {
		require.NoError(t, res.Err)
	}
}

func TestReconcileNeverParentsToUncommittedHeader(t *testing.T) {
	// The fake rejects SetParent on uncommitted parents, so a protocol that
	// skipped the header commit would fail loudly here.
	f := keep.NewFake()
	r := New(f, logx.Nop())

	pl := PersonList{
		Person: "Alice",
		Title:  "Alice's Chores",
		Items:  []schedule.PushItem{push("Alice", "Kitchen", "Wipe counters", 0)},
	}
	require.NoError(t, r.Reconcile(context.Background(), pl))

	got := shape(t, f, "Alice's Chores")
	require.Equal(t, []string{"Wipe counters"}, got["--- Kitchen ---"])
}
