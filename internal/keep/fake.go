package keep

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Fake is an in-memory Client for tests.
//
// It enforces the store's consistency rule: SetParent fails unless the
// parent item has been committed, which is exactly the trap the staged
// reconcile protocol exists to avoid.
type Fake struct {
	mu sync.Mutex

	AuthErr   error
	CommitErr error

	nextID    int
	lists     map[ListID]string // id -> title
	items     map[ListID][]*fakeItem
	committed map[ItemID]bool

	Commits int
}

type fakeItem struct {
	id      ItemID
	text    string
	checked bool
	parent  ItemID
}

func NewFake() *Fake {
	return &Fake{
		lists:     map[ListID]string{},
		items:     map[ListID][]*fakeItem{},
		committed: map[ItemID]bool{},
	}
}

func (f *Fake) Authenticate(ctx context.Context) error { return f.AuthErr }

func (f *Fake) FindList(ctx context.Context, title string) (ListID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.lists))
	for id := range f.lists {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		if f.lists[ListID(id)] == title {
			return ListID(id), true, nil
		}
	}
	return "", false, nil
}

func (f *Fake) CreateList(ctx context.Context, title string) (ListID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := ListID(fmt.Sprintf("list-%d", f.nextID))
	f.lists[id] = title
	return id, nil
}

func (f *Fake) Items(ctx context.Context, list ListID) ([]Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[list]; !ok {
		return nil, fmt.Errorf("fake: no such list %q", list)
	}
	out := make([]Item, 0, len(f.items[list]))
	for _, it := range f.items[list] {
		out = append(out, Item{ID: it.id, Text: it.text, Checked: it.checked, Parent: it.parent})
	}
	return out, nil
}

func (f *Fake) AddItem(ctx context.Context, list ListID, text string, checked bool) (ItemID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.lists[list]; !ok {
		return "", fmt.Errorf("fake: no such list %q", list)
	}
	f.nextID++
	id := ItemID(fmt.Sprintf("item-%d", f.nextID))
	f.items[list] = append(f.items[list], &fakeItem{id: id, text: text, checked: checked})
	return id, nil
}

func (f *Fake) DeleteItem(ctx context.Context, list ListID, item ItemID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.items[list]
	for i, it := range items {
		if it.id == item {
			f.items[list] = append(items[:i:i], items[i+1:]...)
			delete(f.committed, item)
			return nil
		}
	}
	return fmt.Errorf("fake: no such item %q", item)
}

func (f *Fake) SetParent(ctx context.Context, list ListID, child, parent ItemID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.committed[parent] {
		return fmt.Errorf("fake: parent %q not committed", parent)
	}
	for _, it := range f.items[list] {
		if it.id == child {
			it.parent = parent
			return nil
		}
	}
	return fmt.Errorf("fake: no such item %q", child)
}

func (f *Fake) Commit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.Commits++
	for _, items := range f.items {
		for _, it := range items {
			f.committed[it.id] = true
		}
	}
	return nil
}

// CheckItem marks an item checked, simulating a person ticking it off
// between runs.
func (f *Fake) CheckItem(list ListID, item ItemID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items[list] {
		if it.id == item {
			it.checked = true
		}
	}
}
