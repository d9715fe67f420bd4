package keep

import (
	"context"
	"errors"
)

// ErrAuth means the store rejected our credentials. Fatal for the sync
// phase; the day's catalog decisions are already saved by then.
var ErrAuth = errors.New("keep: authentication failed")

// ListID identifies a checklist. ItemID identifies one item within a list.
// Neither is stable across a clear-and-rebuild, so nothing here may be
// persisted between runs.
type (
	ListID string
	ItemID string
)

// Item is a read-only view of one remote checklist entry.
type Item struct {
	ID      ItemID
	Text    string
	Checked bool
	Parent  ItemID // zero when top-level
}

// Client is the minimal surface the reconciler needs.
//
// Mutations are staged: AddItem/DeleteItem/SetParent queue changes that only
// become durable (and referenceable as parents) after Commit returns.
type Client interface {
	Authenticate(ctx context.Context) error

	FindList(ctx context.Context, title string) (ListID, bool, error)
	CreateList(ctx context.Context, title string) (ListID, error)

	Items(ctx context.Context, list ListID) ([]Item, error)
	AddItem(ctx context.Context, list ListID, text string, checked bool) (ItemID, error)
	DeleteItem(ctx context.Context, list ListID, item ItemID) error
	SetParent(ctx context.Context, list ListID, child, parent ItemID) error

	Commit(ctx context.Context) error
}
