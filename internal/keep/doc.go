// Package keep talks to the remote checklist store.
//
// The store is eventually consistent and has no multi-item transactions:
// an item only gains a durable identity after Commit, so parent links must
// never reference an item created in the same uncommitted batch. The
// reconciler (internal/sync) builds its staged protocol on that rule; this
// package just exposes the raw operations.
package keep
