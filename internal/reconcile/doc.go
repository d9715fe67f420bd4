// Package reconcile drives a person's remote checklist to match the day's
// push list.
//
// The remote store cannot atomically apply a batch, and parent links may
// only reference items the store has already durably accepted. Reconcile
// therefore walks a fixed staged protocol per list:
//
//	clear everything  -> commit
//	create headers    -> commit
//	create children, parent them to the committed headers -> commit
//
// Re-running the protocol for the same push list is idempotent: the clear
// phase removes whatever the previous run built.
package reconcile
