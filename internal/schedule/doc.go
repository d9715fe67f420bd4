// Package schedule decides what runs today and who does it.
//
// Three pieces: IsDue (frequency state machine), Assign (greedy weighted
// area balancing, reset-day only) and Engine.Run (the daily pass that ties
// them together and produces the push list). All three are pure over a
// catalog snapshot; persistence belongs to the caller.
package schedule
