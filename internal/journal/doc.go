// Package journal records one entry per scheduling run.
//
// The journal is purely observational: nothing reads it back to make
// decisions. It exists so "what did the scheduler do last Tuesday" has an
// answer without digging through logs.
package journal
