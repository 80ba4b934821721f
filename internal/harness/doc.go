// Package harness runs YAML scenarios against a fresh in-memory prompt store.
//
// A scenario registers a number of subscribers, applies a sequence of
// save/delete steps, and checks each step's outcome ("ok", "conflict" or
// "error") plus the final cache contents and per-subscriber notification
// counts. Every step is recorded in a trace that can be compared against a
// golden file:
//
//	go test ./internal/harness -update
//
// regenerates testdata/golden.
package harness
