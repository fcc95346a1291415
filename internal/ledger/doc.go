// Package ledger holds the derived-state computations over school banking
// records: running balances, the passbook read model, statement history
// filtering, organization-wide totals and integrity checks.
//
// Every function is a pure computation over in-memory snapshots. Inputs are
// never mutated and results never alias caller slices, so calls are safe to
// run concurrently. Callers re-run them over a fresh snapshot instead of
// patching earlier results.
package ledger

import "errors"

// ErrNotFound is returned when an account number does not resolve.
var ErrNotFound = errors.New("not found")
