// Package stateloader reconstructs project state from the applied-migration
// ledger. It replays the operations of every recorded migration into a
// fresh state on each call, trusting the ledger rather than re-verifying
// dependency order.
package stateloader
