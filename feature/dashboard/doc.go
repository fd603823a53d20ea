// Package dashboard serves read-only receivables metrics computed from the ledger.
//
// The three ledger tables are loaded into a Snapshot that is cached for a TTL;
// every endpoint filters and aggregates the snapshot in memory.
package dashboard
