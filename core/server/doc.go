// Package server holds the HTTP server configuration for the read-only dashboard.
//
// The serve command builds the Fiber app; this package only defines the listen
// port and the lifetime of the cached ledger snapshot the dashboard reads from.
package server
