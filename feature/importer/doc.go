// Package importer loads CSV exports into the ledger and gateway stores.
//
// Every row is checked for an existing record and inserted on its own, so a
// bad row is counted and the rest of the file still loads.
package importer
