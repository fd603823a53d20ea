// Package reconcile integrates gateway payments into the ledger.
//
// A run reads candidate payments from every gateway store, drops the ones the
// ledger already holds and inserts the rest in a single transaction. After a
// successful insert it refreshes the derived invoice and student data.
//
// # States
//
// A run moves through a fixed sequence of states:
//
//	init     load the reference index of ledger payment keys
//	fetch    read candidates from each gateway (failures are contained per gateway)
//	dedup    filter candidates against the index
//	insert   write accepted payments, all or nothing
//	cascade  recalculate paid amounts, statuses and balances (three independent steps)
//	report   hand the Result to the reporters
//	done     terminal
//	aborted  terminal, the insert transaction was rolled back
//
// When dedup accepts nothing the run skips straight to report and the ledger is
// not touched.
//
// # Keys
//
// Payments are identified by the composite "method:receipt_number" key built
// by models.PaymentKey. A gateway payment maps to the key
// "<gateway>:<gateway payment id>".
//
// # Usage
//
//	stores, err := reconcile.OpenStores(cfg.Ledger, gateways, nil, log)
//	engine, err := reconcile.NewEngine(cfg.Reconcile, log,
//	    reconcile.WithReporters(reconcile.NewLogReporter(log)))
//	res := engine.Run(ctx, stores)
package reconcile
