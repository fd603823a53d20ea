// Package logger provides a structured logging facility based on Zap.
//
// Every component of the integrator receives a *zap.Logger; nothing logs through
// the standard library. Two helpers attach correlation fields:
//   - WithRayID: the request id set by the rayid middleware on the dashboard API.
//   - WithRun: the id of a reconciliation run, so all stages of one run can be grouped.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (machines) or console (operators)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Reconciliation started")
//
//	l := logger.WithRun(log, result.RunID)
//	l.Error("Cascade step failed", zap.Error(err))
package logger
