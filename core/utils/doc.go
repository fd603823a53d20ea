// Package utils provides conversion helpers shared by the importer, the
// reconciliation cascade and the dashboard: money text to decimal.Decimal,
// loosely formatted dates to time.Time, and generic driver values to strings.
package utils
