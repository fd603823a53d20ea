package reconcile

import (
	"context"
	"fmt"
	"io"

	"payment-integrator/core/models"

	"go.uber.org/zap"
)

// Reporter presents the result of a run. Reporters are invoked in the report
// state; their errors are logged and never change the outcome.
type Reporter interface {
	Report(ctx context.Context, res *Result) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, res *Result) error

func (f ReporterFunc) Report(ctx context.Context, res *Result) error {
	return f(ctx, res)
}

// LogReporter writes the run summary as a structured log entry.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (l *LogReporter) Report(_ context.Context, res *Result) error {
	fields := []zap.Field{
		zap.String("run_id", res.RunID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("processed", res.Stats.Processed),
		zap.Int("errors", res.Stats.Errors),
		zap.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
		zap.Bool("index_degraded", res.IndexDegraded),
	}
	for _, src := range models.Sources {
		fields = append(fields, zap.Int(string(src)+"_skipped", res.Stats.Skipped[src]))
	}
	l.logger.Info("Reconciliation report", fields...)
	return nil
}

// TextReporter writes the human-readable summary to w.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a TextReporter.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (t *TextReporter) Report(_ context.Context, res *Result) error {
	return WriteSummary(t.w, res)
}

// WriteSummary prints the outcome line, the counters and, for aborted runs,
// the follow-up instruction.
func WriteSummary(w io.Writer, res *Result) error {
	var headline string
	switch res.Outcome {
	case OutcomeIntegrated:
		headline = "Integration succeeded"
	case OutcomeNothingToDo:
		headline = "No new payments to integrate"
	default:
		if res.Cause != nil && IsDuplicateKey(res.Cause) {
			headline = "Failed: duplicate entries detected"
		} else if res.Cause != nil {
			headline = fmt.Sprintf("Critical failure: %v", res.Cause)
		} else {
			headline = "Integration failed"
		}
	}

	lines := []string{
		headline,
		"",
		"Integration report:",
		fmt.Sprintf("  run id:                    %s", res.RunID),
		fmt.Sprintf("  successfully processed:    %d", res.Stats.Processed),
		fmt.Sprintf("  xendit duplicates skipped: %d", res.Stats.Skipped[models.SourceXendit]),
		fmt.Sprintf("  paperid duplicates skipped: %d", res.Stats.Skipped[models.SourcePaperID]),
		fmt.Sprintf("  total errors encountered:  %d", res.Stats.Errors),
	}
	if res.IndexDegraded {
		lines = append(lines, "  warning: reference index unavailable, deduplication ran against an empty set")
	}
	if !res.Succeeded() {
		lines = append(lines, "", "Action required: check error logs and retry")
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
