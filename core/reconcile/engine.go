package reconcile

import (
	"context"
	"errors"
	"time"

	"payment-integrator/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine drives a reconciliation run through its states:
//
//	init -> fetch -> dedup -> insert -> cascade -> report -> done
//
// dedup jumps straight to report when nothing is new, and insert moves to
// aborted when the ledger transaction fails.
type Engine struct {
	logger    *zap.Logger
	clock     func() time.Time
	readers   []Reader
	writer    *LedgerWriter
	cascade   *Cascade
	reporters []Reporter
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for timestamps written to the ledger.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithReaders replaces the gateway readers.
func WithReaders(readers ...Reader) Option {
	return func(e *Engine) { e.readers = readers }
}

// WithReporters sets the reporters invoked in the report state.
func WithReporters(reporters ...Reporter) Option {
	return func(e *Engine) { e.reporters = reporters }
}

// WithCascade replaces the cascade.
func WithCascade(c *Cascade) Option {
	return func(e *Engine) { e.cascade = c }
}

// NewEngine creates an engine from cfg.
func NewEngine(cfg Config, log *zap.Logger, opts ...Option) (*Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		logger:  log,
		clock:   time.Now,
		readers: DefaultReaders(),
		writer:  NewLedgerWriter(cfg.BatchSize),
		cascade: NewCascade(log, loc),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// run is the mutable state of one run.
type run struct {
	ctx        context.Context
	stores     *Stores
	log        *zap.Logger
	now        time.Time
	index      KeySet
	candidates []Candidate
	accepted   []Candidate
	result     *Result
}

func (r *run) fail(stage State, source string, err error) {
	r.result.Stats.Errors++
	r.result.Errors = append(r.result.Errors, RunError{Stage: stage, Source: source, Message: err.Error()})
}

// Run executes one reconciliation run and closes stores when it terminates.
// It never panics on store failures; the returned Result carries the final state.
// A nil stores behaves like stores with no connected handles.
func (e *Engine) Run(ctx context.Context, stores *Stores) *Result {
	if stores == nil {
		stores = &Stores{}
	}
	now := e.clock()
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Stats:     *NewStats(),
	}
	r := &run{
		ctx:    ctx,
		stores: stores,
		log:    logger.WithRun(e.logger, res.RunID),
		now:    now,
		result: res,
	}
	defer func() {
		if err := stores.Close(); err != nil {
			r.log.Warn("Failed to close stores", zap.Error(err))
		}
	}()

	state := StateInit
	for state != StateDone && state != StateAborted {
		res.Path = append(res.Path, state)
		state = e.step(r, state)
	}
	// report appends done itself so reporters see the complete path
	if state == StateAborted {
		res.Path = append(res.Path, state)
	}
	res.State = state
	if res.FinishedAt.IsZero() {
		res.FinishedAt = e.clock()
	}

	return res
}

func (e *Engine) step(r *run, state State) State {
	switch state {
	case StateInit:
		return e.loadIndex(r)
	case StateFetch:
		return e.fetch(r)
	case StateDedup:
		return e.dedup(r)
	case StateInsert:
		return e.insert(r)
	case StateCascade:
		return e.runCascade(r)
	case StateReport:
		return e.report(r)
	default:
		return StateAborted
	}
}

func (e *Engine) loadIndex(r *run) State {
	index, err := LoadReferenceIndex(r.ctx, r.stores.Ledger)
	if err != nil {
		r.log.Error("Failed to load reference index, deduplicating against an empty set", zap.Error(err))
		r.result.IndexDegraded = true
		index = KeySet{}
	}
	r.index = index
	r.log.Info("Reference index loaded", zap.Int("keys", index.Len()))
	return StateFetch
}

func (e *Engine) fetch(r *run) State {
	for _, reader := range e.readers {
		src := reader.Source()
		candidates, err := reader.Fetch(r.ctx, r.stores.Gateway(src))
		if err != nil {
			r.log.Error("Failed to fetch gateway payments", zap.String("source", string(src)), zap.Error(err))
			r.fail(StateFetch, string(src), err)
			continue
		}
		r.log.Info("Fetched gateway payments", zap.String("source", string(src)), zap.Int("count", len(candidates)))
		r.candidates = append(r.candidates, candidates...)
	}
	return StateDedup
}

func (e *Engine) dedup(r *run) State {
	r.accepted = Dedup(r.candidates, r.index, &r.result.Stats)
	r.log.Info("Deduplicated candidates",
		zap.Int("candidates", len(r.candidates)),
		zap.Int("accepted", len(r.accepted)),
		zap.Int("skipped", r.result.Stats.TotalSkipped()))

	if len(r.accepted) == 0 {
		r.result.Outcome = OutcomeNothingToDo
		return StateReport
	}
	return StateInsert
}

func (e *Engine) insert(r *run) State {
	inserted, err := e.writer.InsertAll(r.ctx, r.stores.Ledger, r.accepted, r.now)
	if err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			r.log.Error("Ledger rejected duplicate payments, transaction rolled back", zap.Error(err))
		} else {
			r.log.Error("Failed to insert payments, transaction rolled back", zap.Error(err))
		}
		r.fail(StateInsert, "", err)
		r.result.Outcome = OutcomeFailed
		r.result.Cause = err
		r.result.FinishedAt = e.clock()
		return StateAborted
	}
	r.result.Stats.Processed = inserted
	r.log.Info("Inserted payments into ledger", zap.Int("count", inserted))
	return StateCascade
}

func (e *Engine) runCascade(r *run) State {
	errs := e.cascade.Run(r.ctx, r.stores.Ledger, r.now, &r.result.Stats)
	r.result.Errors = append(r.result.Errors, errs...)
	r.result.Outcome = OutcomeIntegrated
	return StateReport
}

func (e *Engine) report(r *run) State {
	r.result.FinishedAt = e.clock()
	r.result.Path = append(r.result.Path, StateDone)
	r.result.State = StateDone
	for _, rep := range e.reporters {
		if err := rep.Report(r.ctx, r.result); err != nil {
			r.log.Warn("Reporter failed", zap.Error(err))
		}
	}
	return StateDone
}
