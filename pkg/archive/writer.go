package archive

import (
	"context"
	"time"

	errs "gharchiver/pkg/errors"
	"gharchiver/pkg/logger"
)

// Hook observes resource progress
type Hook interface {
	OnStart(name string)
	OnOutcome(o Outcome)
}

// Writer runs resources one at a time and records how each ended. A
// failing resource never stops the ones after it.
type Writer struct {
	logger logger.Logger
	hooks  []Hook
	report *Report
}

// NewWriter returns a Writer with an empty report
func NewWriter(log logger.Logger, hooks ...Hook) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Writer{
		logger: log,
		hooks:  hooks,
		report: &Report{Started: time.Now()},
	}
}

// Report returns the outcomes recorded so far
func (w *Writer) Report() *Report {
	return w.report
}

// ArchiveResource fetches r and stores the result. Errors and panics from
// either step are caught and recorded; the returned *errors.ResourceError
// is informational and callers are free to ignore it.
//
// A store step may call ArchiveResource for child resources; their
// outcomes follow the parent's in the report.
func (w *Writer) ArchiveResource(ctx context.Context, r Resource) error {
	slot := len(w.report.Outcomes)
	w.report.Outcomes = append(w.report.Outcomes, Outcome{Resource: r.Name, State: StatePending})
	for _, h := range w.hooks {
		h.OnStart(r.Name)
	}

	start := time.Now()
	state, err := w.run(ctx, r)

	outcome := Outcome{Resource: r.Name, State: state, Err: err, Duration: time.Since(start)}
	w.report.Outcomes[slot] = outcome
	w.report.Finished = time.Now()

	entry := w.logger
	if err != nil {
		entry = entry.WithField("error_kind", errs.Kind(err))
	}
	logger.LogResource(entry, r.Name, string(state), err)
	for _, h := range w.hooks {
		h.OnOutcome(outcome)
	}

	if err != nil {
		return &errs.ResourceError{Resource: r.Name, State: string(state), Err: err}
	}
	return nil
}

func (w *Writer) run(ctx context.Context, r Resource) (State, error) {
	if err := ctx.Err(); err != nil {
		return StateFetchFailed, err
	}

	w.logger.DebugWithFields("fetching resource", map[string]interface{}{
		"resource": r.Name,
		"state":    string(StateFetching),
	})

	var payload any
	if err := guard(func() error {
		var err error
		payload, err = r.fetch(ctx)
		return err
	}); err != nil {
		return StateFetchFailed, err
	}

	w.logger.DebugWithFields("storing resource", map[string]interface{}{
		"resource": r.Name,
		"state":    string(StateFetched),
	})

	if err := guard(func() error { return r.store(ctx, payload) }); err != nil {
		return StateStoreFailed, err
	}
	return StateStored, nil
}

// ArchiveAll runs resources in order. It stops early only when ctx is
// cancelled, returning the context error.
func (w *Writer) ArchiveAll(ctx context.Context, resources ...Resource) error {
	for _, r := range resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.ArchiveResource(ctx, r)
	}
	return ctx.Err()
}
