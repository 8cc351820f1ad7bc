package archive

import "time"

// Status summarises a run
type Status string

const (
	StatusSuccess        Status = "SUCCESS"
	StatusPartialSuccess Status = "PARTIAL_SUCCESS"
)

// Outcome is the terminal record of one archived resource
type Outcome struct {
	Resource string
	State    State
	Err      error
	Duration time.Duration
}

// Report lists outcomes in the order resources were started
type Report struct {
	Outcomes []Outcome
	Started  time.Time
	Finished time.Time
}

// Status is PARTIAL_SUCCESS if any outcome failed, else SUCCESS
func (r *Report) Status() Status {
	for _, o := range r.Outcomes {
		if o.State.Failed() {
			return StatusPartialSuccess
		}
	}
	return StatusSuccess
}

// Counts returns how many resources were stored and how many failed
func (r *Report) Counts() (stored, failed int) {
	for _, o := range r.Outcomes {
		switch {
		case o.State == StateStored:
			stored++
		case o.State.Failed():
			failed++
		}
	}
	return stored, failed
}

// Failures returns the failed outcomes in order
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome recorded for name
func (r *Report) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Resource == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Elapsed is the wall time between the first start and the last outcome
func (r *Report) Elapsed() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
