package batch

// ItemStatus is the processing outcome of a single record.
type ItemStatus string

// Item status values.
const (
	StatusLoaded ItemStatus = "loaded"
	StatusFailed ItemStatus = "failed"
)

// Result is the outcome of loading one record.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewLoaded creates a successful result.
func NewLoaded(id string) Result { return Result{id: id, status: StatusLoaded} }

// NewFailed creates a failed result.
func NewFailed(id string, err error) Result { return Result{id: id, status: StatusFailed, err: err} }

// ID returns the record identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary aggregates a load run. AlreadyLoaded is set when the run was
// skipped because the store was not empty.
type Summary struct {
	AlreadyLoaded bool
	Total         int
	Loaded        int
	Failures      []Result
}

// Add records one item outcome.
func (s *Summary) Add(r Result) {
	s.Total++
	if r.status == StatusLoaded {
		s.Loaded++
		return
	}
	s.Failures = append(s.Failures, r)
}

// Failed returns the number of failed records.
func (s *Summary) Failed() int { return len(s.Failures) }
