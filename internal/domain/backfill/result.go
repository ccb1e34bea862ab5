package backfill

// Status is the processing outcome of a single idea in a backfill run.
type Status string

// Backfill status values.
const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusPending Status = "pending" // listed by a dry run, not embedded
)

// Result is the outcome of embedding one idea.
type Result struct {
	ideaID string
	status Status
	err    error
}

// NewOK creates a successful result.
func NewOK(ideaID string) Result { return Result{ideaID: ideaID, status: StatusOK} }

// NewPending creates a result for an idea a dry run would embed.
func NewPending(ideaID string) Result { return Result{ideaID: ideaID, status: StatusPending} }

// NewError creates a failed result.
func NewError(ideaID string, err error) Result {
	return Result{ideaID: ideaID, status: StatusError, err: err}
}

// IdeaID returns the idea identifier.
func (r Result) IdeaID() string { return r.ideaID }

// Status returns the processing outcome.
func (r Result) Status() Status { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Report summarizes a backfill run. Results keep candidate order.
type Report struct {
	Total      int
	Successful int
	Failed     int
	Pending    int
	DryRun     bool
	Results    []Result
}

// NewReport tallies results.
func NewReport(results []Result) Report {
	r := Report{Total: len(results), Results: results}
	for _, res := range results {
		switch res.status {
		case StatusOK:
			r.Successful++
		case StatusPending:
			r.Pending++
		default:
			r.Failed++
		}
	}
	return r
}

// FailedIDs returns the ideas that could not be embedded.
func (r Report) FailedIDs() []string {
	var out []string
	for _, res := range r.Results {
		if res.status == StatusError {
			out = append(out, res.ideaID)
		}
	}
	return out
}
