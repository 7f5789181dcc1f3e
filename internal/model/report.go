package model

// Status is the result of processing a single entry.
type Status string

const (
	// StatusCreated means a directory was created (or already existed) in the target.
	StatusCreated Status = "created"
	// StatusCopied means a file was copied verbatim.
	StatusCopied Status = "copied"
	// StatusTransformed means a source file was rewritten into the target.
	StatusTransformed Status = "transformed"
	// StatusSkipped means the entry was excluded or is not a regular file.
	StatusSkipped Status = "skipped"
	// StatusFailed means the entry could not be processed.
	StatusFailed Status = "failed"
)

// Outcome records what happened to one entry.
type Outcome struct {
	Entry    SourceEntry
	Status   Status
	Rewrites int   // number of import lines rewritten, source files only
	Err      error // set when Status is StatusFailed
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	Counts   map[Status]int
	Failures []Outcome
	Packages []MaterializedPackage
}

// NewSummary returns an empty summary ready to record outcomes.
func NewSummary() Summary {
	return Summary{Counts: make(map[Status]int)}
}

// Record adds an outcome to the summary.
func (s *Summary) Record(o Outcome) {
	if s.Counts == nil {
		s.Counts = make(map[Status]int)
	}

	s.Counts[o.Status]++

	if o.Status == StatusFailed {
		s.Failures = append(s.Failures, o)
	}
}

// HasFailures reports whether any entry failed.
func (s Summary) HasFailures() bool {
	return len(s.Failures) > 0
}

// Total returns the number of recorded outcomes.
func (s Summary) Total() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}

	return total
}

// PackageBytes returns the number of bytes copied for materialized packages.
func (s Summary) PackageBytes() int64 {
	var total int64
	for _, p := range s.Packages {
		total += p.Bytes
	}

	return total
}
