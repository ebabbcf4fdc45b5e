package pipeline

import "time"

// RunStats tracks aggregate counters and byte totals across a batch run.
// Skipped is a subset of Successful. Byte totals cover encoded files only.
type RunStats struct {
	Total       int
	Successful  int
	Failed      int
	Skipped     int
	InputBytes  int64
	OutputBytes int64
	Start       time.Time
	Interrupted bool
}

// Processed returns how many files reached a final outcome.
func (s *RunStats) Processed() int {
	return s.Successful + s.Failed
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s *RunStats) SpaceSaved() int64 {
	return s.InputBytes - s.OutputBytes
}

// Ratio returns OutputBytes/InputBytes, or false when nothing was encoded.
func (s *RunStats) Ratio() (float64, bool) {
	if s.InputBytes <= 0 {
		return 0, false
	}
	return float64(s.OutputBytes) / float64(s.InputBytes), true
}

// OK reports whether the batch succeeded: at least one file, no failures,
// not interrupted.
func (s *RunStats) OK() bool {
	return s.Total > 0 && s.Failed == 0 && !s.Interrupted
}
