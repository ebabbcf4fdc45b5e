package ffmpeg

import (
	"fmt"
	"time"

	"github.com/backmassage/colorbatch/internal/colorprofile"
	"github.com/backmassage/colorbatch/internal/planner"
	"github.com/backmassage/colorbatch/internal/probe"
)

// JobState is the lifecycle position of a single conversion job.
//
//	NotStarted -> Launched -> {Running, Skipped, Failed} -> Terminated
//	Running -> Failed -> Terminated
type JobState int

const (
	StateNotStarted JobState = iota
	StateLaunched            // Accepted by the runner; output policy not yet checked.
	StateRunning             // Child process started.
	StateSkipped             // Output already existed; no process launched.
	StateFailed
	StateTerminated
)

func (s JobState) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateLaunched:
		return "launched"
	case StateRunning:
		return "running"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("JobState(%d)", int(s))
	}
}

var allowedTransitions = map[JobState][]JobState{
	StateNotStarted: {StateLaunched},
	StateLaunched:   {StateRunning, StateSkipped, StateFailed},
	StateRunning:    {StateFailed, StateTerminated},
	StateSkipped:    {StateTerminated},
	StateFailed:     {StateTerminated},
}

// Job is one file's conversion. It is created by the batch driver and
// advanced only by [Runner.Run].
type Job struct {
	InputPath  string
	OutputPath string
	Profile    colorprofile.Profile
	Filter     planner.FilterChain
	Media      probe.MediaInfo

	state   JobState
	history []JobState
}

// State returns the job's current lifecycle state.
func (j *Job) State() JobState { return j.state }

// History returns every state the job has entered, in order, starting with
// the first transition out of NotStarted.
func (j *Job) History() []JobState {
	out := make([]JobState, len(j.history))
	copy(out, j.history)
	return out
}

func (j *Job) advance(to JobState) {
	for _, ok := range allowedTransitions[j.state] {
		if ok == to {
			j.state = to
			j.history = append(j.history, to)
			return
		}
	}
	panic(fmt.Sprintf("ffmpeg: invalid job transition %s -> %s", j.state, to))
}

// Outcome is how a terminated job ended.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "ok"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Result is what the runner reports for a terminated job.
type Result struct {
	Outcome     Outcome
	Err         error // Non-nil exactly when Outcome is OutcomeFailed.
	OutputBytes int64
	Elapsed     time.Duration
	StderrTail  string // Last lines of encoder stderr, for failure reports.
}

// OK reports whether the job counts as successful. Skips count.
func (r Result) OK() bool { return r.Outcome != OutcomeFailed }
