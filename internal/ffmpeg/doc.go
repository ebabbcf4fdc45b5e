// Package ffmpeg builds the encoder command line for one conversion job and
// drives the child process to completion.
//
// Build assembles the argument vector from the encoder settings and the
// job's filter chain. Runner launches it, reads the -progress pipe:1
// channel line by line while the process runs, and classifies the result.
// The progress grammar is a small, explicit parser (ParseProgressLine) so it
// can be tested against synthetic lines without a real encoder.
//
// Files:
//   - job.go: Job, JobState transitions, Result
//   - builder.go: Build, CommandLine
//   - progress.go: ParseProgressLine, ProgressTracker, ProgressEvent
//   - runner.go: Runner.Run
//   - errors.go: sentinel errors and stderr reason classification
package ffmpeg
