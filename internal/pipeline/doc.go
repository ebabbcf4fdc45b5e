// Package pipeline orchestrates file discovery, per-file conversion and
// batch summary reporting.
//
// The batch is strictly sequential: for each discovered clip the driver
// probes metadata, classifies the color profile, builds the filter plan and
// hands a job to the encoder, then folds the result into [RunStats]. A
// failed file never aborts the batch; an interrupt does.
//
// Files:
//   - discover.go: Discover (non-recursive, case-sensitive allowlist)
//   - runner.go: Driver, Run, per-file processing, summary
//   - stats.go: RunStats
//   - report.go: YAML run report
//   - analyze.go: probe-and-classify table without encoding
package pipeline
