// Package probe runs ffprobe against a clip and normalizes its JSON output
// into a [MediaInfo] value. Normalization happens once, at this boundary:
// every missing or empty string field becomes [Unknown] and every missing
// number becomes zero, so consumers never deal with absent fields.
//
// A failed probe (binary missing, non-zero exit, malformed JSON) is not
// fatal for the batch. [Inspector.Inspect] returns the all-unknown value
// together with an error wrapping [ErrProbeFailed]; callers log it and
// carry on.
package probe
