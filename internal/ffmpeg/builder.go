package ffmpeg

import (
	"strings"

	"github.com/backmassage/colorbatch/internal/config"
)

// Build constructs the complete ffmpeg argument slice for a job, binary
// first. The layout is fixed:
//
//	ffmpeg -hide_banner -nostdin -y [-hwaccel H] -i IN -vf CHAIN
//	  -c:v CODEC -pix_fmt FMT -b:v RATE -maxrate MAX -bufsize BUF
//	  -c:a copy [-tag:v TAG] COLOR_TAGS -movflags +faststart
//	  -progress pipe:1 -nostats OUT
//
// -y is always passed: the skip-existing decision is made by the runner
// before launch, so by the time ffmpeg runs the output is meant to be
// written.
func Build(enc config.Encoder, job *Job) []string {
	bin := enc.FFmpegBin
	if bin == "" {
		bin = "ffmpeg"
	}
	args := make([]string, 0, 40)

	// --- Preamble ---
	args = append(args, bin, "-hide_banner", "-nostdin", "-y")

	// --- Input ---
	if enc.HWAccel != "" {
		args = append(args, "-hwaccel", enc.HWAccel)
	}
	args = append(args, "-i", job.InputPath)

	// --- Video ---
	if vf := job.Filter.String(); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args,
		"-c:v", enc.VideoCodec,
		"-pix_fmt", enc.PixFmt,
		"-b:v", enc.Bitrate,
		"-maxrate", enc.MaxRate,
		"-bufsize", enc.BufSize,
	)

	// --- Audio passthrough ---
	args = append(args, "-c:a", "copy")

	// --- Tags and color metadata ---
	if enc.VideoTag != "" {
		args = append(args, "-tag:v", enc.VideoTag)
	}
	args = append(args, job.Filter.Output.Args()...)

	// --- Container, progress channel, output ---
	args = append(args,
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		"-nostats",
		job.OutputPath,
	)
	return args
}

// CommandLine renders args as a copy-pasteable shell command for logs and
// dry runs.
func CommandLine(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
