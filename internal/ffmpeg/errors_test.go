package ffmpeg

import "testing"

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"missing lut", "[Parsed_lut3d_0 @ 0x1] Failed to open file 'DJI_DLogM_to_Rec709.cube'", "missing LUT file"},
		{"lut init", "Error initializing filter 'lut3d' with args 'file=x.cube'", "missing LUT file"},
		{"cube no such file", "x.cube: No such file or directory", "missing LUT file"},
		{"unknown encoder", "Unknown encoder 'hevc_videotoolbox'", "encoder unavailable"},
		{"encoder open", "Error while opening encoder for output stream #0:0", "encoder unavailable"},
		{"hwaccel", "Device creation failed: -12915.\nFailed to set value 'videotoolbox' for option 'hwaccel'", "hardware acceleration unavailable"},
		{"bad input", "clip.mov: Invalid data found when processing input", "invalid input"},
		{"moov", "moov atom not found", "invalid input"},
		{"nothing", "some other noise", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureReason(tt.stderr); got != tt.want {
				t.Errorf("FailureReason(%q) = %q, want %q", tt.stderr, got, tt.want)
			}
		})
	}
}
