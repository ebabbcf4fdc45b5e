package display

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical clip 700 MiB", 734003200, "700 MiB"},
		{"4.7 GiB", 5046586572, "4.7 GiB"},
		{"negative", -2048, "-2.0 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"positive", 1024 * 1024, "+ 1.0 MiB"},
		{"negative", -1024 * 1024, "- 1.0 MiB"},
		{"zero", 0, "0 B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytesWithSign(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytesWithSign(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "00:00:00"},
		{"sub-second truncates", 900 * time.Millisecond, "00:00:00"},
		{"minutes", 125 * time.Second, "00:02:05"},
		{"hours", 3*time.Hour + 4*time.Minute + 5*time.Second, "03:04:05"},
		{"over a day", 26*time.Hour + 3*time.Minute + 9*time.Second, "26:03:09"},
		{"negative clamps", -time.Second, "00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.d); got != tt.want {
				t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := FormatSeconds(61.9); got != "00:01:01" {
		t.Errorf("FormatSeconds(61.9) = %q", got)
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(625, 1000); got != "62.5%" {
		t.Errorf("got %q", got)
	}
	if got := FormatRatio(10, 0); got != "n/a" {
		t.Errorf("zero whole: got %q", got)
	}
}

func TestOverallBar(t *testing.T) {
	got := OverallBar(2, 4)
	if !strings.Contains(got, "50%") || !strings.Contains(got, "(2/4)") {
		t.Errorf("OverallBar(2,4) = %q", got)
	}
	if n := strings.Count(got, "█"); n != 25 {
		t.Errorf("filled cells: got %d, want 25", n)
	}
	if OverallBar(1, 0) != "" {
		t.Error("zero total should render nothing")
	}
}

func TestEncodingBar(t *testing.T) {
	got := EncodingBar(50, 1.84, true)
	if !strings.Contains(got, "Encoding: 50%") || !strings.Contains(got, "1.8x") {
		t.Errorf("EncodingBar = %q", got)
	}
	if n := strings.Count(got, "▓"); n != 15 {
		t.Errorf("filled cells: got %d, want 15", n)
	}

	noSpeed := EncodingBar(150, 0, false)
	if strings.Contains(noSpeed, "x") {
		t.Errorf("speed suffix should be omitted: %q", noSpeed)
	}
	if !strings.Contains(noSpeed, "100%") {
		t.Errorf("percent should clamp to 100: %q", noSpeed)
	}
}

func TestCenter(t *testing.T) {
	got := Center("SUMMARY", 11)
	if got != "  SUMMARY  " {
		t.Errorf("Center = %q", got)
	}
	if utf8.RuneCountInString(Center("→", 5)) != 5 {
		t.Error("Center should pad by runes")
	}
	if Center("toolong", 3) != "toolong" {
		t.Error("long strings are returned unchanged")
	}
}
