package ffmpeg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want ProgressLine
	}{
		{"out_time_us", "out_time_us=1500000", ProgressLine{Elapsed: 1500 * time.Millisecond, HasTime: true}},
		{"out_time_ms is microseconds", "out_time_ms=2000000", ProgressLine{Elapsed: 2 * time.Second, HasTime: true}},
		{"speed with x", "speed=1.84x", ProgressLine{Speed: 1.84, HasSpeed: true, SpeedSeen: true}},
		{"speed without x", "speed=0.5", ProgressLine{Speed: 0.5, HasSpeed: true, SpeedSeen: true}},
		{"speed N/A", "speed=N/A", ProgressLine{SpeedSeen: true}},
		{"both on one line", "out_time_us=1000000 speed=2.0x", ProgressLine{Elapsed: time.Second, HasTime: true, Speed: 2, HasSpeed: true, SpeedSeen: true}},
		{"us wins over ms", "out_time_ms=5 out_time_us=3000000", ProgressLine{Elapsed: 3 * time.Second, HasTime: true}},
		{"us first then ms", "out_time_us=3000000 out_time_ms=5", ProgressLine{Elapsed: 3 * time.Second, HasTime: true}},
		{"negative time ignored", "out_time_us=-1", ProgressLine{}},
		{"N/A time ignored", "out_time_us=N/A", ProgressLine{}},
		{"garbage speed ignored", "speed=fast", ProgressLine{}},
		{"unrelated key", "frame=120", ProgressLine{}},
		{"out_time is not a time key", "out_time=00:00:01.000000", ProgressLine{}},
		{"progress end", "progress=end", ProgressLine{}},
		{"empty", "", ProgressLine{}},
		{"no equals", "hello world", ProgressLine{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseProgressLine(tt.line))
		})
	}
}

func TestProgressTracker_CarriesSpeed(t *testing.T) {
	var tr ProgressTracker
	lines := []string{
		"frame=10",
		"out_time_us=500000",
		"speed=N/A",
		"progress=continue",
		"out_time_us=1000000",
		"speed=1.5x",
		"progress=continue",
		"out_time_ms=2000000",
		"speed=bogus",
		"out_time_us=3000000",
		"speed=N/A",
		"out_time_us=4000000",
	}
	var events []ProgressEvent
	for _, l := range lines {
		if ev, ok := tr.Feed(l); ok {
			events = append(events, ev)
		}
	}
	assert.Equal(t, []ProgressEvent{
		{Elapsed: 500 * time.Millisecond},
		{Elapsed: time.Second},
		{Elapsed: 2 * time.Second, Speed: 1.5, HasSpeed: true},
		{Elapsed: 3 * time.Second, Speed: 1.5, HasSpeed: true},
		{Elapsed: 4 * time.Second},
	}, events)
}

func TestProgressEvent_Percent(t *testing.T) {
	ev := ProgressEvent{Elapsed: 30 * time.Second}
	assert.Equal(t, 50, ev.Percent(60))
	assert.Equal(t, 100, ev.Percent(10))
	assert.Equal(t, 0, ev.Percent(0))
	assert.Equal(t, 0, ProgressEvent{}.Percent(60))
}
