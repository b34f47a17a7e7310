package profiler

import (
	"testing"
	"time"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithInterval(500*time.Millisecond), WithClock(func() time.Time { return now }))

	for range 29 {
		now = now.Add(10 * time.Millisecond)
		if p.Tick() {
			t.Fatal("reported before the interval elapsed")
		}
	}
	if p.FPS() != 0 {
		t.Errorf("FPS %f before the first report", p.FPS())
	}

	now = now.Add(210 * time.Millisecond)
	if !p.Tick() {
		t.Fatal("no report after the interval")
	}
	if got := p.FPS(); got != 60 {
		t.Errorf("FPS %f, want 60", got)
	}

	now = now.Add(10 * time.Millisecond)
	if p.Tick() {
		t.Error("counter was not reset after the report")
	}
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	if p.updateInterval != time.Second {
		t.Errorf("interval %v", p.updateInterval)
	}
}
