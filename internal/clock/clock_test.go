package clock

import (
	"testing"
	"time"
)

func TestNowUsMonotonicallyIncreases(t *testing.T) {
	c := New()
	a := c.NowUs()
	time.Sleep(2 * time.Millisecond)
	b := c.NowUs()
	if b <= a {
		t.Fatalf("expected NowUs to increase, got a=%d b=%d", a, b)
	}
}

func TestElapsedUsSinceNonNegative(t *testing.T) {
	c := New()
	start := c.NowUs()
	time.Sleep(time.Millisecond)
	elapsed := c.ElapsedUsSince(start)
	if elapsed < 0 {
		t.Fatalf("expected non-negative elapsed, got %d", elapsed)
	}
}

func TestRecalibrateNoOpWithinTolerance(t *testing.T) {
	c := NewWithCalibrationInterval(time.Millisecond)
	before := c.base.Load()
	time.Sleep(5 * time.Millisecond)
	_ = c.NowUsCalibrated()
	after := c.base.Load()
	// Drift over a few milliseconds of real wall-clock time should stay
	// under the 1ms threshold, so the base pair should not be replaced.
	if before.instant != after.instant {
		t.Skip("host clock drifted enough to force recalibration; not a failure")
	}
}
