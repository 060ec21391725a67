//go:build unix

package game

import (
	"syscall"
	"testing"
	"time"
)

func cpuTime(t *testing.T) time.Duration {
	t.Helper()
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		t.Fatalf("getrusage: %v", err)
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

func TestSystemClockSleepsInsteadOfSpinning(t *testing.T) {
	clock := SystemClock{}
	const wait = 300 * time.Millisecond

	cpuBefore := cpuTime(t)
	start := time.Now()
	clock.SleepUntil(start.Add(wait))
	wall := time.Since(start)
	cpu := cpuTime(t) - cpuBefore

	if wall < wait {
		t.Fatalf("SleepUntil returned after %v, want at least %v", wall, wait)
	}
	// a spin loop would burn roughly the whole wait on one core
	if cpu > wall/2 {
		t.Errorf("SleepUntil used %v CPU over %v wall time", cpu, wall)
	}
}

func TestSystemClockPastDeadlineReturns(t *testing.T) {
	start := time.Now()
	SystemClock{}.SleepUntil(start.Add(-time.Second))
	if time.Since(start) > 50*time.Millisecond {
		t.Error("SleepUntil blocked on a past deadline")
	}
}
