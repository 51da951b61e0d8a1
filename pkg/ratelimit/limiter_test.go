package ratelimit

import (
	"testing"
	"time"
)

func TestIntervalFirstRequestImmediate(t *testing.T) {
	in := NewInterval(200 * time.Millisecond)

	start := time.Now()
	in.Wait()
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Expected first request to pass immediately, waited %v", elapsed)
	}
}

func TestIntervalEnforcesGap(t *testing.T) {
	in := NewInterval(150 * time.Millisecond)

	in.Wait() // first request, no delay
	start := time.Now()
	in.Wait()
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Expected second request to wait out the gap, waited only %v", elapsed)
	}
}

func TestIntervalAllow(t *testing.T) {
	in := NewInterval(time.Second)

	if !in.Allow() {
		t.Error("Expected first request to be allowed")
	}
	if in.Allow() {
		t.Error("Expected request inside the gap to be denied")
	}
}

func TestIntervalAllowAfterGap(t *testing.T) {
	in := NewInterval(100 * time.Millisecond)

	if !in.Allow() {
		t.Error("Expected first request to be allowed")
	}
	time.Sleep(150 * time.Millisecond)
	if !in.Allow() {
		t.Error("Expected request after the gap to be allowed")
	}
}

func TestIntervalReset(t *testing.T) {
	in := NewInterval(time.Minute)

	if !in.Allow() {
		t.Error("Expected first request to be allowed")
	}
	in.Reset()
	if !in.Allow() {
		t.Error("Expected request after reset to be allowed")
	}
}

func TestIntervalZeroGap(t *testing.T) {
	in := NewInterval(0)

	for i := 0; i < 3; i++ {
		if !in.Allow() {
			t.Errorf("Expected request %d to be allowed with zero gap", i+1)
		}
	}
}
