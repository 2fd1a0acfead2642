package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestNewBackoffPolicy_Defaults(t *testing.T) {
	p := NewBackoffPolicy(3)

	if p.MaxRetries() != 3 {
		t.Errorf("MaxRetries = %d, want 3", p.MaxRetries())
	}
	if p.BaseUnit() != time.Second {
		t.Errorf("BaseUnit = %v, want 1s", p.BaseUnit())
	}
	if p.MaxDelay() != MaxBackoffDelay {
		t.Errorf("MaxDelay = %v, want MaxBackoffDelay", p.MaxDelay())
	}
}

func TestNewBackoffPolicy_ClampsInvalid(t *testing.T) {
	p := NewBackoffPolicy(-5, WithBaseUnit(-time.Second), WithMaxDelay(-1))

	if p.MaxRetries() != 0 {
		t.Errorf("MaxRetries = %d, want 0", p.MaxRetries())
	}
	if p.BaseUnit() != 0 {
		t.Errorf("BaseUnit = %v, want 0", p.BaseUnit())
	}
	if p.MaxDelay() != MaxBackoffDelay {
		t.Errorf("MaxDelay = %v, want MaxBackoffDelay", p.MaxDelay())
	}
}

func TestBackoffPolicy_ShouldRetry(t *testing.T) {
	p := NewBackoffPolicy(2)
	err := errors.New("boom")

	tests := []struct {
		attempt int
		want    bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{3, false},
	}

	for _, tt := range tests {
		if got := p.ShouldRetry(tt.attempt, err); got != tt.want {
			t.Errorf("ShouldRetry(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffPolicy_ZeroRetries(t *testing.T) {
	p := NewBackoffPolicy(0)
	if p.ShouldRetry(0, errors.New("boom")) {
		t.Error("ShouldRetry(0) = true, want false for maxRetries 0")
	}
}

func TestBackoffPolicy_RetryDelayExponential(t *testing.T) {
	p := NewBackoffPolicy(10, WithBaseUnit(100*time.Millisecond))

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{10, 102400 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := p.RetryDelay(tt.attempt); got != tt.want {
			t.Errorf("RetryDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffPolicy_DefaultMatchesSeconds(t *testing.T) {
	p := NewBackoffPolicy(5)

	if got := p.RetryDelay(0); got != time.Second {
		t.Errorf("RetryDelay(0) = %v, want 1s", got)
	}
	if got := p.RetryDelay(4); got != 16*time.Second {
		t.Errorf("RetryDelay(4) = %v, want 16s", got)
	}
}

func TestBackoffPolicy_RetryDelaySaturates(t *testing.T) {
	p := NewBackoffPolicy(1000)

	for _, attempt := range []int{40, 62, 63, 64, 200, 1 << 20} {
		got := p.RetryDelay(attempt)
		if got <= 0 {
			t.Errorf("RetryDelay(%d) = %v, want positive", attempt, got)
		}
		if got > MaxBackoffDelay {
			t.Errorf("RetryDelay(%d) = %v exceeds MaxBackoffDelay", attempt, got)
		}
	}
	if got := p.RetryDelay(64); got != MaxBackoffDelay {
		t.Errorf("RetryDelay(64) = %v, want MaxBackoffDelay", got)
	}
}

func TestBackoffPolicy_RetryDelayCapped(t *testing.T) {
	p := NewBackoffPolicy(10, WithBaseUnit(time.Second), WithMaxDelay(5*time.Second))

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for attempt, w := range want {
		if got := p.RetryDelay(attempt); got != w {
			t.Errorf("RetryDelay(%d) = %v, want %v", attempt, got, w)
		}
	}
}

func TestBackoffPolicy_RetryDelayNonDecreasing(t *testing.T) {
	p := NewBackoffPolicy(100, WithBaseUnit(3*time.Millisecond))

	prev := time.Duration(0)
	for attempt := 0; attempt < 100; attempt++ {
		d := p.RetryDelay(attempt)
		if d < prev {
			t.Fatalf("RetryDelay(%d) = %v < RetryDelay(%d) = %v", attempt, d, attempt-1, prev)
		}
		prev = d
	}
}

func TestBackoffPolicy_NegativeAttempt(t *testing.T) {
	p := NewBackoffPolicy(3, WithBaseUnit(time.Millisecond))
	if got := p.RetryDelay(-1); got != time.Millisecond {
		t.Errorf("RetryDelay(-1) = %v, want 1ms", got)
	}
}

func TestRetryPolicyFunc(t *testing.T) {
	p := RetryPolicyFunc{
		Retry: func(attempt int, err error) bool { return attempt < 1 },
		Delay: func(attempt int) time.Duration { return time.Duration(attempt+1) * time.Millisecond },
	}

	if !p.ShouldRetry(0, nil) {
		t.Error("ShouldRetry(0) = false, want true")
	}
	if p.ShouldRetry(1, nil) {
		t.Error("ShouldRetry(1) = true, want false")
	}
	if got := p.RetryDelay(1); got != 2*time.Millisecond {
		t.Errorf("RetryDelay(1) = %v, want 2ms", got)
	}

	var empty RetryPolicyFunc
	if empty.ShouldRetry(0, nil) {
		t.Error("empty ShouldRetry = true, want false")
	}
	if empty.RetryDelay(0) != 0 {
		t.Error("empty RetryDelay != 0")
	}
}
