package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreakerAllowWhenClosed(t *testing.T) {
	b := New(3, 100*time.Millisecond)
	if !b.Allow("sanctions") {
		t.Fatal("expected closed circuit to allow")
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("sanctions")
	b.RecordFailure("sanctions")
	if !b.Allow("sanctions") {
		t.Fatal("should still allow before threshold")
	}

	b.RecordFailure("sanctions")
	if b.Allow("sanctions") {
		t.Fatal("should be open after 3 failures")
	}
	if b.State("sanctions") != StateOpen {
		t.Fatalf("expected StateOpen, got %v", b.State("sanctions"))
	}
}

func TestBreakerOpenToHalfOpenAfterDuration(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("chain")
	b.RecordFailure("chain")
	if b.Allow("chain") {
		t.Fatal("should be open")
	}

	time.Sleep(60 * time.Millisecond)

	// Transitions to half-open and allows one probe.
	if !b.Allow("chain") {
		t.Fatal("should allow probe in half-open")
	}
	if b.State("chain") != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen, got %v", b.State("chain"))
	}

	// Second request while half-open is rejected.
	if b.Allow("chain") {
		t.Fatal("should reject second request in half-open")
	}
}

func TestBreakerHalfOpenSuccessCloses(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("pep")
	b.RecordFailure("pep")
	time.Sleep(60 * time.Millisecond)
	b.Allow("pep") // transitions to half-open

	b.RecordSuccess("pep")
	if b.State("pep") != StateClosed {
		t.Fatalf("expected StateClosed after success, got %v", b.State("pep"))
	}
	if !b.Allow("pep") {
		t.Fatal("should allow after recovery")
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("adverse_media")
	b.RecordFailure("adverse_media")
	time.Sleep(60 * time.Millisecond)
	b.Allow("adverse_media") // transitions to half-open

	b.RecordFailure("adverse_media")
	if b.State("adverse_media") != StateOpen {
		t.Fatalf("expected StateOpen after half-open failure, got %v", b.State("adverse_media"))
	}
}

func TestBreakerSuccessResets(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("disputes")
	b.RecordFailure("disputes")
	b.RecordSuccess("disputes")

	// Counter was reset; one more failure must not trip.
	b.RecordFailure("disputes")
	if !b.Allow("disputes") {
		t.Fatal("should still be closed after reset")
	}
}

func TestBreakerIndependentSources(t *testing.T) {
	b := New(2, 100*time.Millisecond)

	b.RecordFailure("sanctions")
	b.RecordFailure("sanctions")

	if b.Allow("sanctions") {
		t.Fatal("sanctions should be open")
	}
	if !b.Allow("pep") {
		t.Fatal("pep should be unaffected")
	}
}

func TestBreakerUnknownSourceIsClosed(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	if b.State("unknown") != StateClosed {
		t.Fatalf("expected StateClosed for unknown source, got %v", b.State("unknown"))
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
