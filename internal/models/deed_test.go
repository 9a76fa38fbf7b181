package models

import "testing"

func TestIsValidDeedTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{DeedStatusDraft, DeedStatusSigned, true},
		{DeedStatusDraft, DeedStatusExecuted, true},
		{DeedStatusSigned, DeedStatusExecuted, true},
		{DeedStatusExecuted, DeedStatusActive, true},
		{DeedStatusActive, DeedStatusFulfilled, true},

		// Invalid transitions
		{DeedStatusSigned, DeedStatusDraft, false},
		{DeedStatusExecuted, DeedStatusDraft, false},
		{DeedStatusFulfilled, DeedStatusActive, false},
		{DeedStatusDraft, DeedStatusFulfilled, false},
		{DeedStatusDraft, DeedStatusActive, false},
		{"nonexistent", DeedStatusSigned, false},
		{DeedStatusDraft, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidDeedTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidDeedTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestDeedTerminalStatus(t *testing.T) {
	if len(ValidDeedTransitions[DeedStatusFulfilled]) != 0 {
		t.Errorf("fulfilled should be terminal, got %v", ValidDeedTransitions[DeedStatusFulfilled])
	}
}

func TestSignerProgressComplete(t *testing.T) {
	tests := []struct {
		progress SignerProgress
		expected bool
	}{
		{SignerProgress{Signed: 0, Total: 0}, false},
		{SignerProgress{Signed: 0, Total: 3}, false},
		{SignerProgress{Signed: 2, Total: 3}, false},
		{SignerProgress{Signed: 3, Total: 3}, true},
	}
	for _, tt := range tests {
		if got := tt.progress.Complete(); got != tt.expected {
			t.Errorf("Complete() for %+v = %v, want %v", tt.progress, got, tt.expected)
		}
	}
}
