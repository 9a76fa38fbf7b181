package models

import "testing"

func TestNeedCampaignTransitions(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{NeedStatusDraft, NeedStatusReview, true},
		{NeedStatusReview, NeedStatusLive, true},
		{NeedStatusReview, NeedStatusDraft, true},
		{NeedStatusLive, NeedStatusSeeded, true},
		{NeedStatusLive, NeedStatusClosedUnseeded, true},
		{NeedStatusLive, NeedStatusCanceled, true},

		{NeedStatusDraft, NeedStatusLive, false},
		{NeedStatusSeeded, NeedStatusLive, false},
		{NeedStatusCanceled, NeedStatusDraft, false},
		{NeedStatusClosedUnseeded, NeedStatusLive, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidNeedTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidNeedTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestFeedCampaignTransitions(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{FeedStatusDraft, FeedStatusOpen, true},
		{FeedStatusOpen, FeedStatusSupplierSelected, true},
		{FeedStatusOpen, FeedStatusClosedNoWinner, true},

		{FeedStatusDraft, FeedStatusSupplierSelected, false},
		{FeedStatusSupplierSelected, FeedStatusOpen, false},
		{FeedStatusClosedNoWinner, FeedStatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidFeedTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidFeedTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestOfferTransitions(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{OfferStatusDraft, OfferStatusSubmitted, true},
		{OfferStatusSubmitted, OfferStatusSigned, true},
		{OfferStatusSigned, OfferStatusSelected, true},

		// Only signed offers are selectable
		{OfferStatusSubmitted, OfferStatusSelected, false},
		{OfferStatusDraft, OfferStatusSigned, false},
		{OfferStatusSelected, OfferStatusSigned, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidOfferTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidOfferTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestDisputeTransitions(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		{DisputeStatusOpen, DisputeStatusInReview, true},
		{DisputeStatusOpen, DisputeStatusResolved, true},
		{DisputeStatusOpen, DisputeStatusClosed, true},
		{DisputeStatusInReview, DisputeStatusResolved, true},
		{DisputeStatusInReview, DisputeStatusClosed, true},

		{DisputeStatusResolved, DisputeStatusOpen, false},
		{DisputeStatusClosed, DisputeStatusInReview, false},
		{DisputeStatusInReview, DisputeStatusOpen, false},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			if got := IsValidDisputeTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("IsValidDisputeTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, tc := range []struct {
		name   string
		m      map[string][]string
		status string
	}{
		{"need/seeded", ValidNeedTransitions, NeedStatusSeeded},
		{"need/closed_unseeded", ValidNeedTransitions, NeedStatusClosedUnseeded},
		{"need/canceled", ValidNeedTransitions, NeedStatusCanceled},
		{"feed/supplier_selected", ValidFeedTransitions, FeedStatusSupplierSelected},
		{"feed/closed_no_winner", ValidFeedTransitions, FeedStatusClosedNoWinner},
		{"offer/selected", ValidOfferTransitions, OfferStatusSelected},
		{"dispute/resolved", ValidDisputeTransitions, DisputeStatusResolved},
		{"dispute/closed", ValidDisputeTransitions, DisputeStatusClosed},
	} {
		if transitions := tc.m[tc.status]; len(transitions) != 0 {
			t.Errorf("terminal status %s should have no transitions, got %v", tc.name, transitions)
		}
	}
}

func TestOfferTotalValue(t *testing.T) {
	rows := []SupplierOfferRow{
		{UnitPrice: 12.5, MinQty: 100},
		{UnitPrice: 3.75, MinQty: 1000},
	}
	if got := OfferTotalValue(rows); got != 5000 {
		t.Errorf("OfferTotalValue = %v, want 5000", got)
	}
	if got := OfferTotalValue(nil); got != 0 {
		t.Errorf("OfferTotalValue(nil) = %v, want 0", got)
	}
}
