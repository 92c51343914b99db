package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "idle to awaiting amount", from: StateIdle, to: StateAwaitingAmount, expected: true},
		{name: "awaiting amount to awaiting category", from: StateAwaitingAmount, to: StateAwaitingCategory, expected: true},
		{name: "awaiting amount zero shortcut to idle", from: StateAwaitingAmount, to: StateIdle, expected: true},
		{name: "awaiting category to awaiting purpose", from: StateAwaitingCategory, to: StateAwaitingPurpose, expected: true},
		{name: "awaiting purpose to awaiting confirmation", from: StateAwaitingPurpose, to: StateAwaitingConfirmation, expected: true},
		{name: "awaiting confirmation to idle", from: StateAwaitingConfirmation, to: StateIdle, expected: true},
		{name: "idle to awaiting purpose invalid", from: StateIdle, to: StateAwaitingPurpose, expected: false},
		{name: "awaiting category to awaiting confirmation invalid", from: StateAwaitingCategory, to: StateAwaitingConfirmation, expected: false},
		{name: "awaiting confirmation to awaiting amount invalid", from: StateAwaitingConfirmation, to: StateAwaitingAmount, expected: false},
		{name: "unknown state to awaiting category invalid", from: State("unknown"), to: StateAwaitingCategory, expected: false},
		{name: "any state to idle emergency", from: State("whatever"), to: StateIdle, expected: true},
		{name: "any state to error emergency", from: StateAwaitingConfirmation, to: StateError, expected: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}
