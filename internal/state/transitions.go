package state

// validTransitions contains the permitted non-emergency transitions. The
// zero-amount shortcut is the AwaitingAmount → Idle edge.
var validTransitions = map[State][]State{
	StateIdle: {
		StateAwaitingAmount,
	},
	StateAwaitingAmount: {
		StateAwaitingCategory,
		StateIdle,
	},
	StateAwaitingCategory: {
		StateAwaitingPurpose,
	},
	StateAwaitingPurpose: {
		StateAwaitingConfirmation,
	},
	StateAwaitingConfirmation: {
		StateIdle,
	},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
// Idle and the error state are always reachable so a session can be reset.
func IsTransitionAllowed(from, to State) bool {
	if to == StateError || to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}

	return false
}
