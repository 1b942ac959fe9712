package appointment

// transitionMap records, per target status, the statuses it may be entered
// from. The browser client hides illegal transition buttons; the server
// enforces the same rule so API callers cannot bypass it.
var transitionMap = map[string][]string{
	StatusConfirmed: {StatusPending},
	StatusCompleted: {StatusConfirmed},
	StatusCancelled: {StatusPending, StatusConfirmed},
}

// CanTransition reports whether an appointment currently in from may be moved
// to to. Re-asserting the current status is a no-op, not a transition.
// completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitionMap[to]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from the given status, in
// lifecycle order. Terminal statuses return nil.
func AllowedNext(from string) []string {
	var next []string
	for _, to := range Statuses {
		if to != from && CanTransition(from, to) {
			next = append(next, to)
		}
	}
	return next
}
