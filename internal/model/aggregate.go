package model

// Aggregate is the derived progress view of a parent assignment over its
// delegations.
type Aggregate struct {
	Progress     int
	AllCompleted bool
}

// AggregateProgress derives the parent assignment progress and completion
// flag from its delegations. Soft-deleted and cancelled delegations are
// excluded; a pending delegation still counts in the denominator so an
// unaccepted delegation drags the average down.
//
// With no active delegations the current parent progress is kept and
// AllCompleted is vacuously true, callers deciding on completion side
// effects must not treat "no delegations" as "work done".
func AggregateProgress(current int, ds []Delegation) Aggregate {
	active := 0
	total := 0
	allCompleted := true

	for _, d := range ds {
		if d.Deleted() || d.Status == DelegationStatusCancelled {
			continue
		}
		active++
		total += d.Progress
		if d.Status != DelegationStatusCompleted {
			allCompleted = false
		}
	}

	if active == 0 {
		return Aggregate{Progress: current, AllCompleted: true}
	}

	// Mean rounded to the nearest integer, ties round half up.
	progress := (total*2 + active) / (active * 2)

	return Aggregate{Progress: progress, AllCompleted: allCompleted}
}
