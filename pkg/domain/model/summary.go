package model

import "github.com/actio-dev/actio/pkg/domain/types"

// Summary is the aggregate view over a set of actions
type Summary struct {
	Completed      int
	Delayed        int
	Pending        int
	Total          int
	CompletionRate float64
}

// Summarize computes the aggregate over the given actions. Pending-delete
// rows are excluded; every non-completed, non-delayed status counts as
// pending work.
func Summarize(actions []*Action) Summary {
	var s Summary
	for _, a := range actions {
		if a.PendingDelete {
			continue
		}
		s.Total++
		switch a.Status {
		case types.ActionStatusCompleted:
			s.Completed++
		case types.ActionStatusDelayed:
			s.Delayed++
		default:
			s.Pending++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total)
	}
	return s
}
