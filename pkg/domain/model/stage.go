package model

import (
	"sort"
	"time"

	"github.com/actio-dev/actio/pkg/domain/types"
)

// ActionStage is a node in the composition tree under a root action.
// Root stages have no parent. Children of a sequential stage may only
// change state in sibling order; parallel stages impose no ordering.
type ActionStage struct {
	ID            types.StageID
	ActionID      types.ActionID // owning root action
	Title         string
	Description   string
	ParentStageID types.StageID // empty for root stages
	IsSequential  bool
	Order         int
	CreatedBy     types.EntityID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Rev           int64
}

// Clone creates a copy of the stage
func (s *ActionStage) Clone() *ActionStage {
	copied := *s
	return &copied
}

// SortStages orders stages by sibling position, then creation time for
// stable ordering of legacy rows sharing an Order value.
func SortStages(stages []*ActionStage) {
	sort.SliceStable(stages, func(i, j int) bool {
		if stages[i].Order != stages[j].Order {
			return stages[i].Order < stages[j].Order
		}
		return stages[i].CreatedAt.Before(stages[j].CreatedAt)
	})
}

// SortTasks orders tasks by sibling position, then creation time
func SortTasks(tasks []*Action) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
