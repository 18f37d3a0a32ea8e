package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
)

// AddStage inserts a stage into an action's tree. The new edge is rejected
// when the parent chain would loop back through the stage's own ancestry.
func (u *UseCases) AddStage(ctx context.Context, actor *model.Actor, stage *model.ActionStage) (*model.ActionStage, error) {
	if !actor.Can(types.CapabilityManageStages) {
		return nil, goerr.Wrap(ErrPermissionDenied, "managing stages requires the capability",
			goerr.V("action_id", stage.ActionID))
	}
	if stage.Title == "" {
		return nil, goerr.New("stage title is required", goerr.T(types.ErrTagValidation))
	}
	if _, err := u.GetAction(ctx, stage.ActionID); err != nil {
		return nil, err
	}

	created := stage.Clone()
	if created.ID == "" {
		created.ID = types.NewStageID()
	}
	if actor != nil {
		created.CreatedBy = actor.ID
	}

	if created.ParentStageID != "" {
		parent, err := u.getStage(ctx, created.ParentStageID)
		if err != nil {
			return nil, err
		}
		if parent.ActionID != created.ActionID {
			return nil, goerr.New("parent stage belongs to another action", goerr.T(types.ErrTagValidation),
				goerr.V("parent_id", parent.ID), goerr.V("action_id", created.ActionID))
		}
		if err := u.checkNoCycle(ctx, created.ID, created.ParentStageID); err != nil {
			return nil, err
		}
	}

	return u.engine.CreateStage(ctx, created)
}

// EditStage updates a stage's title, description, ordering mode or sibling
// position. Reparenting goes through the same cycle check as insertion.
func (u *UseCases) EditStage(ctx context.Context, actor *model.Actor, stage *model.ActionStage) (*model.ActionStage, error) {
	if !actor.Can(types.CapabilityManageStages) {
		return nil, goerr.Wrap(ErrPermissionDenied, "managing stages requires the capability",
			goerr.V("stage_id", stage.ID))
	}

	existing, err := u.getStage(ctx, stage.ID)
	if err != nil {
		return nil, err
	}

	if stage.ParentStageID != existing.ParentStageID && stage.ParentStageID != "" {
		if err := u.checkNoCycle(ctx, stage.ID, stage.ParentStageID); err != nil {
			return nil, err
		}
	}

	return u.engine.UpdateStage(ctx, stage)
}

// MoveStage reparents a stage and assigns its new sibling position
func (u *UseCases) MoveStage(ctx context.Context, actor *model.Actor, stageID types.StageID, newParentID types.StageID, newOrder int) (*model.ActionStage, error) {
	if !actor.Can(types.CapabilityManageStages) {
		return nil, goerr.Wrap(ErrPermissionDenied, "managing stages requires the capability",
			goerr.V("stage_id", stageID))
	}

	stage, err := u.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}

	if newParentID != "" {
		parent, err := u.getStage(ctx, newParentID)
		if err != nil {
			return nil, err
		}
		if parent.ActionID != stage.ActionID {
			return nil, goerr.New("target parent belongs to another action", goerr.T(types.ErrTagValidation),
				goerr.V("parent_id", newParentID))
		}
		if err := u.checkNoCycle(ctx, stageID, newParentID); err != nil {
			return nil, err
		}
	}

	stage.ParentStageID = newParentID
	stage.Order = newOrder

	return u.engine.UpdateStage(ctx, stage)
}

// DeleteStage removes a stage. Without force the stage must be empty; with
// force the whole subtree is removed, deepest first, including tasks.
// Deleting an absent stage is a no-op.
func (u *UseCases) DeleteStage(ctx context.Context, actor *model.Actor, stageID types.StageID, force bool) error {
	if !actor.Can(types.CapabilityManageStages) {
		return goerr.Wrap(ErrPermissionDenied, "managing stages requires the capability",
			goerr.V("stage_id", stageID))
	}

	stage, err := u.engine.GetStage(ctx, stageID)
	if err != nil {
		if types.IsNotFound(err) {
			return nil
		}
		return err
	}

	children, err := u.engine.ListChildStages(ctx, stage.ActionID, stage.ID)
	if err != nil {
		return err
	}
	tasks, err := u.engine.ListTasksByStage(ctx, stage.ID)
	if err != nil {
		return err
	}

	if (len(children) > 0 || len(tasks) > 0) && !force {
		return goerr.Wrap(ErrStageNotEmpty, "",
			goerr.V("stage_id", stageID),
			goerr.V("child_stages", len(children)),
			goerr.V("tasks", len(tasks)))
	}

	return u.cascadeDeleteStage(ctx, stage)
}

// AddTask creates a task leaf under a stage. The task inherits the stage's
// root action and, when unset, the root action's company and responsible.
func (u *UseCases) AddTask(ctx context.Context, actor *model.Actor, stageID types.StageID, task *model.Action) (*model.Action, error) {
	if !actor.Can(types.CapabilityManageStages) {
		return nil, goerr.Wrap(ErrPermissionDenied, "managing stages requires the capability",
			goerr.V("stage_id", stageID))
	}

	stage, err := u.getStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	root, err := u.GetAction(ctx, stage.ActionID)
	if err != nil {
		return nil, err
	}

	created := task.Clone()
	created.IsSubtask = true
	created.ParentActionID = stage.ActionID
	created.StageID = stageID
	if created.Status == "" {
		created.Status = types.ActionStatusPending
	}
	if created.CompanyID == "" {
		created.CompanyID = root.CompanyID
	}
	if created.ResponsibleID == "" {
		created.ResponsibleID = root.ResponsibleID
	}
	if created.RequesterID == "" {
		created.RequesterID = root.RequesterID
	}
	if actor != nil {
		created.CreatedBy = actor.ID
		created.CreatedByName = actor.Name
	}
	if created.Order == 0 {
		siblings, err := u.engine.ListTasksByStage(ctx, stageID)
		if err != nil {
			return nil, err
		}
		created.Order = len(siblings)
	}

	return u.engine.CreateAction(ctx, created)
}

// GetStage retrieves a stage by ID
func (u *UseCases) GetStage(ctx context.Context, id types.StageID) (*model.ActionStage, error) {
	return u.getStage(ctx, id)
}

// ListStages lists an action's stages in tree order (siblings sorted)
func (u *UseCases) ListStages(ctx context.Context, actionID types.ActionID) ([]*model.ActionStage, error) {
	return u.engine.ListStagesByAction(ctx, actionID)
}

// ListTasks lists the tasks owned by a stage in sibling order
func (u *UseCases) ListTasks(ctx context.Context, stageID types.StageID) ([]*model.Action, error) {
	return u.engine.ListTasksByStage(ctx, stageID)
}

func (u *UseCases) getStage(ctx context.Context, id types.StageID) (*model.ActionStage, error) {
	stage, err := u.engine.GetStage(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, goerr.Wrap(ErrStageNotFound, "", goerr.V("id", id))
		}
		return nil, err
	}
	return stage, nil
}

// checkNoCycle walks from the candidate parent up to the root and rejects
// the edge when the chain passes through the stage itself or repeats.
func (u *UseCases) checkNoCycle(ctx context.Context, stageID types.StageID, parentID types.StageID) error {
	seen := map[types.StageID]struct{}{stageID: {}}

	current := parentID
	for current != "" {
		if _, ok := seen[current]; ok {
			return goerr.Wrap(ErrCyclicStage, "",
				goerr.V("stage_id", stageID), goerr.V("via", current))
		}
		seen[current] = struct{}{}

		parent, err := u.engine.GetStage(ctx, current)
		if err != nil {
			if types.IsNotFound(err) {
				return nil
			}
			return err
		}
		current = parent.ParentStageID
	}

	return nil
}

func (u *UseCases) cascadeDeleteStage(ctx context.Context, stage *model.ActionStage) error {
	children, err := u.engine.ListChildStages(ctx, stage.ActionID, stage.ID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := u.cascadeDeleteStage(ctx, child); err != nil {
			return err
		}
	}

	tasks, err := u.engine.ListTasksByStage(ctx, stage.ID)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := u.engine.DeleteAction(ctx, task.ID); err != nil {
			return err
		}
	}

	return u.engine.DeleteStage(ctx, stage.ID)
}

func (u *UseCases) deleteStagesDeepestFirst(ctx context.Context, actionID types.ActionID) error {
	roots, err := u.engine.ListChildStages(ctx, actionID, "")
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := u.cascadeDeleteStage(ctx, root); err != nil {
			return err
		}
	}
	return nil
}

// orderUnit is one direct child of a stage, either a sub-stage or a task,
// positioned among its siblings.
type orderUnit struct {
	id        string
	order     int
	createdAt time.Time
	concluded bool
	title     string
}

// validateOrdering enforces sequential-stage ordering for a task: at every
// sequential level of its ancestry, all earlier siblings must already be
// concluded. Parallel stages impose no check.
func (u *UseCases) validateOrdering(ctx context.Context, task *model.Action) error {
	if !task.IsSubtask || task.StageID == "" {
		return nil
	}

	stage, err := u.engine.GetStage(ctx, task.StageID)
	if err != nil {
		if types.IsNotFound(err) {
			return nil
		}
		return err
	}

	if stage.IsSequential {
		if err := u.checkEarlierSiblings(ctx, stage, task.ID.String()); err != nil {
			return err
		}
	}

	child := stage
	for child.ParentStageID != "" {
		parent, err := u.engine.GetStage(ctx, child.ParentStageID)
		if err != nil {
			if types.IsNotFound(err) {
				return nil
			}
			return err
		}
		if parent.IsSequential {
			if err := u.checkEarlierSiblings(ctx, parent, child.ID.String()); err != nil {
				return err
			}
		}
		child = parent
	}

	return nil
}

// checkEarlierSiblings rejects when any sibling ordered before the current
// unit inside the given sequential stage is not yet concluded.
func (u *UseCases) checkEarlierSiblings(ctx context.Context, parent *model.ActionStage, currentID string) error {
	units, err := u.stageChildren(ctx, parent)
	if err != nil {
		return err
	}

	sort.SliceStable(units, func(i, j int) bool {
		if units[i].order != units[j].order {
			return units[i].order < units[j].order
		}
		return units[i].createdAt.Before(units[j].createdAt)
	})

	for _, unit := range units {
		if unit.id == currentID {
			return nil
		}
		if !unit.concluded {
			return goerr.Wrap(ErrOrderingViolation, "",
				goerr.V("stage_id", parent.ID),
				goerr.V("blocking", unit.title),
				goerr.V("blocking_id", unit.id))
		}
	}

	return nil
}

// stageChildren merges a stage's direct sub-stages and tasks into one
// sibling list. A sub-stage counts as concluded when every task in its
// subtree is concluded; an empty sub-stage blocks nothing.
func (u *UseCases) stageChildren(ctx context.Context, parent *model.ActionStage) ([]orderUnit, error) {
	var units []orderUnit

	children, err := u.engine.ListChildStages(ctx, parent.ActionID, parent.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		concluded, err := u.stageConcluded(ctx, child)
		if err != nil {
			return nil, err
		}
		units = append(units, orderUnit{
			id:        child.ID.String(),
			order:     child.Order,
			createdAt: child.CreatedAt,
			concluded: concluded,
			title:     child.Title,
		})
	}

	tasks, err := u.engine.ListTasksByStage(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		units = append(units, orderUnit{
			id:        task.ID.String(),
			order:     task.Order,
			createdAt: task.CreatedAt,
			concluded: task.Status == types.ActionStatusCompleted,
			title:     task.Subject,
		})
	}

	return units, nil
}

func (u *UseCases) stageConcluded(ctx context.Context, stage *model.ActionStage) (bool, error) {
	tasks, err := u.engine.ListTasksByStage(ctx, stage.ID)
	if err != nil {
		return false, err
	}
	for _, task := range tasks {
		if task.Status != types.ActionStatusCompleted {
			return false, nil
		}
	}

	children, err := u.engine.ListChildStages(ctx, stage.ActionID, stage.ID)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		concluded, err := u.stageConcluded(ctx, child)
		if err != nil {
			return false, err
		}
		if !concluded {
			return false, nil
		}
	}

	return true, nil
}
