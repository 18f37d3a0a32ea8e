package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/usecase"
)

func TestStageTree(t *testing.T) {
	ctx := context.Background()

	t.Run("stage requires a title and an existing action", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()

		_, err = uc.AddStage(ctx, actor, &model.ActionStage{ActionID: created.ID})
		gt.Value(t, err).NotNil()

		_, err = uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: types.NewActionID(), Title: "orphan",
		})
		gt.Error(t, err).Is(usecase.ErrActionNotFound)
	})

	t.Run("stage management requires the capability", func(t *testing.T) {
		uc, _ := setup(t)

		created, err := uc.CreateAction(ctx, admin(), draft("root"))
		gt.NoError(t, err).Required()

		_, err = uc.AddStage(ctx, member(), &model.ActionStage{
			ActionID: created.ID, Title: "phase 1",
		})
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})

	t.Run("parent stage must belong to the same action", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		first, err := uc.CreateAction(ctx, actor, draft("first"))
		gt.NoError(t, err).Required()
		second, err := uc.CreateAction(ctx, actor, draft("second"))
		gt.NoError(t, err).Required()

		foreign, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: second.ID, Title: "foreign parent",
		})
		gt.NoError(t, err).Required()

		_, err = uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: first.ID, Title: "child", ParentStageID: foreign.ID,
		})
		gt.Value(t, err).NotNil()
	})

	t.Run("reparenting under a descendant is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()

		top, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "top",
		})
		gt.NoError(t, err).Required()
		child, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "child", ParentStageID: top.ID,
		})
		gt.NoError(t, err).Required()

		_, err = uc.MoveStage(ctx, actor, top.ID, child.ID, 0)
		gt.Error(t, err).Is(usecase.ErrCyclicStage)

		// Self-parenting is the shortest cycle
		_, err = uc.MoveStage(ctx, actor, top.ID, top.ID, 0)
		gt.Error(t, err).Is(usecase.ErrCyclicStage)
	})

	t.Run("move assigns the new parent and position", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()

		first, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "first",
		})
		gt.NoError(t, err).Required()
		second, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "second",
		})
		gt.NoError(t, err).Required()

		moved, err := uc.MoveStage(ctx, actor, second.ID, first.ID, 3)
		gt.NoError(t, err).Required()
		gt.Value(t, moved.ParentStageID).Equal(first.ID)
		gt.Value(t, moved.Order).Equal(3)

		children, err := uc.ListStages(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, children).Length(2)
	})

	t.Run("delete refuses a populated stage without force", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()

		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "phase 1",
		})
		gt.NoError(t, err).Required()
		_, err = uc.AddTask(ctx, actor, stage.ID, draft("subtask"))
		gt.NoError(t, err).Required()

		err = uc.DeleteStage(ctx, actor, stage.ID, false)
		gt.Error(t, err).Is(usecase.ErrStageNotEmpty)

		gt.NoError(t, uc.DeleteStage(ctx, actor, stage.ID, true)).Required()

		tasks, err := uc.ListTasks(ctx, stage.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})

	t.Run("deleting an absent stage is a no-op", func(t *testing.T) {
		uc, _ := setup(t)

		gt.NoError(t, uc.DeleteStage(ctx, admin(), types.NewStageID(), false)).Required()
	})
}

func TestAddTask(t *testing.T) {
	ctx := context.Background()

	t.Run("task inherits the root action's references", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		root := draft("root")
		root.ResponsibleID = types.NewEntityID()
		root.RequesterID = types.NewEntityID()
		created, err := uc.CreateAction(ctx, actor, root)
		gt.NoError(t, err).Required()

		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "phase 1",
		})
		gt.NoError(t, err).Required()

		task, err := uc.AddTask(ctx, actor, stage.ID, &model.Action{Subject: "subtask"})
		gt.NoError(t, err).Required()
		gt.B(t, task.IsSubtask).True()
		gt.Value(t, task.ParentActionID).Equal(created.ID)
		gt.Value(t, task.StageID).Equal(stage.ID)
		gt.Value(t, task.CompanyID).Equal(created.CompanyID)
		gt.Value(t, task.ResponsibleID).Equal(created.ResponsibleID)
		gt.Value(t, task.RequesterID).Equal(created.RequesterID)
		gt.Value(t, task.Status).Equal(types.ActionStatusPending)
	})

	t.Run("tasks receive increasing sibling positions", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()
		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "phase 1",
		})
		gt.NoError(t, err).Required()

		first, err := uc.AddTask(ctx, actor, stage.ID, draft("first"))
		gt.NoError(t, err).Required()
		second, err := uc.AddTask(ctx, actor, stage.ID, draft("second"))
		gt.NoError(t, err).Required()
		gt.Value(t, first.Order).Equal(0)
		gt.Value(t, second.Order).Equal(1)
	})

	t.Run("adding a task to a missing stage fails", func(t *testing.T) {
		uc, _ := setup(t)

		_, err := uc.AddTask(ctx, admin(), types.NewStageID(), draft("orphan"))
		gt.Error(t, err).Is(usecase.ErrStageNotFound)
	})
}

func TestSequentialOrdering(t *testing.T) {
	ctx := context.Background()

	// One root action, one sequential stage with two tasks in order
	buildSequential := func(t *testing.T) (*usecase.UseCases, *model.Actor, *model.Action, *model.Action) {
		t.Helper()
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()
		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "sequential phase", IsSequential: true,
		})
		gt.NoError(t, err).Required()

		first, err := uc.AddTask(ctx, actor, stage.ID, draft("first"))
		gt.NoError(t, err).Required()
		second, err := uc.AddTask(ctx, actor, stage.ID, draft("second"))
		gt.NoError(t, err).Required()
		return uc, actor, first, second
	}

	t.Run("a later task cannot complete before an earlier one", func(t *testing.T) {
		uc, actor, _, second := buildSequential(t)

		_, err := uc.CompleteWithNote(ctx, actor, second.ID, "done early", nil)
		gt.Error(t, err).Is(usecase.ErrOrderingViolation)
	})

	t.Run("completing in order succeeds", func(t *testing.T) {
		uc, actor, first, second := buildSequential(t)

		_, err := uc.CompleteWithNote(ctx, actor, first.ID, "done", nil)
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, actor, second.ID, "done", nil)
		gt.NoError(t, err).Required()
	})

	t.Run("parallel stages impose no ordering", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()
		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "parallel phase",
		})
		gt.NoError(t, err).Required()

		_, err = uc.AddTask(ctx, actor, stage.ID, draft("first"))
		gt.NoError(t, err).Required()
		second, err := uc.AddTask(ctx, actor, stage.ID, draft("second"))
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, actor, second.ID, "done out of order", nil)
		gt.NoError(t, err).Required()
	})

	t.Run("a sequential ancestor gates whole sub-stages", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root"))
		gt.NoError(t, err).Required()

		top, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "top", IsSequential: true,
		})
		gt.NoError(t, err).Required()

		earlier, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "earlier phase", ParentStageID: top.ID, Order: 0,
		})
		gt.NoError(t, err).Required()
		later, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "later phase", ParentStageID: top.ID, Order: 1,
		})
		gt.NoError(t, err).Required()

		blocking, err := uc.AddTask(ctx, actor, earlier.ID, draft("blocking work"))
		gt.NoError(t, err).Required()
		gated, err := uc.AddTask(ctx, actor, later.ID, draft("gated work"))
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, actor, gated.ID, "too soon", nil)
		gt.Error(t, err).Is(usecase.ErrOrderingViolation)

		_, err = uc.CompleteWithNote(ctx, actor, blocking.ID, "done", nil)
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, actor, gated.ID, "now allowed", nil)
		gt.NoError(t, err).Required()
	})
}
