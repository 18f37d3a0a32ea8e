package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/repository/memory"
	syncsvc "github.com/actio-dev/actio/pkg/service/sync"
	"github.com/actio-dev/actio/pkg/usecase"
)

func setup(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	t.Cleanup(func() { repo.Close() })

	engine := syncsvc.New(repo, syncsvc.Config{Attempts: 1, Delay: time.Millisecond})
	return usecase.New(engine, opts...), repo
}

func admin() *model.Actor {
	return &model.Actor{
		ID:   types.NewEntityID(),
		Name: "admin",
		Capabilities: types.NewCapabilitySet(
			types.CapabilityCompleteAction,
			types.CapabilityApproveAction,
			types.CapabilityDeleteAction,
			types.CapabilityManageStages,
		),
	}
}

func member() *model.Actor {
	return &model.Actor{
		ID:   types.NewEntityID(),
		Name: "member",
	}
}

func draft(subject string) *model.Action {
	return &model.Action{
		Subject:   subject,
		CompanyID: types.NewEntityID(),
	}
}

func TestCreateAction(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to pending and records the creator", func(t *testing.T) {
		uc, _ := setup(t)
		actor := member()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()
		gt.Value(t, created.Status).Equal(types.ActionStatusPending)
		gt.Value(t, created.CreatedBy).Equal(actor.ID)
		gt.Value(t, created.CreatedByName).Equal("member")
		gt.B(t, created.StartDate.IsZero()).False()
	})

	t.Run("rejects an action without a subject", func(t *testing.T) {
		uc, _ := setup(t)

		_, err := uc.CreateAction(ctx, member(), &model.Action{CompanyID: types.NewEntityID()})
		gt.Value(t, err).NotNil()
	})

	t.Run("get missing action", func(t *testing.T) {
		uc, _ := setup(t)

		_, err := uc.GetAction(ctx, types.NewActionID())
		gt.Error(t, err).Is(usecase.ErrActionNotFound)
	})
}

func TestCompleteAction(t *testing.T) {
	ctx := context.Background()

	t.Run("completion without evidence is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.SetStatus(ctx, actor, created.ID, types.ActionStatusCompleted, nil)
		gt.Error(t, err).Is(usecase.ErrMissingEvidence)

		current, err := uc.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.Status).Equal(types.ActionStatusPending)
	})

	t.Run("a note counts as evidence", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.AddNote(ctx, actor, created.ID, "finished the checklist")
		gt.NoError(t, err).Required()

		completed, err := uc.SetStatus(ctx, actor, created.ID, types.ActionStatusCompleted, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, completed.Status).Equal(types.ActionStatusCompleted)
		gt.Value(t, completed.CompletedAt).NotNil()
	})

	t.Run("complete with note is one logical operation", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		completed, err := uc.CompleteWithNote(ctx, actor, created.ID, "done, see report", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, completed.Status).Equal(types.ActionStatusCompleted)

		notes, err := uc.ListNotes(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(1)
	})

	t.Run("the responsible can complete without the capability", func(t *testing.T) {
		uc, _ := setup(t)
		responsible := member()

		action := draft("prepare audit")
		action.ResponsibleID = responsible.ID
		created, err := uc.CreateAction(ctx, admin(), action)
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, responsible, created.ID, "done", nil)
		gt.NoError(t, err).Required()
	})

	t.Run("an unrelated actor cannot complete", func(t *testing.T) {
		uc, _ := setup(t)

		created, err := uc.CreateAction(ctx, admin(), draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.CompleteWithNote(ctx, member(), created.ID, "done", nil)
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})

	t.Run("explicit completion timestamp is preserved", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		when := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
		completed, err := uc.CompleteWithNote(ctx, actor, created.ID, "done", &when)
		gt.NoError(t, err).Required()
		gt.Value(t, *completed.CompletedAt).Equal(when)
	})

	t.Run("reopening clears the completion fields", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		completed, err := uc.CompleteWithNote(ctx, actor, created.ID, "done", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, completed.CompletedAt).NotNil()

		reopened, err := uc.SetStatus(ctx, actor, created.ID, types.ActionStatusPending, nil)
		gt.NoError(t, err).Required()
		gt.Value(t, reopened.Status).Equal(types.ActionStatusPending)
		gt.Value(t, reopened.CompletedAt).Nil()
		gt.Value(t, reopened.Approved).Nil()
	})
}

func TestApprovalFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("report then approve completes the action", func(t *testing.T) {
		uc, _ := setup(t)
		approver := admin()
		responsible := member()

		action := draft("prepare audit")
		action.ResponsibleID = responsible.ID
		created, err := uc.CreateAction(ctx, approver, action)
		gt.NoError(t, err).Required()
		_, err = uc.AddNote(ctx, responsible, created.ID, "audit report attached")
		gt.NoError(t, err).Required()

		reported, err := uc.ReportForApproval(ctx, responsible, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, reported.Status).Equal(types.ActionStatusAwaitingApproval)

		approved, err := uc.Approve(ctx, approver, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, approved.Status).Equal(types.ActionStatusCompleted)
		gt.Value(t, *approved.Approved).Equal(true)
		gt.Value(t, approved.ApprovedAt).NotNil()
		gt.Value(t, approved.CompletedAt).NotNil()
	})

	t.Run("reporting without evidence is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		approver := admin()

		created, err := uc.CreateAction(ctx, approver, draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.ReportForApproval(ctx, approver, created.ID)
		gt.Error(t, err).Is(usecase.ErrMissingEvidence)

		current, err := uc.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.Status).Equal(types.ActionStatusPending)
	})

	t.Run("approval cannot complete an action whose evidence was removed", func(t *testing.T) {
		uc, _ := setup(t)
		approver := admin()

		created, err := uc.CreateAction(ctx, approver, draft("prepare audit"))
		gt.NoError(t, err).Required()
		note, err := uc.AddNote(ctx, approver, created.ID, "audit report attached")
		gt.NoError(t, err).Required()
		_, err = uc.ReportForApproval(ctx, approver, created.ID)
		gt.NoError(t, err).Required()

		_, err = uc.DeleteNote(ctx, approver, note.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Approve(ctx, approver, created.ID)
		gt.Error(t, err).Is(usecase.ErrMissingEvidence)

		current, err := uc.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.Status).Equal(types.ActionStatusAwaitingApproval)
	})

	t.Run("reject returns the action to the queue", func(t *testing.T) {
		uc, _ := setup(t)
		approver := admin()

		created, err := uc.CreateAction(ctx, approver, draft("prepare audit"))
		gt.NoError(t, err).Required()
		_, err = uc.AddNote(ctx, approver, created.ID, "audit report attached")
		gt.NoError(t, err).Required()

		_, err = uc.ReportForApproval(ctx, approver, created.ID)
		gt.NoError(t, err).Required()

		rejected, err := uc.Reject(ctx, approver, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, rejected.Status).Equal(types.ActionStatusPending)
		gt.Value(t, rejected.Approved).Nil()
		gt.Value(t, rejected.CompletedAt).Nil()
	})

	t.Run("approving a non-awaiting action is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		approver := admin()

		created, err := uc.CreateAction(ctx, approver, draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.Approve(ctx, approver, created.ID)
		gt.Error(t, err).Is(usecase.ErrInvalidTransition)
	})

	t.Run("approval requires the capability", func(t *testing.T) {
		uc, _ := setup(t)

		created, err := uc.CreateAction(ctx, admin(), draft("prepare audit"))
		gt.NoError(t, err).Required()
		_, err = uc.AddNote(ctx, admin(), created.ID, "audit report attached")
		gt.NoError(t, err).Required()
		_, err = uc.ReportForApproval(ctx, admin(), created.ID)
		gt.NoError(t, err).Required()

		_, err = uc.Approve(ctx, member(), created.ID)
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})
}

func TestNotes(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted note stays in storage but leaves the projection", func(t *testing.T) {
		uc, repo := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		note, err := uc.AddNote(ctx, actor, created.ID, "evidence")
		gt.NoError(t, err).Required()

		deleted, err := uc.DeleteNote(ctx, actor, note.ID)
		gt.NoError(t, err).Required()
		gt.B(t, deleted.IsDeleted).True()

		visible, err := uc.ListNotes(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, visible).Length(0)

		stored, err := repo.Note().Get(ctx, note.ID)
		gt.NoError(t, err).Required()
		gt.B(t, stored.IsDeleted).True()
	})

	t.Run("deleting a note twice is a no-op", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()
		note, err := uc.AddNote(ctx, actor, created.ID, "evidence")
		gt.NoError(t, err).Required()

		_, err = uc.DeleteNote(ctx, actor, note.ID)
		gt.NoError(t, err).Required()
		_, err = uc.DeleteNote(ctx, actor, note.ID)
		gt.NoError(t, err).Required()
	})

	t.Run("empty note content is rejected", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("prepare audit"))
		gt.NoError(t, err).Required()

		_, err = uc.AddNote(ctx, actor, created.ID, "")
		gt.Value(t, err).NotNil()
	})
}

func TestTwoPhaseDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("mark hides the action from listings", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("to be removed"))
		gt.NoError(t, err).Required()

		marked, err := uc.MarkForDeletion(ctx, actor, created.ID)
		gt.NoError(t, err).Required()
		gt.B(t, marked.PendingDelete).True()
		gt.Value(t, marked.DeletedAt).NotNil()

		listed, err := uc.ListActions(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, listed).Length(0)
	})

	t.Run("marking twice is a no-op", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("to be removed"))
		gt.NoError(t, err).Required()

		first, err := uc.MarkForDeletion(ctx, actor, created.ID)
		gt.NoError(t, err).Required()
		second, err := uc.MarkForDeletion(ctx, actor, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, second.DeletedAt.Unix()).Equal(first.DeletedAt.Unix())
	})

	t.Run("purge requires the mark", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("still alive"))
		gt.NoError(t, err).Required()

		err = uc.PurgeAction(ctx, actor, created.ID)
		gt.Error(t, err).Is(usecase.ErrNotPendingDelete)
	})

	t.Run("purge cascades through notes, stages and tasks", func(t *testing.T) {
		uc, repo := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("to be removed"))
		gt.NoError(t, err).Required()

		_, err = uc.AddNote(ctx, actor, created.ID, "note")
		gt.NoError(t, err).Required()

		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: created.ID, Title: "phase 1",
		})
		gt.NoError(t, err).Required()
		_, err = uc.AddTask(ctx, actor, stage.ID, draft("subtask"))
		gt.NoError(t, err).Required()

		_, err = uc.MarkForDeletion(ctx, actor, created.ID)
		gt.NoError(t, err).Required()
		gt.NoError(t, uc.PurgeAction(ctx, actor, created.ID)).Required()

		_, err = repo.Action().Get(ctx, created.ID)
		gt.B(t, types.IsNotFound(err)).True()

		notes, err := repo.Note().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, notes).Length(0)

		stages, err := repo.Stage().ListByAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, stages).Length(0)

		tasks, err := repo.Action().GetByParent(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})

	t.Run("purging an absent action is a no-op", func(t *testing.T) {
		uc, _ := setup(t)

		gt.NoError(t, uc.PurgeAction(ctx, admin(), types.NewActionID())).Required()
	})

	t.Run("deletion requires the capability", func(t *testing.T) {
		uc, _ := setup(t)

		created, err := uc.CreateAction(ctx, admin(), draft("protected"))
		gt.NoError(t, err).Required()

		_, err = uc.MarkForDeletion(ctx, member(), created.ID)
		gt.Error(t, err).Is(usecase.ErrPermissionDenied)
	})
}

func TestSweepOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("flips overdue actions to delayed", func(t *testing.T) {
		now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
		uc, _ := setup(t, usecase.WithNow(func() time.Time { return now }))
		actor := admin()

		overdue := draft("late report")
		overdue.StartDate = now.AddDate(0, 0, -14)
		overdue.EndDate = now.AddDate(0, 0, -7)
		created, err := uc.CreateAction(ctx, actor, overdue)
		gt.NoError(t, err).Required()

		onTime := draft("future report")
		onTime.EndDate = now.AddDate(0, 0, 7)
		_, err = uc.CreateAction(ctx, actor, onTime)
		gt.NoError(t, err).Required()

		swept, err := uc.SweepOverdue(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, swept).Equal(1)

		current, err := uc.GetAction(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, current.Status).Equal(types.ActionStatusDelayed)

		// A second sweep finds nothing new
		swept, err = uc.SweepOverdue(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, swept).Equal(0)
	})
}

func TestSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates root actions only", func(t *testing.T) {
		uc, _ := setup(t)
		actor := admin()

		created, err := uc.CreateAction(ctx, actor, draft("root one"))
		gt.NoError(t, err).Required()
		_, err = uc.CompleteWithNote(ctx, actor, created.ID, "done", nil)
		gt.NoError(t, err).Required()

		other, err := uc.CreateAction(ctx, actor, draft("root two"))
		gt.NoError(t, err).Required()

		stage, err := uc.AddStage(ctx, actor, &model.ActionStage{
			ActionID: other.ID, Title: "phase 1",
		})
		gt.NoError(t, err).Required()
		_, err = uc.AddTask(ctx, actor, stage.ID, draft("subtask"))
		gt.NoError(t, err).Required()

		summary, err := uc.Summary(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, summary.Total).Equal(2)
		gt.Value(t, summary.Completed).Equal(1)
		gt.Value(t, summary.Pending).Equal(1)
	})
}
