package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/service/notify"
	"github.com/actio-dev/actio/pkg/utils/async"
	"github.com/actio-dev/actio/pkg/utils/errutil"
)

// CreateAction creates a new action in the pending status
func (u *UseCases) CreateAction(ctx context.Context, actor *model.Actor, action *model.Action) (*model.Action, error) {
	created := action.Clone()
	if created.Status == "" {
		created.Status = types.ActionStatusPending
	}
	if actor != nil {
		created.CreatedBy = actor.ID
		created.CreatedByName = actor.Name
	}
	if created.StartDate.IsZero() {
		created.StartDate = u.now()
	}

	result, err := u.engine.CreateAction(ctx, created)
	if err != nil {
		return nil, err
	}

	u.announce(ctx, actor, result, "New action assigned",
		fmt.Sprintf("%s %s", result.Status.Emoji(), result.Subject))
	return result, nil
}

// GetAction retrieves an action by ID
func (u *UseCases) GetAction(ctx context.Context, id types.ActionID) (*model.Action, error) {
	action, err := u.engine.GetAction(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, goerr.Wrap(ErrActionNotFound, "", goerr.V("id", id))
		}
		return nil, err
	}
	return action, nil
}

// ListActions lists root actions, excluding rows marked for deletion
func (u *UseCases) ListActions(ctx context.Context) ([]*model.Action, error) {
	actions, err := u.engine.ListRootActions(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Action, 0, len(actions))
	for _, action := range actions {
		if !action.PendingDelete {
			visible = append(visible, action)
		}
	}
	return visible, nil
}

// SetStatus transitions an action to the target status. The transition is
// validated locally (capability, completion evidence, sequential-stage
// ordering) before the remote write; a failed write means the transition
// did not happen.
func (u *UseCases) SetStatus(ctx context.Context, actor *model.Actor, id types.ActionID, target types.ActionStatus, completedAt *time.Time) (*model.Action, error) {
	if !target.IsValid() {
		return nil, goerr.New("invalid target status", goerr.T(types.ErrTagValidation),
			goerr.V("status", target))
	}

	action, err := u.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if action.PendingDelete {
		return nil, goerr.New("action is marked for deletion", goerr.T(types.ErrTagValidation),
			goerr.V("id", id))
	}
	if action.Status == target {
		return action, nil
	}

	if err := u.validateOrdering(ctx, action); err != nil {
		return nil, err
	}

	previous := action.Status

	switch target {
	case types.ActionStatusCompleted:
		if !actor.Can(types.CapabilityCompleteAction) && (actor == nil || actor.ID != action.ResponsibleID) {
			return nil, goerr.Wrap(ErrPermissionDenied, "completing requires the capability or being the responsible",
				goerr.V("action_id", id))
		}
		evidence, err := u.hasEvidence(ctx, id)
		if err != nil {
			return nil, err
		}
		if !evidence {
			return nil, goerr.Wrap(ErrMissingEvidence, "", goerr.V("action_id", id))
		}
		when := u.now()
		if completedAt != nil {
			when = *completedAt
		}
		action.CompletedAt = &when

	case types.ActionStatusPending:
		if previous == types.ActionStatusCompleted || previous == types.ActionStatusAwaitingApproval {
			action.CompletedAt = nil
			action.Approved = nil
			action.ApprovedAt = nil
		}

	case types.ActionStatusAwaitingApproval:
		// Approval leads to completion, so the evidence gate applies here too
		evidence, err := u.hasEvidence(ctx, id)
		if err != nil {
			return nil, err
		}
		if !evidence {
			return nil, goerr.Wrap(ErrMissingEvidence, "reporting for approval requires a note or attachment",
				goerr.V("action_id", id))
		}

	case types.ActionStatusDelayed,
		types.ActionStatusNotViewed,
		types.ActionStatusNotStarted:
		// no extra preconditions

	default:
		return nil, goerr.Wrap(ErrInvalidTransition, "", goerr.V("target", target))
	}

	action.Status = target

	updated, err := u.engine.UpdateAction(ctx, action)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Action status changed to %s", target.String())
	body := fmt.Sprintf("%s %s (%s -> %s)", target.Emoji(), updated.Subject, previous.String(), target.String())
	if target == types.ActionStatusAwaitingApproval {
		title = "Action awaiting your approval"
		body = fmt.Sprintf("%s %s is reported complete. Approve or reject it.", target.Emoji(), updated.Subject)
	}
	u.announce(ctx, actor, updated, title, body)

	return updated, nil
}

// CompleteWithNote appends a note and completes the action as one logical
// operation, so a completion without prior evidence can still succeed.
func (u *UseCases) CompleteWithNote(ctx context.Context, actor *model.Actor, id types.ActionID, noteContent string, completedAt *time.Time) (*model.Action, error) {
	if _, err := u.AddNote(ctx, actor, id, noteContent); err != nil {
		return nil, err
	}
	return u.SetStatus(ctx, actor, id, types.ActionStatusCompleted, completedAt)
}

// ReportForApproval moves a task into the approval queue and notifies the
// requester with the approve/reject affordance.
func (u *UseCases) ReportForApproval(ctx context.Context, actor *model.Actor, id types.ActionID) (*model.Action, error) {
	return u.SetStatus(ctx, actor, id, types.ActionStatusAwaitingApproval, nil)
}

// Approve signs off an awaiting action and completes it
func (u *UseCases) Approve(ctx context.Context, actor *model.Actor, id types.ActionID) (*model.Action, error) {
	if !actor.Can(types.CapabilityApproveAction) {
		return nil, goerr.Wrap(ErrPermissionDenied, "approving requires the capability",
			goerr.V("action_id", id))
	}

	action, err := u.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if action.Status != types.ActionStatusAwaitingApproval {
		return nil, goerr.Wrap(ErrInvalidTransition, "only awaiting actions can be approved",
			goerr.V("status", action.Status))
	}

	// Evidence may have been soft-deleted since the report
	evidence, err := u.hasEvidence(ctx, id)
	if err != nil {
		return nil, err
	}
	if !evidence {
		return nil, goerr.Wrap(ErrMissingEvidence, "approving requires a note or attachment",
			goerr.V("action_id", id))
	}

	now := u.now()
	approved := true
	action.Approved = &approved
	action.ApprovedAt = &now
	if action.CompletedAt == nil {
		action.CompletedAt = &now
	}
	action.Status = types.ActionStatusCompleted

	updated, err := u.engine.UpdateAction(ctx, action)
	if err != nil {
		return nil, err
	}

	u.announce(ctx, actor, updated, "Action approved",
		fmt.Sprintf("%s %s was approved", updated.Status.Emoji(), updated.Subject))
	return updated, nil
}

// Reject returns an awaiting action to the work queue
func (u *UseCases) Reject(ctx context.Context, actor *model.Actor, id types.ActionID) (*model.Action, error) {
	if !actor.Can(types.CapabilityApproveAction) {
		return nil, goerr.Wrap(ErrPermissionDenied, "rejecting requires the capability",
			goerr.V("action_id", id))
	}

	action, err := u.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if action.Status != types.ActionStatusAwaitingApproval {
		return nil, goerr.Wrap(ErrInvalidTransition, "only awaiting actions can be rejected",
			goerr.V("status", action.Status))
	}

	action.Status = types.ActionStatusPending
	action.Approved = nil
	action.ApprovedAt = nil
	action.CompletedAt = nil

	updated, err := u.engine.UpdateAction(ctx, action)
	if err != nil {
		return nil, err
	}

	u.announce(ctx, actor, updated, "Action rejected",
		fmt.Sprintf(":back: %s was returned to the work queue", updated.Subject))
	return updated, nil
}

// AddNote appends a note to an action
func (u *UseCases) AddNote(ctx context.Context, actor *model.Actor, actionID types.ActionID, content string) (*model.ActionNote, error) {
	if content == "" {
		return nil, goerr.New("note content is required", goerr.T(types.ErrTagValidation))
	}
	if _, err := u.GetAction(ctx, actionID); err != nil {
		return nil, err
	}

	note := &model.ActionNote{
		ActionID: actionID,
		Content:  content,
	}
	if actor != nil {
		note.CreatedBy = actor.ID
	}

	return u.engine.CreateNote(ctx, note)
}

// DeleteNote soft-deletes a note. The row stays in storage and is excluded
// from visible projections.
func (u *UseCases) DeleteNote(ctx context.Context, actor *model.Actor, noteID types.NoteID) (*model.ActionNote, error) {
	note, err := u.engine.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.IsDeleted {
		return note, nil
	}

	note.IsDeleted = true
	return u.engine.UpdateNote(ctx, note)
}

// ListNotes lists the visible notes of an action
func (u *UseCases) ListNotes(ctx context.Context, actionID types.ActionID) ([]*model.ActionNote, error) {
	notes, err := u.engine.ListNotesByAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	return model.VisibleNotes(notes), nil
}

// AddAttachment stores the bytes and registers the attachment row
func (u *UseCases) AddAttachment(ctx context.Context, actor *model.Actor, actionID types.ActionID, fileName string, data []byte) (*model.Attachment, error) {
	if fileName == "" {
		return nil, goerr.New("attachment file name is required", goerr.T(types.ErrTagValidation))
	}
	if _, err := u.GetAction(ctx, actionID); err != nil {
		return nil, err
	}

	existing, err := u.engine.ListAttachmentsByAction(ctx, actionID)
	if err != nil {
		return nil, err
	}

	attachment := &model.Attachment{
		ID:       types.NewAttachmentID(),
		ActionID: actionID,
		FileName: fileName,
		Order:    len(existing),
	}
	attachment.Path = fmt.Sprintf("actions/%s/%s_%s", actionID, attachment.ID, fileName)
	if actor != nil {
		attachment.UploadedBy = actor.ID
	}

	if u.blob != nil {
		if err := u.blob.Upload(ctx, attachment.Path, data); err != nil {
			return nil, goerr.Wrap(err, "failed to store attachment bytes",
				goerr.V("path", attachment.Path))
		}
	}

	return u.engine.CreateAttachment(ctx, attachment)
}

// ListAttachments lists an action's attachments in upload order
func (u *UseCases) ListAttachments(ctx context.Context, actionID types.ActionID) ([]*model.Attachment, error) {
	attachments, err := u.engine.ListAttachmentsByAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(attachments, func(i, j int) bool {
		return attachments[i].Order < attachments[j].Order
	})
	return attachments, nil
}

// AttachmentURL issues a signed download URL for an attachment
func (u *UseCases) AttachmentURL(ctx context.Context, attachmentID types.AttachmentID, ttl time.Duration) (string, error) {
	if u.blob == nil {
		return "", goerr.New("blob storage is not configured")
	}

	attachment, err := u.engine.GetAttachment(ctx, attachmentID)
	if err != nil {
		return "", err
	}

	return u.blob.CreateSignedURL(ctx, attachment.Path, ttl)
}

// MarkForDeletion is the first phase of the action delete: the row is
// flagged and disappears from visible projections, but nothing is removed
// yet. Calling it again is a no-op.
func (u *UseCases) MarkForDeletion(ctx context.Context, actor *model.Actor, id types.ActionID) (*model.Action, error) {
	if !actor.Can(types.CapabilityDeleteAction) {
		return nil, goerr.Wrap(ErrPermissionDenied, "deleting requires the capability",
			goerr.V("action_id", id))
	}

	action, err := u.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if action.PendingDelete {
		return action, nil
	}

	now := u.now()
	action.PendingDelete = true
	action.DeletedAt = &now

	return u.engine.UpdateAction(ctx, action)
}

// PurgeAction is the second phase of the delete: it garbage-collects the
// marked action's tasks, stages, notes, attachments and stored bytes, then
// removes the row itself. A failed blob removal is logged and does not
// abort the cascade. Purging an already-removed action is a no-op.
func (u *UseCases) PurgeAction(ctx context.Context, actor *model.Actor, id types.ActionID) error {
	if !actor.Can(types.CapabilityDeleteAction) {
		return goerr.Wrap(ErrPermissionDenied, "deleting requires the capability",
			goerr.V("action_id", id))
	}

	action, err := u.engine.GetAction(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !action.PendingDelete {
		return goerr.Wrap(ErrNotPendingDelete, "", goerr.V("action_id", id))
	}

	tasks, err := u.engine.ListTasksByParent(ctx, id)
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := u.engine.DeleteAction(ctx, task.ID); err != nil {
			return err
		}
	}

	if err := u.deleteStagesDeepestFirst(ctx, id); err != nil {
		return err
	}

	if err := u.engine.PurgeNotes(ctx, id); err != nil {
		return err
	}

	attachments, err := u.engine.ListAttachmentsByAction(ctx, id)
	if err != nil {
		return err
	}
	if len(attachments) > 0 {
		if u.blob != nil {
			paths := make([]string, 0, len(attachments))
			for _, a := range attachments {
				paths = append(paths, a.Path)
			}
			if err := u.blob.Remove(ctx, paths); err != nil {
				errutil.Handle(ctx, err, "blob cleanup failed during action purge, continuing")
			}
		}
		for _, a := range attachments {
			if err := u.engine.DeleteAttachment(ctx, a.ID); err != nil {
				return err
			}
		}
	}

	return u.engine.DeleteAction(ctx, id)
}

// SweepOverdue flips every action past its end date to delayed. Returns
// the number of actions swept.
func (u *UseCases) SweepOverdue(ctx context.Context) (int, error) {
	actions, err := u.engine.ListActions(ctx)
	if err != nil {
		return 0, err
	}

	now := u.now()
	swept := 0
	for _, action := range actions {
		if !action.Overdue(now) || action.Status == types.ActionStatusDelayed {
			continue
		}

		action.Status = types.ActionStatusDelayed
		updated, err := u.engine.UpdateAction(ctx, action)
		if err != nil {
			errutil.Handle(ctx, err, "failed to mark action as delayed, continuing sweep")
			continue
		}

		swept++
		u.announce(ctx, nil, updated, "Action is overdue",
			fmt.Sprintf("%s %s passed its end date", updated.Status.Emoji(), updated.Subject))
	}

	return swept, nil
}

// Summary computes the aggregate view over all root actions
func (u *UseCases) Summary(ctx context.Context) (model.Summary, error) {
	actions, err := u.engine.ListRootActions(ctx)
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summarize(actions), nil
}

// hasEvidence reports whether the action has at least one visible note or
// one attachment at this moment.
func (u *UseCases) hasEvidence(ctx context.Context, id types.ActionID) (bool, error) {
	notes, err := u.engine.ListNotesByAction(ctx, id)
	if err != nil {
		return false, err
	}
	if len(model.VisibleNotes(notes)) > 0 {
		return true, nil
	}

	attachments, err := u.engine.ListAttachmentsByAction(ctx, id)
	if err != nil {
		return false, err
	}
	return len(attachments) > 0, nil
}

// announce fans the event out asynchronously. The write already committed;
// notification failures are per-channel outcomes, never operation errors.
func (u *UseCases) announce(ctx context.Context, actor *model.Actor, action *model.Action, title, body string) {
	if u.dispatcher == nil {
		return
	}

	seen := make(map[types.EntityID]struct{}, 2)
	recipients := make([]types.EntityID, 0, 2)
	for _, id := range []types.EntityID{action.ResponsibleID, action.RequesterID} {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return
	}

	trigger := notify.Trigger{
		Title:         title,
		Body:          body,
		ReferenceID:   action.ID.String(),
		ReferenceKind: model.ReferenceKindAction,
	}
	if actor != nil {
		trigger.SenderID = actor.ID
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		u.dispatcher.Dispatch(ctx, trigger, recipients, []types.Channel{types.ChannelInternal, types.ChannelChat})
		return nil
	})
}
