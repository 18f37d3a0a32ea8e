package http

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/errutil"
)

type createActionRequest struct {
	Subject       string     `json:"subject"`
	Description   string     `json:"description"`
	ResponsibleID string     `json:"responsible_id"`
	RequesterID   string     `json:"requester_id"`
	ClientID      string     `json:"client_id"`
	CompanyID     string     `json:"company_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createActionRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	action := &model.Action{
		Subject:       req.Subject,
		Description:   req.Description,
		ResponsibleID: types.EntityID(req.ResponsibleID),
		RequesterID:   types.EntityID(req.RequesterID),
		ClientID:      types.EntityID(req.ClientID),
		CompanyID:     types.EntityID(req.CompanyID),
	}
	if req.StartDate != nil {
		action.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		action.EndDate = *req.EndDate
	}

	created, err := s.uc.CreateAction(ctx, s.actorFrom(r), action)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created)
}

func (s *Server) listActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actions, err := s.uc.ListActions(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, actions)
}

func (s *Server) getAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	action, err := s.uc.GetAction(ctx, types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

type setStatusRequest struct {
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	status, err := types.ParseActionStatus(req.Status)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid status", goerr.T(types.ErrTagValidation)))
		return
	}

	updated, err := s.uc.SetStatus(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")), status, req.CompletedAt)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

type completeRequest struct {
	Note        string     `json:"note"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Server) completeWithNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	updated, err := s.uc.CompleteWithNote(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")), req.Note, req.CompletedAt)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

func (s *Server) reportForApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	updated, err := s.uc.ReportForApproval(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

func (s *Server) approveAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	updated, err := s.uc.Approve(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

func (s *Server) rejectAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	updated, err := s.uc.Reject(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, updated)
}

type addNoteRequest struct {
	Content string `json:"content"`
}

func (s *Server) addNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	note, err := s.uc.AddNote(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")), req.Content)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, note)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := s.uc.ListNotes(ctx, types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, notes)
}

func (s *Server) deleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := s.uc.DeleteNote(ctx, s.actorFrom(r), types.NoteID(chi.URLParam(r, "noteID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, note)
}

type addAttachmentRequest struct {
	FileName string `json:"file_name"`
	Data     string `json:"data"` // base64
}

func (s *Server) addAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addAttachmentRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid attachment data", goerr.T(types.ErrTagValidation)))
		return
	}

	attachment, err := s.uc.AddAttachment(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")), req.FileName, data)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, attachment)
}

func (s *Server) listAttachments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attachments, err := s.uc.ListAttachments(ctx, types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, attachments)
}

func (s *Server) attachmentURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ttl := time.Hour
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid ttl", goerr.T(types.ErrTagValidation)))
			return
		}
		ttl = parsed
	}

	url, err := s.uc.AttachmentURL(ctx, types.AttachmentID(chi.URLParam(r, "attachmentID")), ttl)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": url})
}

func (s *Server) markForDeletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	action, err := s.uc.MarkForDeletion(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, action)
}

func (s *Server) purgeAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.uc.PurgeAction(ctx, s.actorFrom(r), types.ActionID(chi.URLParam(r, "actionID"))); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusNoContent, nil)
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := s.uc.Summary(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, summary)
}
