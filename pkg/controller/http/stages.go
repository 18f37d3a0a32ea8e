package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/errutil"
)

type stageRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	ParentStageID string `json:"parent_stage_id"`
	IsSequential  bool   `json:"is_sequential"`
	Order         int    `json:"order"`
}

func (s *Server) addStage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stageRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	stage, err := s.uc.AddStage(ctx, s.actorFrom(r), &model.ActionStage{
		ActionID:      types.ActionID(chi.URLParam(r, "actionID")),
		Title:         req.Title,
		Description:   req.Description,
		ParentStageID: types.StageID(req.ParentStageID),
		IsSequential:  req.IsSequential,
		Order:         req.Order,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, stage)
}

func (s *Server) listStages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stages, err := s.uc.ListStages(ctx, types.ActionID(chi.URLParam(r, "actionID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, stages)
}

type editStageRequest struct {
	stageRequest
	Rev int64 `json:"rev"`
}

func (s *Server) editStage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req editStageRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	stageID := types.StageID(chi.URLParam(r, "stageID"))
	existing, err := s.uc.GetStage(ctx, stageID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	updated := existing.Clone()
	updated.Title = req.Title
	updated.Description = req.Description
	updated.IsSequential = req.IsSequential
	updated.Order = req.Order
	if req.ParentStageID != "" {
		updated.ParentStageID = types.StageID(req.ParentStageID)
	}
	if req.Rev != 0 {
		updated.Rev = req.Rev
	}

	result, err := s.uc.EditStage(ctx, s.actorFrom(r), updated)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, result)
}

type moveStageRequest struct {
	ParentStageID string `json:"parent_stage_id"`
	Order         int    `json:"order"`
}

func (s *Server) moveStage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req moveStageRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	stage, err := s.uc.MoveStage(ctx, s.actorFrom(r),
		types.StageID(chi.URLParam(r, "stageID")),
		types.StageID(req.ParentStageID),
		req.Order)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, stage)
}

func (s *Server) deleteStage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	force := r.URL.Query().Get("force") == "true"
	if err := s.uc.DeleteStage(ctx, s.actorFrom(r), types.StageID(chi.URLParam(r, "stageID")), force); err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusNoContent, nil)
}

type addTaskRequest struct {
	Subject       string     `json:"subject"`
	Description   string     `json:"description"`
	ResponsibleID string     `json:"responsible_id"`
	EndDate       *time.Time `json:"end_date"`
	Order         int        `json:"order"`
}

func (s *Server) addTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body", goerr.T(types.ErrTagValidation)))
		return
	}

	task := &model.Action{
		Subject:       req.Subject,
		Description:   req.Description,
		ResponsibleID: types.EntityID(req.ResponsibleID),
		Order:         req.Order,
	}
	if req.EndDate != nil {
		task.EndDate = *req.EndDate
	}

	created, err := s.uc.AddTask(ctx, s.actorFrom(r), types.StageID(chi.URLParam(r, "stageID")), task)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, created)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := s.uc.ListTasks(ctx, types.StageID(chi.URLParam(r, "stageID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, tasks)
}
