package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/utils/errutil"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := s.actorFrom(r)
	if actor == nil {
		errutil.HandleHTTP(ctx, w, goerr.New("actor is required", goerr.T(types.ErrTagValidation)))
		return
	}

	notifications, err := s.uc.ListNotifications(ctx, actor.ID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, notifications)
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := s.actorFrom(r)
	if actor == nil {
		errutil.HandleHTTP(ctx, w, goerr.New("actor is required", goerr.T(types.ErrTagValidation)))
		return
	}

	// Serve the warm count when the refresher runs; fall back to counting
	// directly otherwise.
	if s.unread != nil {
		respondJSON(ctx, w, http.StatusOK, map[string]int{"unread": s.unread.Get(actor.ID)})
		return
	}

	count, err := s.uc.UnreadCount(ctx, actor.ID)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]int{"unread": count})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notification, err := s.uc.MarkRead(ctx, types.NotificationID(chi.URLParam(r, "notificationID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, notification)
}

func (s *Server) markUnread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notification, err := s.uc.MarkUnread(ctx, types.NotificationID(chi.URLParam(r, "notificationID")))
	if err != nil {
		errutil.HandleHTTP(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, notification)
}
