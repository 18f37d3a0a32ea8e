package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/actio-dev/actio/pkg/domain/model"
	"github.com/actio-dev/actio/pkg/domain/types"
	"github.com/actio-dev/actio/pkg/service/worker"
	"github.com/actio-dev/actio/pkg/usecase"
	"github.com/actio-dev/actio/pkg/utils/errutil"
	"github.com/actio-dev/actio/pkg/utils/safe"
)

// Server exposes the action operations over HTTP. Authentication lives in
// front of this service; the caller's identity and resolved capability set
// arrive as headers.
type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	unread *worker.UnreadRefresher
	roles  map[string]types.CapabilitySet
}

type Option func(*Server)

// WithUnreadRefresher serves the unread badge from the refresher's warm
// counts instead of recomputing per request.
func WithUnreadRefresher(w *worker.UnreadRefresher) Option {
	return func(s *Server) {
		s.unread = w
	}
}

// WithRoles lets callers send a role name instead of an explicit capability
// list. The mapping comes from the application config file.
func WithRoles(roles map[string]types.CapabilitySet) Option {
	return func(s *Server) {
		s.roles = roles
	}
}

func New(uc *usecase.UseCases, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(accessLogger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte("OK"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/actions", func(r chi.Router) {
			r.Get("/", s.listActions)
			r.Post("/", s.createAction)

			r.Route("/{actionID}", func(r chi.Router) {
				r.Get("/", s.getAction)
				r.Delete("/", s.markForDeletion)
				r.Post("/purge", s.purgeAction)
				r.Post("/status", s.setStatus)
				r.Post("/complete", s.completeWithNote)
				r.Post("/report", s.reportForApproval)
				r.Post("/approve", s.approveAction)
				r.Post("/reject", s.rejectAction)
				r.Get("/notes", s.listNotes)
				r.Post("/notes", s.addNote)
				r.Get("/attachments", s.listAttachments)
				r.Post("/attachments", s.addAttachment)
				r.Get("/stages", s.listStages)
				r.Post("/stages", s.addStage)
			})
		})

		r.Delete("/notes/{noteID}", s.deleteNote)
		r.Get("/attachments/{attachmentID}/url", s.attachmentURL)

		r.Route("/stages/{stageID}", func(r chi.Router) {
			r.Put("/", s.editStage)
			r.Delete("/", s.deleteStage)
			r.Post("/move", s.moveStage)
			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.addTask)
		})

		r.Get("/summary", s.summary)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Get("/unread", s.unreadCount)
			r.Post("/{notificationID}/read", s.markRead)
			r.Post("/{notificationID}/unread", s.markUnread)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// actorFrom builds the acting caller from request headers. The capability
// set arrives either resolved as a comma-separated list or as a role name
// expanded through the configured role map.
func (s *Server) actorFrom(r *http.Request) *model.Actor {
	id := r.Header.Get("X-Actor-ID")
	if id == "" {
		return nil
	}

	var caps []types.Capability
	if raw := r.Header.Get("X-Actor-Capabilities"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				caps = append(caps, types.Capability(c))
			}
		}
	}
	if role := r.Header.Get("X-Actor-Role"); role != "" {
		caps = append(caps, s.roles[role].List()...)
	}

	return &model.Actor{
		ID:           types.EntityID(id),
		Name:         r.Header.Get("X-Actor-Name"),
		Capabilities: types.NewCapabilitySet(caps...),
	}
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode response")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(dst)
}
