package notes

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"example.com/notes-api/internal/auth"
	"example.com/notes-api/internal/metrics"
	"example.com/notes-api/internal/model"
	"example.com/notes-api/internal/query"
	"example.com/notes-api/internal/service"
)

// Service is the note and tag lifecycle the handlers expose.
// It allows unit-testing handlers without a real database.
type Service interface {
	ListNotes(ctx context.Context, u model.User) ([]model.Note, error)
	ListTrash(ctx context.Context, u model.User) ([]model.Note, error)
	GetNote(ctx context.Context, u model.User, id string, includeDeleted bool) (model.Note, error)
	CreateNote(ctx context.Context, u model.User, in service.CreateNoteInput) (model.Note, error)
	UpdateNote(ctx context.Context, u model.User, id string, p model.NotePatch) (model.Note, error)
	TrashNote(ctx context.Context, u model.User, id string) (model.Note, error)
	RestoreNote(ctx context.Context, u model.User, id string) (model.Note, error)
	TogglePin(ctx context.Context, u model.User, id string) (model.Note, error)
	ToggleTag(ctx context.Context, u model.User, noteID, tagID string) (model.Note, error)
	PurgeNote(ctx context.Context, u model.User, id string) error
	EmptyTrash(ctx context.Context, u model.User) (int64, error)

	ListTags(ctx context.Context, u model.User) ([]model.Tag, error)
	CreateTag(ctx context.Context, u model.User, name, color string) (model.Tag, bool, error)
	DeleteTag(ctx context.Context, u model.User, id string) (int64, error)
}

// Accounts is the signup and session collaborator.
type Accounts interface {
	auth.Resolver
	Register(ctx context.Context, in auth.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error)
	Logout(ctx context.Context, token string) error
}

type Handlers struct {
	svc      Service
	accounts Accounts
	log      *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Handlers)

func WithLogger(log *slog.Logger) Option { return func(h *Handlers) { h.log = log } }

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option { return func(h *Handlers) { h.metrics = m } }

func NewHandlers(svc Service, accounts Accounts, opts ...Option) *Handlers {
	h := &Handlers{svc: svc, accounts: accounts, log: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Handlers) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, h.logRequests)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(auth.Middleware(h.accounts, h.log))

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.signup)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.With(requireUser).Get("/me", h.me)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.listNotes)
			r.Post("/", h.createNote)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getNote)
				r.Patch("/", h.updateNote)
				r.Delete("/", h.trashNote)
				r.Post("/pin", h.togglePin)
				r.Post("/restore", h.restoreNote)
				r.Post("/tag", h.toggleTag)
				r.Get("/stats", h.noteStats)
			})
		})

		r.Get("/trash", h.listTrash)
		r.Delete("/trash", h.purgeTrash)

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.listTags)
			r.Post("/", h.createTag)
			r.Delete("/{id}", h.deleteTag)
		})

		r.Get("/sidebar", h.sidebar)
	})

	return r
}

// requireUser rejects requests the auth middleware found no user for.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.UserFrom(r.Context()).Authenticated() {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		h.log.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListNotes(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) createNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.CreateNote(r.Context(), auth.UserFrom(r.Context()), service.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
		TagID:   req.TagID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handlers) getNote(w http.ResponseWriter, r *http.Request) {
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("include_deleted"))
	n, err := h.svc.GetNote(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), includeDeleted)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) updateNote(w http.ResponseWriter, r *http.Request) {
	var p model.NotePatch
	if !decode(w, r, &p) {
		return
	}
	n, err := h.svc.UpdateNote(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) trashNote(w http.ResponseWriter, r *http.Request) {
	h.noteAction(w, r, h.svc.TrashNote)
}

func (h *Handlers) restoreNote(w http.ResponseWriter, r *http.Request) {
	h.noteAction(w, r, h.svc.RestoreNote)
}

func (h *Handlers) togglePin(w http.ResponseWriter, r *http.Request) {
	h.noteAction(w, r, h.svc.TogglePin)
}

func (h *Handlers) noteAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, model.User, string) (model.Note, error)) {
	n, err := fn(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) toggleTag(w http.ResponseWriter, r *http.Request) {
	var req ToggleTagRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.svc.ToggleTag(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), req.TagID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *Handlers) noteStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetNote(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, query.CountStats(n.Content))
}

func (h *Handlers) listTrash(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTrash(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// purgeTrash deletes the note named by ?id= or, without it, the whole trash.
func (h *Handlers) purgeTrash(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFrom(r.Context())
	if id := r.URL.Query().Get("id"); id != "" {
		if err := h.svc.PurgeNote(r.Context(), u, id); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	n, err := h.svc.EmptyTrash(r.Context(), u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, EmptyTrashResponse{Purged: n})
}

func (h *Handlers) listTags(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTags(r.Context(), auth.UserFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) createTag(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest
	if !decode(w, r, &req) {
		return
	}
	t, created, err := h.svc.CreateTag(r.Context(), auth.UserFrom(r.Context()), req.Name, req.Color)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, t)
}

func (h *Handlers) deleteTag(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteTag(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteTagResponse{ClearedNotes: n})
}

// sidebar runs the display pipeline over the user's notes and tags.
func (h *Handlers) sidebar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := query.ParseView(q.Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	filter, err := query.ParseFilter(q.Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, u := r.Context(), auth.UserFrom(r.Context())
	list := h.svc.ListNotes
	if view == query.ViewTrash {
		list = h.svc.ListTrash
	}
	items, err := list(ctx, u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tags, err := h.svc.ListTags(ctx, u)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	search := q.Get("q")
	res := query.Display(query.Input{
		Notes:  items,
		Tags:   tags,
		View:   view,
		Filter: filter,
		Search: search,
	})
	previews := make(map[string]string, len(res.Notes))
	for _, n := range res.Notes {
		previews[n.ID] = query.Preview(n.Content)
	}
	writeJSON(w, http.StatusOK, SidebarResponse{
		View:     view,
		Filter:   filter,
		Search:   search,
		Result:   res,
		Previews: previews,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
