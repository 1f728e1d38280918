package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dkoval/todo-api/internal/api/shared"
	"github.com/dkoval/todo-api/internal/service"
	"github.com/dkoval/todo-api/internal/store"
)

// ownerHeader names the acting owner of the request. The value is accepted
// as-is and never validated against any caller identity.
const ownerHeader = "X-User-ID"

// TodoHandler handles todo-related HTTP requests. It acquires a fresh,
// session-bound service from the provider for every request and releases
// it on exit.
type TodoHandler struct {
	todos  service.Provider[*service.TodoService]
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler. If log is nil, the default
// logger is used.
func NewTodoHandler(todos service.Provider[*service.TodoService], log *slog.Logger) *TodoHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TodoHandler{
		todos:  todos,
		logger: log.With(slog.String("component", "todo_handler")),
	}
}

// RegisterRoutes mounts the todo endpoints on the given router.
func (h *TodoHandler) RegisterRoutes(r chi.Router) {
	r.Route("/todos", func(r chi.Router) {
		r.Post("/", h.CreateTodo)
		r.Get("/", h.ListTodos)
		r.Get("/{id}", h.GetTodo)
		r.Patch("/{id}", h.UpdateTodo)
		r.Post("/{id}/complete", h.CompleteTodo)
		r.Delete("/{id}", h.DeleteTodo)
	})
}

// CreateTodo handles POST /todos requests.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	svc, release, err := h.todos.Acquire(r.Context())
	if err != nil {
		h.respondUnavailable(w, r, err)
		return
	}
	defer release()

	fields := store.Fields{"title": req.Title}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	todo, err := svc.Create(r.Context(), fields, ownerID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to create todo", "error", err)
			shared.RespondWithError(w, r, status, "Unable to create todo")
			return
		}
		shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, todoToResponse(todo))
}

// ListTodos handles GET /todos requests.
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerFromRequest(w, r)
	if !ok {
		return
	}

	svc, release, err := h.todos.Acquire(r.Context())
	if err != nil {
		h.respondUnavailable(w, r, err)
		return
	}
	defer release()

	todos, err := svc.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to list todos", "error", err)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	items := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		items = append(items, todoToResponse(todo))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TodoListResponse{Items: items})
}

// GetTodo handles GET /todos/{id} requests.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ownerID, ok := h.idAndOwner(w, r)
	if !ok {
		return
	}

	svc, release, err := h.todos.Acquire(r.Context())
	if err != nil {
		h.respondUnavailable(w, r, err)
		return
	}
	defer release()

	todo, err := svc.Get(r.Context(), id, ownerID)
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), "ToDo not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, todoToResponse(todo))
}

// UpdateTodo handles PATCH /todos/{id} requests. The body is decoded
// strictly: fields outside the update schema are rejected.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ownerID, ok := h.idAndOwner(w, r)
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := shared.DecodeJSONStrict(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	fields := store.Fields{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsCompleted != nil {
		fields["is_completed"] = *req.IsCompleted
	}

	h.applyUpdate(w, r, id, fields, ownerID)
}

// CompleteTodo handles POST /todos/{id}/complete requests by routing a
// single-field update through the generic path.
func (h *TodoHandler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ownerID, ok := h.idAndOwner(w, r)
	if !ok {
		return
	}

	h.applyUpdate(w, r, id, store.Fields{"is_completed": true}, ownerID)
}

// DeleteTodo handles DELETE /todos/{id} requests.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ownerID, ok := h.idAndOwner(w, r)
	if !ok {
		return
	}

	svc, release, err := h.todos.Acquire(r.Context())
	if err != nil {
		h.respondUnavailable(w, r, err)
		return
	}
	defer release()

	deleted, err := svc.Delete(r.Context(), id, ownerID)
	if err != nil {
		h.logger.Error("failed to delete todo", "error", err, "id", id)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}
	if !deleted {
		shared.RespondWithError(w, r, http.StatusNotFound, "ToDo not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "ToDo deleted"})
}

// applyUpdate runs the shared update flow for UpdateTodo and CompleteTodo.
func (h *TodoHandler) applyUpdate(w http.ResponseWriter, r *http.Request, id int64, fields store.Fields, ownerID int64) {
	svc, release, err := h.todos.Acquire(r.Context())
	if err != nil {
		h.respondUnavailable(w, r, err)
		return
	}
	defer release()

	todo, err := svc.Update(r.Context(), id, fields, ownerID)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusNotFound {
			shared.RespondWithError(w, r, status, "ToDo not found")
			return
		}
		h.logger.Error("failed to update todo", "error", err, "id", id)
		shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, todoToResponse(todo))
}

// idAndOwner extracts the path id and acting owner, writing the error
// response itself when either is malformed.
func (h *TodoHandler) idAndOwner(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid todo ID")
		return 0, 0, false
	}
	ownerID, ok := h.ownerFromRequest(w, r)
	if !ok {
		return 0, 0, false
	}
	return id, ownerID, true
}

// ownerFromRequest reads the optional owner header; zero means no owner.
func (h *TodoHandler) ownerFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(ownerHeader)
	if raw == "" {
		return 0, true
	}
	ownerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ownerID < 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+ownerHeader+" header")
		return 0, false
	}
	return ownerID, true
}

// respondUnavailable reports a session-acquisition fault: the storage
// layer is unreachable, not a client problem.
func (h *TodoHandler) respondUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("failed to acquire todo service", "error", err)
	shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Storage temporarily unavailable")
}
