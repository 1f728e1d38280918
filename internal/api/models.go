package api

import (
	"time"

	"github.com/dkoval/todo-api/internal/domain"
)

// CreateTodoRequest represents the request body for creating a new todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"       validate:"required,min=1,max=255"`
	Description *string `json:"description"`
}

// UpdateTodoRequest represents the request body for partially updating a
// todo. Absent fields keep their current values; unknown fields are
// rejected by strict decoding.
type UpdateTodoRequest struct {
	Title       *string `json:"title"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

// TodoResponse represents the response data for a todo.
type TodoResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoListResponse wraps the todo collection returned by list requests.
type TodoListResponse struct {
	Items []TodoResponse `json:"items"`
}

// MessageResponse is a simple confirmation body for operations without an
// entity result.
type MessageResponse struct {
	Message string `json:"message"`
}

// todoToResponse converts a domain.Todo to a TodoResponse.
func todoToResponse(todo *domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		IsCompleted: todo.IsCompleted,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}
