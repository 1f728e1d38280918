package service

import (
	"context"
	"fmt"

	"github.com/dkoval/todo-api/internal/domain"
	"github.com/dkoval/todo-api/internal/store"
)

// TodoRepository is the repository contract the todo service runs on.
type TodoRepository = store.Repository[domain.Todo]

// TodoService binds the generic CRUD service to the todo entity and adds
// the todo business rules on top of it.
type TodoService struct {
	*CrudService[domain.Todo, TodoRepository]
}

// NewTodoService creates a todo service owning the given repository.
func NewTodoService(repo TodoRepository) *TodoService {
	return &TodoService{
		CrudService: NewCrudService[domain.Todo, TodoRepository](repo),
	}
}

// Create checks the domain rules on the payload before handing it to the
// generic path, so invalid todos are rejected without touching storage.
func (s *TodoService) Create(ctx context.Context, fields store.Fields, ownerID int64) (*domain.Todo, error) {
	title, _ := fields["title"].(string)
	todo := domain.Todo{Title: title}
	if err := todo.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	return s.CrudService.Create(ctx, fields, ownerID)
}
