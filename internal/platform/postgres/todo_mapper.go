package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkoval/todo-api/internal/domain"
	"github.com/dkoval/todo-api/internal/store"
)

// todoColumns is the scan order shared by every todos query.
var todoColumns = []string{
	"id",
	"title",
	"description",
	"is_completed",
	"is_deleted",
	"user_id",
	"created_at",
	"updated_at",
}

// TodoMapper maps domain.Todo onto the todos table.
type TodoMapper struct{}

// Ensure TodoMapper implements the store.Mapper interface
var _ store.Mapper[domain.Todo] = TodoMapper{}

// Compile-time capability declarations for the todo entity: soft-deletable
// and owned, so repositories filter is_deleted and user_id on reads.
var (
	_ store.SoftDeletable = (*domain.Todo)(nil)
	_ store.Owned         = (*domain.Todo)(nil)
)

// Table implements store.Mapper.Table.
func (TodoMapper) Table() string { return "todos" }

// Columns implements store.Mapper.Columns.
func (TodoMapper) Columns() []string { return todoColumns }

// Scan implements store.Mapper.Scan, reading one row in Columns order.
func (TodoMapper) Scan(row store.Row) (*domain.Todo, error) {
	var (
		todo        domain.Todo
		description sql.NullString
		userID      sql.NullInt64
	)
	err := row.Scan(
		&todo.ID,
		&todo.Title,
		&description,
		&todo.IsCompleted,
		&todo.IsDeleted,
		&userID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		todo.Description = &description.String
	}
	todo.UserID = userID.Int64

	return &todo, nil
}

// New implements store.Mapper.New. It builds a fresh todo from a create
// payload: absent fields keep their zero-value defaults and both
// timestamps are assigned here, which makes the repository the sole writer
// of created_at/updated_at.
func (TodoMapper) New(fields store.Fields) (*domain.Todo, error) {
	now := time.Now().UTC()
	todo := &domain.Todo{
		CreatedAt: now,
		UpdatedAt: now,
	}

	for name, value := range fields {
		switch name {
		case "title":
			s, ok := value.(string)
			if !ok {
				return nil, badFieldValue(name, value)
			}
			todo.Title = s
		case "description":
			switch v := value.(type) {
			case nil:
				todo.Description = nil
			case string:
				todo.Description = &v
			case *string:
				todo.Description = v
			default:
				return nil, badFieldValue(name, value)
			}
		case "is_completed":
			b, ok := value.(bool)
			if !ok {
				return nil, badFieldValue(name, value)
			}
			todo.IsCompleted = b
		case store.OwnerField:
			id, ok := asInt64(value)
			if !ok {
				return nil, badFieldValue(name, value)
			}
			todo.UserID = id
		default:
			return nil, fmt.Errorf("%w: unknown field %q", store.ErrInvalidEntity, name)
		}
	}

	return todo, nil
}

// InsertColumns implements store.Mapper.InsertColumns: every column except
// the server-assigned id.
func (TodoMapper) InsertColumns() []string { return todoColumns[1:] }

// InsertValues implements store.Mapper.InsertValues, aligned with InsertColumns.
func (TodoMapper) InsertValues(t *domain.Todo) []any {
	return []any{
		t.Title,
		t.Description,
		t.IsCompleted,
		t.IsDeleted,
		t.UserID,
		t.CreatedAt,
		t.UpdatedAt,
	}
}

// NotFound implements store.Mapper.NotFound.
func (TodoMapper) NotFound() error { return store.ErrTodoNotFound }

// Column implements store.Mapper.Column. The id and timestamps are
// repository-owned, and is_deleted only changes through Delete, so none of
// them are writable through payloads.
func (TodoMapper) Column(field string) (string, bool) {
	switch field {
	case "title", "description", "is_completed", store.OwnerField:
		return field, true
	default:
		return "", false
	}
}

// NewTodoRepository creates the todos repository over the given connection.
func NewTodoRepository(db store.DBTX, log *slog.Logger, echo bool) *CrudRepository[domain.Todo] {
	return NewCrudRepository[domain.Todo](db, TodoMapper{}, log, echo)
}

func badFieldValue(name string, value any) error {
	return fmt.Errorf("%w: field %q has unsupported value type %T", store.ErrInvalidEntity, name, value)
}

// asInt64 accepts the integer shapes payloads realistically carry.
func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
