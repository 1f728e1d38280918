package domain

import (
	"errors"
	"time"
)

// Common validation errors for Todo
var (
	ErrEmptyTodoTitle   = errors.New("todo title cannot be empty")
	ErrTodoTitleTooLong = errors.New("todo title cannot exceed 255 characters")
)

// MaxTitleLength is the storage limit of the title column.
const MaxTitleLength = 255

// Todo represents a single task tracked by the service. The id and both
// timestamps are assigned by the persistence layer; IsDeleted is the
// soft-delete marker and UserID the logical owner.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	IsDeleted   bool      `json:"-"`
	UserID      int64     `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EntityID returns the primary key.
func (t *Todo) EntityID() int64 { return t.ID }

// SoftDeleted reports whether the row has been soft-deleted. Implementing
// this marks the type as store.SoftDeletable: reads exclude deleted rows
// and Delete flips the flag instead of removing the row.
func (t *Todo) SoftDeleted() bool { return t.IsDeleted }

// OwnerID returns the owning-user id; zero means unowned.
func (t *Todo) OwnerID() int64 { return t.UserID }

// SetOwnerID assigns the owning-user id. Implementing OwnerID/SetOwnerID
// marks the type as store.Owned and enables owner filtering.
func (t *Todo) SetOwnerID(id int64) { t.UserID = id }

// Validate checks if the Todo has valid data.
// Returns an error if any field fails validation.
func (t *Todo) Validate() error {
	if t.Title == "" {
		return ErrEmptyTodoTitle
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTodoTitleTooLong
	}
	return nil
}
