package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkoval/todo-api/internal/domain"
)

func TestTodoValidate(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr error
	}{
		{"valid title", "buy milk", nil},
		{"empty title", "", domain.ErrEmptyTodoTitle},
		{"title at limit", strings.Repeat("a", domain.MaxTitleLength), nil},
		{"title over limit", strings.Repeat("a", domain.MaxTitleLength+1), domain.ErrTodoTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo := &domain.Todo{Title: tt.title}
			err := todo.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTodoOwnership(t *testing.T) {
	todo := &domain.Todo{ID: 7}

	assert.Equal(t, int64(7), todo.EntityID())
	assert.Zero(t, todo.OwnerID())

	todo.SetOwnerID(42)
	assert.Equal(t, int64(42), todo.OwnerID())

	assert.False(t, todo.SoftDeleted())
	todo.IsDeleted = true
	assert.True(t, todo.SoftDeleted())
}
