package postgres_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoval/todo-api/internal/domain"
	"github.com/dkoval/todo-api/internal/platform/postgres"
	"github.com/dkoval/todo-api/internal/store"
	"github.com/dkoval/todo-api/internal/testdb"
)

func newTestRepo(t *testing.T) (*sql.DB, *postgres.CrudRepository[domain.Todo]) {
	t.Helper()
	db := testdb.NewTodoDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return db, postgres.NewTodoRepository(db, log, false)
}

func mustCreate(t *testing.T, repo *postgres.CrudRepository[domain.Todo], fields store.Fields) *domain.Todo {
	t.Helper()
	todo, err := repo.Create(context.Background(), fields)
	require.NoError(t, err)
	require.NotNil(t, todo)
	return todo
}

func TestCreateAssignsServerFields(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{
		"title":       "write report",
		"description": "quarterly numbers",
		"user_id":     int64(10),
	})

	assert.NotZero(t, todo.ID)
	assert.Equal(t, "write report", todo.Title)
	require.NotNil(t, todo.Description)
	assert.Equal(t, "quarterly numbers", *todo.Description)
	assert.Equal(t, int64(10), todo.UserID)
	assert.False(t, todo.IsCompleted)
	assert.False(t, todo.IsDeleted)
	assert.False(t, todo.CreatedAt.IsZero())
	assert.True(t, todo.UpdatedAt.Equal(todo.CreatedAt) || todo.UpdatedAt.After(todo.CreatedAt))

	// Ids are never reused: a second create gets a fresh one.
	second, err := repo.Create(ctx, store.Fields{"title": "another"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, todo.ID)
}

func TestCreateRejectsUnknownField(t *testing.T) {
	_, repo := newTestRepo(t)

	_, err := repo.Create(context.Background(), store.Fields{
		"title":    "x",
		"priority": 3,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestCreatePropagatesConstraintViolation(t *testing.T) {
	_, repo := newTestRepo(t)

	// No title: the NOT NULL constraint fires at the storage layer. The
	// fault surfaces as a StoreError carrying the operation context, with
	// the raw driver error still reachable through Unwrap.
	_, err := repo.Create(context.Background(), store.Fields{"description": "no title"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrInvalidEntity)
	assert.NotErrorIs(t, err, store.ErrNotFound)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "create", storeErr.Operation)
	assert.Equal(t, "todos", storeErr.Entity)
	assert.NotNil(t, storeErr.Unwrap())
}

func TestGetByIDFiltering(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "mine", "user_id": int64(10)})

	t.Run("found without owner filter", func(t *testing.T) {
		got, err := repo.GetByID(ctx, todo.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, todo.ID, got.ID)
	})

	t.Run("found with matching owner", func(t *testing.T) {
		got, err := repo.GetByID(ctx, todo.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.UserID)
	})

	t.Run("hidden from other owners", func(t *testing.T) {
		_, err := repo.GetByID(ctx, todo.ID, 99)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 123456, 0)
		assert.ErrorIs(t, err, store.ErrNotFound)
		// Lookup misses carry the entity-specific sentinel, which still
		// matches the generic one.
		assert.ErrorIs(t, err, store.ErrTodoNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})
}

func TestSoftDeleteLifecycle(t *testing.T) {
	db, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "ephemeral", "user_id": int64(10)})

	deleted, err := repo.Delete(ctx, todo.ID, 10)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Invisible to reads from now on.
	_, err = repo.GetByID(ctx, todo.ID, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)

	todos, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, todos)

	// The row still exists, flagged deleted.
	var isDeleted bool
	require.NoError(t, db.QueryRow("SELECT is_deleted FROM todos WHERE id = $1", todo.ID).Scan(&isDeleted))
	assert.True(t, isDeleted)

	// Idempotence: the second delete finds no visible row.
	deleted, err = repo.Delete(ctx, todo.ID, 10)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteRespectsOwnerFilter(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "guarded", "user_id": int64(10)})

	deleted, err := repo.Delete(ctx, todo.ID, 99)
	require.NoError(t, err)
	assert.False(t, deleted)

	// Still visible to its owner.
	got, err := repo.GetByID(ctx, todo.ID, 10)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)
}

func TestListOwnerScoping(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	first := mustCreate(t, repo, store.Fields{"title": "a", "user_id": int64(1)})
	mustCreate(t, repo, store.Fields{"title": "b", "user_id": int64(1)})
	mustCreate(t, repo, store.Fields{"title": "c", "user_id": int64(2)})

	deleted, err := repo.Delete(ctx, first.ID, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	ownerOne, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, ownerOne, 1)
	assert.Equal(t, "b", ownerOne[0].Title)

	everyone, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, everyone, 2)

	ownerTwo, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, ownerTwo, 1)
	assert.Equal(t, "c", ownerTwo[0].Title)
}

func TestListReturnsEmptySliceNotNil(t *testing.T) {
	_, repo := newTestRepo(t)

	todos, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func TestUpdatePartialOverwrite(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{
		"title":       "old title",
		"description": "keep me",
		"user_id":     int64(10),
	})

	// Make sure the clock moves between create and update.
	time.Sleep(5 * time.Millisecond)

	updated, err := repo.Update(ctx, todo.ID, store.Fields{"title": "new title"}, 0)
	require.NoError(t, err)

	assert.Equal(t, "new title", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "keep me", *updated.Description)
	assert.Equal(t, int64(10), updated.UserID)
	assert.False(t, updated.IsCompleted)
	assert.True(t, updated.CreatedAt.Equal(todo.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(todo.UpdatedAt))
}

func TestUpdateOwnerOnlyWhenExplicit(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "owned", "user_id": int64(10)})

	updated, err := repo.Update(ctx, todo.ID, store.Fields{"is_completed": true}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), updated.UserID)

	reassigned, err := repo.Update(ctx, todo.ID, store.Fields{"user_id": int64(42)}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), reassigned.UserID)
}

func TestUpdateNotFoundAndOwnerFilter(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "x", "user_id": int64(10)})

	_, err := repo.Update(ctx, 999999, store.Fields{"title": "y"}, 0)
	assert.ErrorIs(t, err, store.ErrTodoNotFound)

	// Owner filter applies to the update lookup too.
	_, err = repo.Update(ctx, todo.ID, store.Fields{"title": "y"}, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateRejectsNonWritableField(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()

	todo := mustCreate(t, repo, store.Fields{"title": "x"})

	for _, field := range []string{"id", "created_at", "is_deleted", "bogus"} {
		_, err := repo.Update(ctx, todo.ID, store.Fields{field: 1}, 0)
		assert.ErrorIs(t, err, store.ErrInvalidEntity, "field %q should be rejected", field)
	}
}

func TestStorageFaultsCarryOperationContext(t *testing.T) {
	db, repo := newTestRepo(t)
	require.NoError(t, db.Close())

	_, err := repo.List(context.Background(), 0)
	require.Error(t, err)

	var storeErr *store.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "list", storeErr.Operation)
	assert.Equal(t, "todos", storeErr.Entity)
}

func TestAddAllStagesWithinCallerTransaction(t *testing.T) {
	db, repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	batch := []*domain.Todo{
		{Title: "one", UserID: 1, CreatedAt: now, UpdatedAt: now},
		{Title: "two", UserID: 1, CreatedAt: now, UpdatedAt: now},
	}

	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return repo.WithTx(tx).AddAll(ctx, batch)
	})
	require.NoError(t, err)

	todos, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestAddAllRollsBackWithCallerTransaction(t *testing.T) {
	db, repo := newTestRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	batch := []*domain.Todo{{Title: "doomed", CreatedAt: now, UpdatedAt: now}}

	sentinel := assert.AnError
	err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := repo.WithTx(tx).AddAll(ctx, batch); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	todos, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, todos)
}
