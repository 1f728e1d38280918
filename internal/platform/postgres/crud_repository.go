// Package postgres implements the store contracts on top of database/sql.
// The SQL is restricted to the portable subset shared by PostgreSQL (pgx
// stdlib driver in production) and SQLite (test database): $N placeholders
// and INSERT/UPDATE ... RETURNING.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/dkoval/todo-api/internal/platform/logger"
	"github.com/dkoval/todo-api/internal/store"
)

// Column names backing the optional entity capabilities. An entity type
// implementing store.SoftDeletable or store.Owned promises its table
// carries the corresponding column.
const (
	softDeleteColumn = "is_deleted"
	ownerColumn      = "user_id"
	updatedAtColumn  = "updated_at"
)

// CrudRepository is a generic CRUD data-access object for one entity type.
// It is bound to a single DBTX (pool, request-scoped connection, or
// transaction) and a Mapper describing the entity's table layout. Soft
// delete and owner filtering are enabled at construction time based on the
// capability interfaces *E implements; no reflection is involved.
//
// On a pool- or connection-bound repository every mutating call is one
// auto-committed statement, so each Create/Update/Delete is independently
// durable. WithTx rebinds the repository to a caller-managed transaction.
type CrudRepository[E any] struct {
	db         store.DBTX
	mapper     store.Mapper[E]
	logger     *slog.Logger
	echo       bool
	softDelete bool
	owned      bool
}

// NewCrudRepository creates a repository for the entity type E over the
// given connection. If log is nil, the default logger is used. When echo
// is true every statement is logged at debug level.
func NewCrudRepository[E any](db store.DBTX, mapper store.Mapper[E], log *slog.Logger, echo bool) *CrudRepository[E] {
	if db == nil {
		panic("db cannot be nil")
	}
	if mapper == nil {
		panic("mapper cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	// Capability probe: methods live on *E, so a nil *E is enough to know
	// which filters this entity type supports.
	var probe any = new(E)
	_, softDelete := probe.(store.SoftDeletable)
	_, owned := probe.(store.Owned)

	return &CrudRepository[E]{
		db:         db,
		mapper:     mapper,
		logger:     log.With(slog.String("component", "crud_repository"), slog.String("table", mapper.Table())),
		echo:       echo,
		softDelete: softDelete,
		owned:      owned,
	}
}

// WithTx returns a copy of the repository bound to the given transaction.
// Statements issued through the copy commit only when the caller commits,
// which is what AddAll-style batch staging relies on.
func (r *CrudRepository[E]) WithTx(tx *sql.Tx) *CrudRepository[E] {
	cp := *r
	cp.db = tx
	return &cp
}

// Create instantiates an entity from the payload, persists it, and returns
// the instance with server-assigned fields populated. Constraint violations
// and connectivity errors come back as a store.StoreError wrapping the
// driver error; payload shape problems surface as store.ErrInvalidEntity
// from the mapper. No domain validation happens here, that is the caller's
// job.
func (r *CrudRepository[E]) Create(ctx context.Context, fields store.Fields) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	entity, err := r.mapper.New(fields)
	if err != nil {
		log.Warn("rejected create payload", slog.String("error", err.Error()))
		return nil, err
	}

	cols := r.mapper.InsertColumns()
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.mapper.Table(),
		strings.Join(cols, ", "),
		placeholders(1, len(cols)),
		strings.Join(r.mapper.Columns(), ", "),
	)
	r.echoQuery(log, query)

	created, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, r.mapper.InsertValues(entity)...))
	if err != nil {
		log.Error("failed to create entity", slog.String("error", err.Error()))
		return nil, store.NewStoreError(r.mapper.Table(), "create", "failed to insert entity", err)
	}

	log.Info("entity created", slog.Int64("id", entityID(created)))
	return created, nil
}

// GetByID looks an entity up by primary key. Soft-deleted rows are always
// excluded for soft-deletable types; a non-zero ownerID additionally
// restricts the lookup to rows owned by that user. A missing, deleted, or
// foreign-owned row yields store.ErrNotFound.
func (r *CrudRepository[E]) GetByID(ctx context.Context, id int64, ownerID int64) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = $1",
		strings.Join(r.mapper.Columns(), ", "),
		r.mapper.Table(),
	)
	args := []any{id}
	query, args = r.appendVisibilityFilters(query, args, ownerID)
	r.echoQuery(log, query)

	entity, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("entity not found", slog.Int64("id", id))
			return nil, r.mapper.NotFound()
		}
		log.Error("failed to get entity by id",
			slog.String("error", err.Error()),
			slog.Int64("id", id))
		return nil, store.NewStoreError(r.mapper.Table(), "get", "failed to query entity", err)
	}

	return entity, nil
}

// List returns all visible entities, optionally filtered by owner.
// The result is an empty slice, never nil, when nothing matches. No ORDER
// BY is imposed; callers must not assume more than storage-default order.
func (r *CrudRepository[E]) List(ctx context.Context, ownerID int64) ([]*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE 1 = 1",
		strings.Join(r.mapper.Columns(), ", "),
		r.mapper.Table(),
	)
	var args []any
	query, args = r.appendVisibilityFilters(query, args, ownerID)
	r.echoQuery(log, query)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list entities", slog.String("error", err.Error()))
		return nil, store.NewStoreError(r.mapper.Table(), "list", "failed to query entities", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	entities := []*E{}
	for rows.Next() {
		entity, err := r.mapper.Scan(rows)
		if err != nil {
			log.Error("failed to scan entity row", slog.String("error", err.Error()))
			return nil, store.NewStoreError(r.mapper.Table(), "list", "failed to scan entity row", err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError(r.mapper.Table(), "list", "error iterating rows", err)
	}

	log.Debug("listed entities", slog.Int("count", len(entities)))
	return entities, nil
}

// Update overwrites only the fields present in the payload and returns the
// refreshed entity. The lookup applies the same visibility rules as
// GetByID — soft-delete filter always, owner filter for non-zero ownerID —
// so a hidden row reports store.ErrNotFound rather than being revived.
// updated_at is advanced on every call.
func (r *CrudRepository[E]) Update(ctx context.Context, id int64, fields store.Fields, ownerID int64) (*E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if _, err := r.GetByID(ctx, id, ownerID); err != nil {
		return nil, err
	}

	// Deterministic column order keeps placeholders aligned with args.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		assignments []string
		args        []any
	)
	for _, name := range names {
		column, ok := r.mapper.Column(name)
		if !ok {
			log.Warn("rejected update payload field", slog.String("field", name))
			return nil, fmt.Errorf("%w: field %q is not writable", store.ErrInvalidEntity, name)
		}
		args = append(args, fields[name])
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now().UTC())
	assignments = append(assignments, fmt.Sprintf("%s = $%d", updatedAtColumn, len(args)))

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		r.mapper.Table(),
		strings.Join(assignments, ", "),
		len(args),
	)
	query, args = r.appendVisibilityFilters(query, args, ownerID)
	query += " RETURNING " + strings.Join(r.mapper.Columns(), ", ")
	r.echoQuery(log, query)

	updated, err := r.mapper.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row vanished between lookup and update.
			log.Debug("entity not found for update", slog.Int64("id", id))
			return nil, r.mapper.NotFound()
		}
		log.Error("failed to update entity",
			slog.String("error", err.Error()),
			slog.Int64("id", id))
		return nil, store.NewStoreError(r.mapper.Table(), "update", "failed to update entity", err)
	}

	log.Info("entity updated", slog.Int64("id", id))
	return updated, nil
}

// Delete soft-deletes the entity when the type carries the capability,
// otherwise removes the row physically. The visibility filters make the
// operation naturally idempotent: once a row is soft-deleted it is no
// longer visible, so a second call reports false instead of flipping the
// flag again.
func (r *CrudRepository[E]) Delete(ctx context.Context, id int64, ownerID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var (
		query string
		args  []any
	)
	if r.softDelete {
		args = []any{time.Now().UTC(), id}
		query = fmt.Sprintf(
			"UPDATE %s SET %s = TRUE, %s = $1 WHERE id = $2",
			r.mapper.Table(),
			softDeleteColumn,
			updatedAtColumn,
		)
	} else {
		args = []any{id}
		query = fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.mapper.Table())
	}
	query, args = r.appendVisibilityFilters(query, args, ownerID)
	r.echoQuery(log, query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete entity",
			slog.String("error", err.Error()),
			slog.Int64("id", id))
		return false, store.NewStoreError(r.mapper.Table(), "delete", "failed to delete entity", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected", slog.String("error", err.Error()))
		return false, store.NewStoreError(r.mapper.Table(), "delete", "failed to get rows affected", err)
	}
	if affected == 0 {
		log.Debug("entity not found for delete", slog.Int64("id", id))
		return false, nil
	}

	log.Info("entity deleted", slog.Int64("id", id), slog.Bool("soft", r.softDelete))
	return true, nil
}

// AddAll stages pre-built entities on the bound connection. It does not
// manage the transaction boundary: combined with WithTx and
// store.RunInTransaction the whole batch commits or rolls back together;
// on a plain connection each insert auto-commits like any other statement.
func (r *CrudRepository[E]) AddAll(ctx context.Context, entities []*E) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	cols := r.mapper.InsertColumns()
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		r.mapper.Table(),
		strings.Join(cols, ", "),
		placeholders(1, len(cols)),
	)
	r.echoQuery(log, query)

	for _, entity := range entities {
		if _, err := r.db.ExecContext(ctx, query, r.mapper.InsertValues(entity)...); err != nil {
			log.Error("failed to stage entity", slog.String("error", err.Error()))
			return store.NewStoreError(r.mapper.Table(), "add_all", "failed to stage entity", err)
		}
	}

	log.Debug("staged entities", slog.Int("count", len(entities)))
	return nil
}

// appendVisibilityFilters adds the soft-delete and owner predicates the
// entity type supports. The owner filter only applies for a non-zero
// ownerID, mirroring the "zero means no filter" contract.
func (r *CrudRepository[E]) appendVisibilityFilters(query string, args []any, ownerID int64) (string, []any) {
	if r.softDelete {
		query += fmt.Sprintf(" AND %s = FALSE", softDeleteColumn)
	}
	if r.owned && ownerID != 0 {
		args = append(args, ownerID)
		query += fmt.Sprintf(" AND %s = $%d", ownerColumn, len(args))
	}
	return query, args
}

func (r *CrudRepository[E]) echoQuery(log *slog.Logger, query string) {
	if r.echo {
		log.Debug("executing query", slog.String("query", query))
	}
}

// placeholders renders "$start, $start+1, ..." for n values.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

// entityID extracts the primary key for logging when the entity exposes it.
func entityID[E any](e *E) int64 {
	if ided, ok := any(e).(interface{ EntityID() int64 }); ok {
		return ided.EntityID()
	}
	return 0
}
