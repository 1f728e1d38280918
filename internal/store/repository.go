package store

import "context"

// OwnerField is the payload key carrying the owning-user id for entity
// types that implement Owned. The service layer injects it on create when
// the caller did not supply one.
const OwnerField = "user_id"

// Fields is a partial field-to-value payload for create and update
// operations. Only the fields present are applied; everything else keeps
// its current (or default) value.
type Fields map[string]any

// Clone returns a shallow copy so callers' payloads are never mutated.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// SoftDeletable marks entity types whose table carries an is_deleted
// column. Repositories never return soft-deleted rows from reads, and
// Delete flips the flag instead of removing the row.
type SoftDeletable interface {
	SoftDeleted() bool
}

// Owned marks entity types whose table carries a user_id owner column.
// When a non-zero owner id is passed to a read or delete, the repository
// additionally filters by it.
type Owned interface {
	OwnerID() int64
	SetOwnerID(id int64)
}

// Mapper describes how an entity type maps onto its table. One mapper is
// bound per repository at construction; it is the only place column names
// live, keeping the repository itself fully generic.
type Mapper[E any] interface {
	// Table returns the table name.
	Table() string

	// Columns returns the full column list in scan order, id first.
	Columns() []string

	// Scan reads one row, in Columns order, into a fresh entity.
	Scan(row Row) (*E, error)

	// New builds an entity from a create payload, applying zero-value
	// defaults for absent fields. Returns ErrInvalidEntity (wrapped) when a
	// field is unknown or carries a value of the wrong type.
	New(fields Fields) (*E, error)

	// InsertColumns returns the columns written on insert (everything
	// except the server-assigned id), and InsertValues the matching values.
	InsertColumns() []string
	InsertValues(e *E) []any

	// Column maps a payload field name to its writable column name.
	// Returns false for unknown or read-only fields (id, timestamps).
	Column(field string) (string, bool)

	// NotFound returns the entity-specific not-found sentinel. It must wrap
	// ErrNotFound so errors.Is keeps matching the generic case.
	NotFound() error
}

// Repository is the generic data-access contract of spec'd CRUD entities.
// An ownerID of zero means "no owner filter"; a non-zero ownerID narrows
// reads and deletes to rows owned by that user when the entity type is
// Owned, and is ignored otherwise.
//
// Each call on a pool-bound repository is one implicitly committed
// statement: two sequential calls are two separate durable transactions.
// Callers needing a wider boundary wrap the repository with WithTx-style
// rebinding and RunInTransaction.
type Repository[E any] interface {
	// Create persists a new entity built from the payload and returns it
	// with server-assigned fields (id, timestamps) populated. Storage
	// errors (constraint violations, connectivity) surface as a StoreError
	// carrying the operation context, with the driver error unwrappable.
	Create(ctx context.Context, fields Fields) (*E, error)

	// GetByID retrieves an entity by primary key, excluding soft-deleted
	// rows and, for non-zero ownerID, rows owned by someone else.
	// Returns ErrNotFound when no visible row matches.
	GetByID(ctx context.Context, id int64, ownerID int64) (*E, error)

	// List retrieves all visible entities, optionally owner-filtered.
	// Returns an empty slice, never nil, when nothing matches. No ordering
	// beyond storage-default stability is guaranteed.
	List(ctx context.Context, ownerID int64) ([]*E, error)

	// Update applies a partial payload to an existing entity and returns
	// the refreshed instance. The lookup uses GetByID semantics, owner
	// filter included. Returns ErrNotFound when no visible row matches.
	Update(ctx context.Context, id int64, fields Fields, ownerID int64) (*E, error)

	// Delete soft-deletes the entity when the type is SoftDeletable,
	// otherwise removes the row. Returns false, not an error, when no
	// visible row matches — a second delete of the same id reports false.
	Delete(ctx context.Context, id int64, ownerID int64) (bool, error)

	// AddAll stages pre-built entities on the bound connection without
	// owning the transaction boundary. Meaningful inside RunInTransaction,
	// where the caller decides when the batch commits.
	AddAll(ctx context.Context, entities []*E) error
}
