package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkoval/todo-api/internal/store"
)

// Provider yields request-scoped service instances. Handlers acquire a
// service at the top of the request and call release on exit — success,
// error, or abort — which returns the underlying session to the pool.
type Provider[S any] interface {
	Acquire(ctx context.Context) (svc S, release func(), err error)
}

// ConnProvider is the generic per-request factory: parameterized by a
// repository constructor and a service constructor, it checks one
// connection out of the pool per request, builds repository(conn), wraps
// it in service(repository), and hands both back with a release function.
//
// Exactly one repository and one service are built per Acquire, each bound
// to exactly one connection for the whole request. The pool itself is the
// only resource shared across requests; its sizing is the storage layer's
// concern.
type ConnProvider[R any, S any] struct {
	db         *sql.DB
	newRepo    func(store.DBTX) R
	newService func(R) S
	logger     *slog.Logger
}

// NewConnProvider creates a provider from the two constructors. If log is
// nil, the default logger is used.
func NewConnProvider[R any, S any](
	db *sql.DB,
	newRepo func(store.DBTX) R,
	newService func(R) S,
	log *slog.Logger,
) *ConnProvider[R, S] {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ConnProvider[R, S]{
		db:         db,
		newRepo:    newRepo,
		newService: newService,
		logger:     log.With(slog.String("component", "service_provider")),
	}
}

// Acquire builds a service bound to a dedicated connection. A pool
// exhaustion or connectivity fault propagates from the checkout step; the
// caller must treat it as "storage unavailable" rather than a client
// error. The returned release function is safe to defer immediately.
func (p *ConnProvider[R, S]) Acquire(ctx context.Context) (S, func(), error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		var zero S
		return zero, nil, fmt.Errorf("failed to acquire database connection: %w", err)
	}

	repo := p.newRepo(conn)
	svc := p.newService(repo)

	release := func() {
		if cerr := conn.Close(); cerr != nil {
			p.logger.Error("failed to release database connection",
				slog.String("error", cerr.Error()))
		}
	}
	return svc, release, nil
}
