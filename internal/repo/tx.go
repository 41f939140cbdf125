package repo

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repos bundles one instance of every repository, all bound to the same
// connection or transaction. Transactional services receive a Repos inside
// RunInTx so every statement in the callback shares the transaction.
type Repos struct {
	Drivers    DriverRepo
	Citations  CitationRepo
	Violations ViolationRepo
}

// NewRepos binds all repositories to the given connection.
// Pass *pgxpool.Pool for the non-transactional read path.
func NewRepos(db db) Repos {
	return Repos{
		Drivers:    NewDriverRepo(db),
		Citations:  NewCitationRepo(db),
		Violations: NewViolationRepo(db),
	}
}

const defaultTxTimeout = 5 * time.Second

// PgxTransactor runs a callback inside a single Postgres transaction.
// If the callback returns an error the transaction is rolled back, leaving
// every write made inside it undone; otherwise it is committed.
type PgxTransactor struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTransactor constructs a PgxTransactor over the given pool.
func NewTransactor(pool *pgxpool.Pool) *PgxTransactor {
	return &PgxTransactor{pool: pool}
}

// RunInTx begins a transaction, invokes fn with repositories bound to it, and
// commits on success. Any error from fn (or from commit) rolls the whole
// transaction back. A default timeout is applied when the incoming context
// carries no deadline so an abandoned transaction cannot hold locks forever.
func (t *PgxTransactor) RunInTx(ctx context.Context, fn func(r Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
