// Package leaselock provides a Postgres-backed lease lock used to make
// sure only one worker ingests a given document at a time. Leases renew
// themselves in the background and expire when the holder dies.
package leaselock

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrBusy is returned when the lock is held by someone else and
	// waiting is disabled.
	ErrBusy = errors.New("lease lock busy")
	// ErrLost is the cancel cause of a lease context whose renewal
	// failed.
	ErrLost = errors.New("lease lock lost")
)

const acquireSQL = `
INSERT INTO document_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE document_locks.expires_at < now()
   OR document_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE document_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM document_locks
WHERE lock_key = $1 AND locked_by = $2;
`

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client hands out leases backed by the document_locks table.
type Client struct {
	db querier
}

// New creates a lease client on an existing pool.
func New(pool *pgxpool.Pool) *Client {
	return &Client{db: pool}
}

// Options tune a single lease. Zero values fall back to a 5 minute TTL
// renewed at half-TTL intervals without waiting for a busy lock.
type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration

	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration

	TokenPrefix string
}

func (o *Options) normalize() {
	if o.TTL <= 0 {
		o.TTL = 5 * time.Minute
	}
	if o.RenewEvery <= 0 || o.RenewEvery >= o.TTL {
		o.RenewEvery = max(o.TTL/2, time.Second)
	}
	if o.WaitInterval <= 0 {
		o.WaitInterval = 250 * time.Millisecond
	}
	if o.WaitJitter < 0 {
		o.WaitJitter = 0
	}
}

// Lease is a held lock. Context is cancelled (cause ErrLost) when the
// lease cannot be renewed, so work running under it stops instead of
// racing a new holder.
type Lease struct {
	Key   string
	Token string

	Context context.Context

	client *Client
	cancel context.CancelCauseFunc

	stopOnce sync.Once
	stopCh   chan struct{}
}

// WithLease runs fn while holding the lock for key, releasing it when
// fn returns. fn receives the lease context and should pass it down.
func (c *Client) WithLease(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	return fn(lease.Context)
}

// Acquire takes the lock for key. A held, unexpired lock owned by
// someone else yields ErrBusy unless opts.Wait is set, in which case
// acquisition is retried on the wait interval until ctx ends.
func (c *Client) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lease lock key is empty")
	}
	opts.normalize()

	tok, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	token := opts.TokenPrefix + tok
	ttlMs := opts.TTL.Milliseconds()

	for {
		ok, err := c.tryAcquire(ctx, key, token, ttlMs)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, ErrBusy
		}
		if err := sleep(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	lease := &Lease{
		Key:     key,
		Token:   token,
		Context: leaseCtx,
		client:  c,
		cancel:  cancel,
		stopCh:  make(chan struct{}),
	}
	go lease.keepAlive(opts.RenewEvery, ttlMs)

	return lease, nil
}

func (c *Client) tryAcquire(ctx context.Context, key, token string, ttlMs int64) (bool, error) {
	var got string
	err := c.db.QueryRow(ctx, acquireSQL, key, token, ttlMs).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got != "", nil
}

// Release stops renewal and deletes the lock row. Releasing an already
// lost or released lease is harmless.
func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
		l.cancel(context.Canceled)
	})
	_, err := l.client.db.Exec(ctx, releaseSQL, l.Key, l.Token)
	return err
}

func (l *Lease) keepAlive(every time.Duration, ttlMs int64) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-l.Context.Done():
			return
		case <-ticker.C:
			if err := l.renew(ttlMs); err != nil {
				l.cancel(err)
				return
			}
		}
	}
}

func (l *Lease) renew(ttlMs int64) error {
	const attempts = 3

	var lastErr error
	for attempt := range attempts {
		renewCtx, cancel := context.WithTimeout(l.Context, 15*time.Second)
		var got string
		err := l.client.db.QueryRow(renewCtx, renewSQL, l.Key, l.Token, ttlMs).Scan(&got)
		cancel()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, pgx.ErrNoRows):
			// row gone or taken over, the lease is unrecoverable
			return ErrLost
		}
		lastErr = err
		if attempt < attempts-1 {
			if err := sleep(l.Context, 200*time.Millisecond, 0); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func sleep(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
