// Package store is the persistence gateway used by the ledger core. It wraps
// gorm with per-call timeouts and maps driver failures onto a small error
// taxonomy callers can branch on.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrStorageTimeout     = errors.New("storage timeout")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

const DefaultTimeout = 5 * time.Second

type Gateway struct {
	db      *gorm.DB
	timeout time.Duration
}

func New(db *gorm.DB, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{db: db, timeout: timeout}
}

// DB exposes the underlying handle for callers that need plain gorm queries.
func (g *Gateway) DB() *gorm.DB { return g.db }

func (g *Gateway) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	return g.db.WithContext(ctx), cancel
}

// Transaction runs fn inside a database transaction. The gateway passed to fn
// is bound to the transaction; returning an error rolls everything back.
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *Gateway) error) error {
	db, cancel := g.session(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		return fn(&Gateway{db: tx, timeout: g.timeout})
	})
	return classify(db.Statement.Context, err)
}

// Filter narrows a query.
type Filter func(*gorm.DB) *gorm.DB

func Where(query string, args ...any) Filter {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

type Query struct {
	Filters []Filter
	Order   []string
	Limit   int
}

func FindByID[T any](ctx context.Context, g *Gateway, id uint) (*T, error) {
	db, cancel := g.session(ctx)
	defer cancel()

	var rec T
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, classify(db.Statement.Context, err)
	}
	return &rec, nil
}

func Find[T any](ctx context.Context, g *Gateway, q Query) ([]T, error) {
	db, cancel := g.session(ctx)
	defer cancel()

	dbq := db.Model(new(T))
	for _, f := range q.Filters {
		dbq = f(dbq)
	}
	for _, o := range q.Order {
		dbq = dbq.Order(o)
	}
	if q.Limit > 0 {
		dbq = dbq.Limit(q.Limit)
	}

	out := make([]T, 0)
	if err := dbq.Find(&out).Error; err != nil {
		return nil, classify(db.Statement.Context, err)
	}
	return out, nil
}

// Insert creates rec; gorm fills in the id and timestamps.
func Insert[T any](ctx context.Context, g *Gateway, rec *T) error {
	db, cancel := g.session(ctx)
	defer cancel()

	return classify(db.Statement.Context, db.Create(rec).Error)
}

// UpdateByID applies patch (column -> value) to one row and returns the
// updated record.
func UpdateByID[T any](ctx context.Context, g *Gateway, id uint, patch map[string]any) (*T, error) {
	db, cancel := g.session(ctx)
	defer cancel()

	res := db.Model(new(T)).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, classify(db.Statement.Context, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return FindByID[T](ctx, g, id)
}

// Replace overwrites every column of row id with rec, keeping created_at.
func Replace[T any](ctx context.Context, g *Gateway, id uint, rec *T) error {
	db, cancel := g.session(ctx)
	defer cancel()

	res := db.Model(rec).Where("id = ?", id).Select("*").Omit("ID", "CreatedAt").Updates(rec)
	if res.Error != nil {
		return classify(db.Statement.Context, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes row id and returns it as it was before deletion.
func DeleteByID[T any](ctx context.Context, g *Gateway, id uint) (*T, error) {
	rec, err := FindByID[T](ctx, g, id)
	if err != nil {
		return nil, err
	}

	db, cancel := g.session(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return nil, classify(db.Statement.Context, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || (ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return fmt.Errorf("%w: %v", ErrStorageTimeout, err)
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageTimeout) || errors.Is(err, ErrStorageUnavailable)
}
