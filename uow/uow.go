// Package uow implements the save pipeline: classify pending changes, apply
// audit stamps, rewrite hard deletes of soft-deletable entities, commit
// everything in one transaction, and deliver buffered domain events once the
// commit has landed.
package uow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"auditkit/audit"
	"auditkit/bus"
	"auditkit/filter"
	"auditkit/identity"
)

const tracerName = "auditkit/uow"

// Kind classifies the lifecycle transition of a pending change.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// change tracks one pending entity mutation. kind is the statement that will
// be issued; stamp keeps the original transition so a rewritten soft delete
// still receives deletion stamps.
type change struct {
	entity any
	kind   Kind
	stamp  Kind
	skip   bool
}

// UnitOfWork collects pending entity changes and commits them atomically.
// One instance serves one logical save; it is not safe for concurrent use.
// Concurrent saves from different callers each get their own instance and
// are isolated by the database's transaction isolation.
type UnitOfWork struct {
	db      *gorm.DB
	users   identity.Provider
	bus     bus.Bus
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	changes []change
}

type Option func(*UnitOfWork)

// WithIdentity sets the provider consulted for the acting user during
// stamping. Without one, stamps carry no actor.
func WithIdentity(p identity.Provider) Option {
	return func(u *UnitOfWork) { u.users = p }
}

// WithBus sets the subscriber bus for post-commit event dispatch. Without
// one, the dispatch step is skipped.
func WithBus(b bus.Bus) Option {
	return func(u *UnitOfWork) { u.bus = b }
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *UnitOfWork) { u.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(u *UnitOfWork) { u.tracer = tr }
}

// WithClock overrides the time source used for stamps.
func WithClock(now func() time.Time) Option {
	return func(u *UnitOfWork) { u.now = now }
}

// New builds a unit of work over the given DB handle.
func New(db *gorm.DB, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(u)
		}
	}
	if u.logger == nil {
		u.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if u.tracer == nil {
		u.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	return u
}

// RegisterNew queues entities for insertion.
func (u *UnitOfWork) RegisterNew(entities ...any) { u.register(KindInsert, entities) }

// RegisterDirty queues entities for update. Entities must carry their
// primary key.
func (u *UnitOfWork) RegisterDirty(entities ...any) { u.register(KindUpdate, entities) }

// RegisterRemoved queues entities for deletion. Soft-deletable entities are
// flagged instead of removed.
func (u *UnitOfWork) RegisterRemoved(entities ...any) { u.register(KindDelete, entities) }

func (u *UnitOfWork) register(kind Kind, entities []any) {
	for _, e := range entities {
		u.changes = append(u.changes, change{entity: e, kind: kind, stamp: kind})
	}
}

// Pending reports how many changes are queued.
func (u *UnitOfWork) Pending() int { return len(u.changes) }

// Save runs the pipeline: classify, rewrite soft deletes, stamp, commit,
// dispatch. It returns the number of affected rows.
//
// On a commit failure the registered changes and every event buffer stay
// untouched, so the caller may retry Save. A *DispatchError is returned after
// a successful commit when one or more subscribers failed; the row count is
// still valid in that case, and delivery for the drained events is therefore
// at most once.
func (u *UnitOfWork) Save(ctx context.Context) (int64, error) {
	ctx, span := u.tracer.Start(ctx, "UnitOfWork.Save",
		trace.WithAttributes(attribute.Int("uow.pending", len(u.changes))))
	defer span.End()

	if err := u.classify(); err != nil {
		return 0, u.fail(ctx, span, err, "classification failed")
	}

	actor := u.actor(ctx)
	now := u.now()
	for i := range u.changes {
		c := &u.changes[i]
		if c.kind == KindDelete {
			if err := u.rewriteSoftDelete(ctx, c); err != nil {
				return 0, u.fail(ctx, span, err, "soft delete rewrite failed")
			}
		}
		if c.skip {
			continue
		}
		stampForKind(c.entity, c.stamp, now, actor)
	}

	// Cooperative cancellation ends here; once the transaction is issued it
	// either lands whole or rolls back whole.
	if err := ctx.Err(); err != nil {
		return 0, u.fail(ctx, span, err, "save cancelled")
	}

	var affected int64
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range u.changes {
			if c.skip {
				continue
			}
			res := u.apply(tx, c)
			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, u.fail(ctx, span, fmt.Errorf("%w: %w", ErrCommit, err), "commit failed")
	}

	committed := u.changes
	u.changes = nil
	u.logger.LogAttrs(ctx, slog.LevelDebug, "unit of work committed",
		slog.Int("changes", len(committed)), slog.Int64("affected", affected))

	if u.bus == nil {
		return affected, nil
	}
	if err := u.dispatch(ctx, committed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		u.logger.LogAttrs(ctx, slog.LevelError, "event dispatch failed after commit",
			slog.String("error", err.Error()))
		return affected, err
	}
	return affected, nil
}

func (u *UnitOfWork) apply(tx *gorm.DB, c change) *gorm.DB {
	switch c.kind {
	case KindInsert:
		return tx.Create(c.entity)
	case KindUpdate:
		return tx.Save(c.entity)
	default:
		return tx.Delete(c.entity)
	}
}

func (u *UnitOfWork) classify() error {
	for _, c := range u.changes {
		switch c.kind {
		case KindInsert, KindUpdate, KindDelete:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownTransition, c.kind)
		}
		rv := reflect.ValueOf(c.entity)
		if c.entity == nil || rv.Kind() != reflect.Pointer || rv.IsNil() {
			return fmt.Errorf("%w, got %T", ErrInvalidEntity, c.entity)
		}
	}
	return nil
}

// schemaCache backs primary-key extraction across saves.
var schemaCache = &sync.Map{}

// rewriteSoftDelete converts a pending delete of a soft-deletable entity into
// a flag update. The entity is reloaded by primary key from its committed row
// first, so the update is not layered on top of unsaved in-memory mutations.
// A row that no longer exists drops the change.
func (u *UnitOfWork) rewriteSoftDelete(ctx context.Context, c *change) error {
	sd, ok := c.entity.(audit.SoftDeletable)
	if !ok {
		return nil
	}
	conds, err := primaryKeyConditions(ctx, u.db, c.entity)
	if err != nil {
		return err
	}
	err = u.db.WithContext(ctx).Scopes(filter.IncludeDeleted).Where(conds).First(c.entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.skip = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reload for soft delete: %w", err)
	}
	sd.MarkDeleted()
	c.kind = KindUpdate
	return nil
}

// primaryKeyConditions extracts the entity's primary key values as a where
// condition map. Every primary field must be populated.
func primaryKeyConditions(ctx context.Context, db *gorm.DB, entity any) (map[string]any, error) {
	s, err := schema.Parse(entity, schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema for %T: %w", entity, err)
	}
	rv := reflect.ValueOf(entity)
	conds := make(map[string]any, len(s.PrimaryFields))
	for _, field := range s.PrimaryFields {
		value, zero := field.ValueOf(ctx, rv)
		if zero {
			return nil, fmt.Errorf("%w: %T field %s", ErrMissingPrimaryKey, entity, field.Name)
		}
		conds[field.DBName] = value
	}
	if len(conds) == 0 {
		return nil, fmt.Errorf("%w: %T declares no primary key", ErrMissingPrimaryKey, entity)
	}
	return conds, nil
}

func (u *UnitOfWork) actor(ctx context.Context) string {
	if u.users == nil {
		return ""
	}
	return u.users.CurrentUserID(ctx)
}

func (u *UnitOfWork) fail(ctx context.Context, span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	u.logger.LogAttrs(ctx, slog.LevelError, msg, slog.String("error", err.Error()))
	return err
}
