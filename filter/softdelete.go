// Package filter attaches the standing soft-delete predicate to queries.
//
// Registration happens once, at schema-build time: hand every model the
// application knows about to NewSoftDeleteFilter and install it with db.Use.
// Models implementing audit.SoftDeletable are filtered on every read; the
// rest are ignored. Adding a new soft-deletable model means adding it to the
// constructor call, nothing else.
package filter

import (
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"auditkit/audit"
)

// DeletedColumn is the DB column every soft-deletable model must map its
// deletion flag to.
const DeletedColumn = "is_deleted"

const (
	pluginName        = "auditkit:soft_delete_filter"
	includeDeletedKey = "auditkit:include_deleted"
)

// IncludeDeleted is a scope that bypasses the soft-delete filter for one
// query: db.Scopes(filter.IncludeDeleted).Find(...).
func IncludeDeleted(db *gorm.DB) *gorm.DB {
	return db.Set(includeDeletedKey, true)
}

// SoftDeleteFilter is a gorm.Plugin that excludes flagged rows from reads
// against registered soft-deletable types.
type SoftDeleteFilter struct {
	models []any
	tables map[reflect.Type]string
}

// NewSoftDeleteFilter builds a filter over the given model prototypes,
// typically pointers to empty structs. Non-soft-deletable models are skipped,
// so passing the full model list is the intended call pattern.
func NewSoftDeleteFilter(models ...any) *SoftDeleteFilter {
	return &SoftDeleteFilter{
		models: models,
		tables: map[reflect.Type]string{},
	}
}

// Name implements gorm.Plugin.
func (f *SoftDeleteFilter) Name() string { return pluginName }

// Initialize walks the registered models, records the table for every
// soft-deletable one, and hooks the query pipeline. Runs once per db.Use.
func (f *SoftDeleteFilter) Initialize(db *gorm.DB) error {
	cache := &sync.Map{}
	for _, model := range f.models {
		if model == nil {
			return fmt.Errorf("soft delete filter: nil model")
		}
		if _, ok := model.(audit.SoftDeletable); !ok {
			continue
		}
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return fmt.Errorf("soft delete filter: parse schema for %T: %w", model, err)
		}
		if s.LookUpField(DeletedColumn) == nil {
			return fmt.Errorf("soft delete filter: %T maps no %q column", model, DeletedColumn)
		}
		f.tables[indirectType(model)] = s.Table
	}
	return db.Callback().Query().Before("gorm:query").Register(pluginName, f.beforeQuery)
}

func (f *SoftDeleteFilter) beforeQuery(db *gorm.DB) {
	if db.Statement == nil {
		return
	}
	if _, bypass := db.Get(includeDeletedKey); bypass {
		return
	}
	target := db.Statement.Model
	if target == nil {
		target = db.Statement.Dest
	}
	table, ok := f.tables[indirectType(target)]
	if !ok {
		return
	}
	db.Statement.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: table, Name: DeletedColumn}, Value: false},
	}})
}

// indirectType resolves the concrete struct type behind pointers and slices,
// matching the shapes GORM accepts as query destinations.
func indirectType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}
	return nil
}

var _ gorm.Plugin = (*SoftDeleteFilter)(nil)
