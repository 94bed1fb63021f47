// Package audit defines the opt-in capabilities an entity may carry to take
// part in audit stamping, soft deletion, and post-commit event dispatch.
//
// Each capability is an independent interface; an entity opts in by
// implementing it, typically by embedding one of the stamp structs from this
// package. The unit of work checks every capability individually, so any
// combination is valid.
package audit

import "time"

// HasCreationTime is implemented by entities that record when they were first
// persisted. A zero time means the stamp has not been applied yet.
type HasCreationTime interface {
	GetCreatedAt() time.Time
	SetCreatedAt(time.Time)
}

// CreationAudited is implemented by entities that record which actor created
// them. An empty string means no actor has been recorded.
type CreationAudited interface {
	GetCreatedBy() string
	SetCreatedBy(string)
}

// HasModificationTime is implemented by entities that record when they were
// last updated. A nil pointer means the entity has never been updated.
type HasModificationTime interface {
	GetUpdatedAt() *time.Time
	SetUpdatedAt(*time.Time)
}

// ModificationAudited is implemented by entities that record which actor
// last updated them.
type ModificationAudited interface {
	GetUpdatedBy() string
	SetUpdatedBy(string)
}

// HasDeletionTime is implemented by entities that record when they were
// deleted. Unlike the creation and modification stamps, the deletion time is
// refreshed on every delete.
type HasDeletionTime interface {
	GetDeletedAt() *time.Time
	SetDeletedAt(*time.Time)
}

// DeletionAudited is implemented by entities that record which actor deleted
// them. The actor is overwritten on every delete.
type DeletionAudited interface {
	GetDeletedBy() string
	SetDeletedBy(string)
}

// SoftDeletable is implemented by entities whose rows are never physically
// removed. Deleting such an entity through the unit of work flips its flag
// instead, and queries against its type exclude flagged rows by default.
type SoftDeletable interface {
	IsDeleted() bool
	MarkDeleted()
}
