package audit

import "time"

// The stamp structs below are embeddable implementations of the capability
// interfaces. They carry the GORM column mapping, so embedding one into a
// model both declares the capability and maps its fields.
//
// GORM's convention-based timestamp tracking is disabled on every field; the
// unit of work owns stamping.

// CreationStamp records the first-insert time.
type CreationStamp struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (s *CreationStamp) GetCreatedAt() time.Time  { return s.CreatedAt }
func (s *CreationStamp) SetCreatedAt(t time.Time) { s.CreatedAt = t }

// CreationAudit records the first-insert time and actor.
type CreationAudit struct {
	CreationStamp
	CreatedBy string `gorm:"column:created_by"`
}

func (s *CreationAudit) GetCreatedBy() string   { return s.CreatedBy }
func (s *CreationAudit) SetCreatedBy(id string) { s.CreatedBy = id }

// ModificationStamp records the last-update time.
type ModificationStamp struct {
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (s *ModificationStamp) GetUpdatedAt() *time.Time  { return s.UpdatedAt }
func (s *ModificationStamp) SetUpdatedAt(t *time.Time) { s.UpdatedAt = t }

// ModificationAudit records the last-update time and actor.
type ModificationAudit struct {
	ModificationStamp
	UpdatedBy string `gorm:"column:updated_by"`
}

func (s *ModificationAudit) GetUpdatedBy() string   { return s.UpdatedBy }
func (s *ModificationAudit) SetUpdatedBy(id string) { s.UpdatedBy = id }

// DeletionStamp records the deletion time. The field is a plain *time.Time on
// purpose: gorm.DeletedAt would activate GORM's own soft-delete handling,
// which this package replaces.
type DeletionStamp struct {
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (s *DeletionStamp) GetDeletedAt() *time.Time  { return s.DeletedAt }
func (s *DeletionStamp) SetDeletedAt(t *time.Time) { s.DeletedAt = t }

// DeletionAudit records the deletion time and actor.
type DeletionAudit struct {
	DeletionStamp
	DeletedBy string `gorm:"column:deleted_by"`
}

func (s *DeletionAudit) GetDeletedBy() string   { return s.DeletedBy }
func (s *DeletionAudit) SetDeletedBy(id string) { s.DeletedBy = id }

// SoftDelete flags a row as deleted instead of removing it. The column name
// is fixed; the query filter looks it up by DB name when a model registers.
type SoftDelete struct {
	Deleted bool `gorm:"column:is_deleted;index"`
}

func (s *SoftDelete) IsDeleted() bool { return s.Deleted }
func (s *SoftDelete) MarkDeleted()    { s.Deleted = true }

// Audited bundles creation and modification auditing.
type Audited struct {
	CreationAudit
	ModificationAudit
}

// FullAudited bundles every stamp plus the soft-delete flag.
type FullAudited struct {
	Audited
	DeletionAudit
	SoftDelete
}

var (
	_ HasCreationTime     = (*CreationStamp)(nil)
	_ CreationAudited     = (*CreationAudit)(nil)
	_ HasModificationTime = (*ModificationStamp)(nil)
	_ ModificationAudited = (*ModificationAudit)(nil)
	_ HasDeletionTime     = (*DeletionStamp)(nil)
	_ DeletionAudited     = (*DeletionAudit)(nil)
	_ SoftDeletable       = (*SoftDelete)(nil)
	_ HasCreationTime     = (*FullAudited)(nil)
	_ CreationAudited     = (*FullAudited)(nil)
	_ HasModificationTime = (*FullAudited)(nil)
	_ ModificationAudited = (*FullAudited)(nil)
	_ HasDeletionTime     = (*FullAudited)(nil)
	_ DeletionAudited     = (*FullAudited)(nil)
	_ SoftDeletable       = (*FullAudited)(nil)
)
