package uow

import (
	"time"

	"auditkit/audit"
)

// stampForKind mutates the entity's audit fields for the given transition.
// Creation and modification stamps respect values already set by the caller;
// deletion stamps always refresh, since a delete is a one-shot terminal
// event.
func stampForKind(entity any, kind Kind, now time.Time, actor string) {
	switch kind {
	case KindInsert:
		if c, ok := entity.(audit.HasCreationTime); ok && c.GetCreatedAt().IsZero() {
			c.SetCreatedAt(now)
		}
		if c, ok := entity.(audit.CreationAudited); ok && c.GetCreatedBy() == "" {
			c.SetCreatedBy(actor)
		}
	case KindUpdate:
		if c, ok := entity.(audit.HasModificationTime); ok && c.GetUpdatedAt() == nil {
			t := now
			c.SetUpdatedAt(&t)
		}
		if c, ok := entity.(audit.ModificationAudited); ok && c.GetUpdatedBy() == "" {
			c.SetUpdatedBy(actor)
		}
	case KindDelete:
		if c, ok := entity.(audit.HasDeletionTime); ok {
			t := now
			c.SetDeletedAt(&t)
		}
		if c, ok := entity.(audit.DeletionAudited); ok {
			c.SetDeletedBy(actor)
		}
	}
}
