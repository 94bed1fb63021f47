package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFullAuditedCoversEveryCapability(t *testing.T) {
	var e FullAudited
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, e.GetCreatedAt().IsZero())
	e.SetCreatedAt(now)
	assert.Equal(t, now, e.GetCreatedAt())

	e.SetCreatedBy("u1")
	assert.Equal(t, "u1", e.GetCreatedBy())

	assert.Nil(t, e.GetUpdatedAt())
	e.SetUpdatedAt(&now)
	assert.Equal(t, now, *e.GetUpdatedAt())
	e.SetUpdatedBy("u2")
	assert.Equal(t, "u2", e.GetUpdatedBy())

	assert.Nil(t, e.GetDeletedAt())
	e.SetDeletedAt(&now)
	assert.Equal(t, now, *e.GetDeletedAt())
	e.SetDeletedBy("u3")
	assert.Equal(t, "u3", e.GetDeletedBy())

	assert.False(t, e.IsDeleted())
	e.MarkDeleted()
	assert.True(t, e.IsDeleted())
}
