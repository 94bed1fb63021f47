//go:build integration

package uow

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"auditkit/audit"
	"auditkit/bus"
	platformdb "auditkit/db"
	"auditkit/filter"
	"auditkit/identity"
)

func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	if dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN")); dsn != "" {
		gdb, err := platformdb.Connect(ctx, dsn)
		require.NoError(t, err)
		return gdb, func() {
			sqlDB, _ := gdb.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}
	}

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("auditkit_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := platformdb.Connect(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return gdb, cleanup
}

func TestPostgresAuditLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	gdb, cleanup := setupPostgres(t)
	defer cleanup()

	require.NoError(t, gdb.Use(filter.NewSoftDeleteFilter(&article{})))
	require.NoError(t, gdb.AutoMigrate(&article{}))
	ctx := context.Background()

	b := bus.NewMemory()
	var published []int
	b.Subscribe("articles.published", func(_ context.Context, e audit.Event) error {
		published = append(published, e.(articlePublished).Seq)
		return nil
	})

	a := article{ID: 1, Title: "draft"}
	a.Record(articlePublished{BaseEvent: audit.NewBaseEvent(), Seq: 1})
	insert := New(gdb, WithIdentity(identity.Static("u1")), WithBus(b))
	insert.RegisterNew(&a)
	affected, err := insert.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.Equal(t, []int{1}, published)
	assert.Empty(t, a.Events())

	var loaded article
	require.NoError(t, gdb.First(&loaded, 1).Error)
	assert.Equal(t, "u1", loaded.GetCreatedBy())
	assert.False(t, loaded.GetCreatedAt().IsZero())

	loaded.Title = "published"
	update := New(gdb, WithIdentity(identity.Static("u2")))
	update.RegisterDirty(&loaded)
	_, err = update.Save(ctx)
	require.NoError(t, err)

	require.NoError(t, gdb.First(&loaded, 1).Error)
	assert.Equal(t, "u2", loaded.GetUpdatedBy())
	assert.Equal(t, "u1", loaded.GetCreatedBy())

	remove := New(gdb, WithIdentity(identity.Static("u3")))
	remove.RegisterRemoved(&loaded)
	_, err = remove.Save(ctx)
	require.NoError(t, err)

	var hidden []article
	require.NoError(t, gdb.Find(&hidden).Error)
	assert.Empty(t, hidden)

	var flagged article
	require.NoError(t, gdb.Scopes(filter.IncludeDeleted).First(&flagged, 1).Error)
	assert.True(t, flagged.IsDeleted())
	assert.Equal(t, "u3", flagged.GetDeletedBy())
}
