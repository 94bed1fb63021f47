package db

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is empty")
}

func TestConnectFromEnvWithoutDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	var buf bytes.Buffer
	gdb, cleanup := ConnectFromEnv(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	assert.Nil(t, gdb)
	require.NotNil(t, cleanup)
	cleanup()
	assert.Contains(t, buf.String(), "POSTGRES_DSN not set")
}
