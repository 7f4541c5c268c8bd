package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/trainer/internal/core"
)

type fakeBackend struct {
	calls       int
	err         error
	hadDeadline bool
}

func (f *fakeBackend) Reset(ctx context.Context) error {
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	return f.err
}

func (f *fakeBackend) BaseURL() string { return "http://backend/api" }

type failingAudit struct{ core.AuditStore }

func (failingAudit) Record(context.Context, core.AuditEntry) error { return errors.New("disk full") }

func TestResetter(t *testing.T) {
	t.Run("Should reset and record a critical audit entry", func(t *testing.T) {
		backend := &fakeBackend{}
		audit := core.NewMemoryAuditStore(10)
		ctx := core.ContextWithIPAddress(context.Background(), "198.51.100.1")

		require.NoError(t, NewResetter(backend, audit, nil).Reset(ctx))
		assert.Equal(t, 1, backend.calls)
		assert.True(t, backend.hadDeadline, "reset runs with a timeout")

		entries, err := audit.Recent(context.Background(), core.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, core.ActionReset, entries[0].Action)
		assert.Equal(t, core.SeverityCritical, entries[0].Severity)
		assert.Equal(t, "198.51.100.1", entries[0].IPAddress)
	})

	t.Run("Should keep the caller's deadline", func(t *testing.T) {
		backend := &fakeBackend{}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		require.NoError(t, NewResetter(backend, nil, nil).Reset(ctx))
		assert.True(t, backend.hadDeadline)
	})

	t.Run("Should not audit a failed reset", func(t *testing.T) {
		backend := &fakeBackend{err: core.ErrRequestFailed}
		audit := core.NewMemoryAuditStore(10)

		err := NewResetter(backend, audit, nil).Reset(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrRequestFailed)

		entries, _ := audit.Recent(context.Background(), core.AuditFilter{})
		assert.Empty(t, entries)
	})

	t.Run("Should succeed when the audit store fails", func(t *testing.T) {
		backend := &fakeBackend{}
		assert.NoError(t, NewResetter(backend, failingAudit{}, nil).Reset(context.Background()))
	})
}
