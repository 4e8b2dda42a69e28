package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *Repository) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error"})
	repo := NewRepository(db.Conn(), log)
	return NewService(repo, log), repo
}

func TestIsEnabled(t *testing.T) {
	svc, repo := newTestService(t)

	// No row at all: disabled
	assert.False(t, svc.IsEnabled("acme"))

	require.NoError(t, repo.Upsert(Policy{BrandID: "acme", OwnerID: "owner-1", Enabled: true}))
	assert.True(t, svc.IsEnabled("acme"))

	require.NoError(t, repo.Upsert(Policy{BrandID: "acme", OwnerID: "owner-1", Enabled: false}))
	assert.False(t, svc.IsEnabled("acme"))
}

func TestIsEnabled_FailsClosedOnStorageError(t *testing.T) {
	db, err := database.NewInMemory()
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error"})
	repo := NewRepository(db.Conn(), log)
	svc := NewService(repo, log)

	// Closing the database makes every lookup fail
	require.NoError(t, db.Close())
	assert.False(t, svc.IsEnabled("acme"))
}
