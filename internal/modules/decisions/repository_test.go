package decisions

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanternhq/lantern/internal/database"
	"github.com/lanternhq/lantern/pkg/logger"
)

func newTestRepo(t *testing.T) (*Repository, *database.DB) {
	t.Helper()
	db, err := database.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	log := logger.New(logger.Config{Level: "error"})
	return NewRepository(db.Conn(), log), db
}

func TestSave_AssignsIDAndPendingStatus(t *testing.T) {
	repo, _ := newTestRepo(t)

	draft := "Big news coming"
	saved, err := repo.Save(Decision{Action: ActionCampaign, Draft: &draft}, "acme")
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "acme", saved.BrandID)
	assert.Equal(t, StatusPending, saved.Status)
	assert.False(t, saved.CreatedAt.IsZero())

	stored, err := repo.RecentForBrand("acme", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, saved.ID, stored[0].ID)
	assert.Equal(t, ActionCampaign, stored[0].Action)
	require.NotNil(t, stored[0].Draft)
	assert.Equal(t, draft, *stored[0].Draft)
}

func TestFallback_BoundedMostRecentFirst(t *testing.T) {
	repo, _ := newTestRepo(t)

	for i := 0; i < fallbackCap+10; i++ {
		_, err := repo.Save(Decision{
			ID:     fmt.Sprintf("d-%03d", i),
			Action: ActionReply,
		}, "acme")
		require.NoError(t, err)
	}

	assert.Equal(t, fallbackCap, repo.FallbackSize())

	// Most recent entry sits at the head
	repo.mu.Lock()
	head := repo.fallback[0].ID
	repo.mu.Unlock()
	assert.Equal(t, fmt.Sprintf("d-%03d", fallbackCap+9), head)
}

func TestRecent_ServesFallbackWhenDurableUnreachable(t *testing.T) {
	repo, db := newTestRepo(t)

	_, err := repo.Save(Decision{ID: "d-1", Action: ActionTrendJack}, "acme")
	require.NoError(t, err)

	// Durable reads now fail; the fallback list still serves
	require.NoError(t, db.Close())

	recent, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "d-1", recent[0].ID)
}

func TestDeleteOlderThan(t *testing.T) {
	repo, _ := newTestRepo(t)

	old := Decision{ID: "old", Action: ActionReply, CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}
	fresh := Decision{ID: "fresh", Action: ActionReply, CreatedAt: time.Now()}

	_, err := repo.Save(old, "acme")
	require.NoError(t, err)
	_, err = repo.Save(fresh, "acme")
	require.NoError(t, err)

	deleted, err := repo.DeleteOlderThan(time.Now().Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.RecentForBrand("acme", 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ID)
}

func TestActionable(t *testing.T) {
	tests := []struct {
		action ActionType
		want   bool
	}{
		{ActionNoAction, false},
		{ActionError, false},
		{ActionType(""), false},
		{ActionReply, true},
		{ActionTrendJack, true},
		{ActionCampaign, true},
		{ActionGapFill, true},
		{ActionType("FUTURE_KIND"), true}, // unknown actions stay actionable
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, Decision{Action: tt.action}.Actionable())
		})
	}
}
