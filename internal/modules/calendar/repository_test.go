package calendar

import (
	"testing"

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

func TestLoad_MissingCalendarIsEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)

	events, err := repo.Load("owner-1", "acme")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSaveAndLoad_ScopedKey(t *testing.T) {
	repo, _ := newTestRepo(t)

	in := []Event{
		{ID: "e-1", Content: "launch post", Platform: "twitter", Status: StatusScheduled},
		{ID: "e-2", Content: "follow up", Platform: "twitter", Status: StatusScheduled},
	}
	require.NoError(t, repo.Save("owner-1", "acme", in))

	out, err := repo.Load("owner-1", "acme")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "e-1", out[0].ID)

	// Other owners do not see it through the scoped key
	other, err := repo.Load("owner-2", "acme")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLoad_LegacyKeyFallback(t *testing.T) {
	repo, db := newTestRepo(t)

	// Simulate a pre-scoping row written under the legacy key
	_, err := db.Exec(
		"INSERT INTO calendars (key, events, updated_at) VALUES (?, ?, ?)",
		LegacyKey("acme"), `[{"id":"legacy-1","content":"old","platform":"twitter","status":"scheduled"}]`,
		"2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)

	events, err := repo.Load("owner-1", "acme")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "legacy-1", events[0].ID)
}

func TestLoad_ScopedRowWinsOverLegacy(t *testing.T) {
	repo, db := newTestRepo(t)

	_, err := db.Exec(
		"INSERT INTO calendars (key, events, updated_at) VALUES (?, ?, ?)",
		LegacyKey("acme"), `[{"id":"legacy-1"}]`, "2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)
	require.NoError(t, repo.Save("owner-1", "acme", []Event{{ID: "scoped-1"}}))

	events, err := repo.Load("owner-1", "acme")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "scoped-1", events[0].ID)
}

func TestLoad_MalformedRowTreatedAsEmpty(t *testing.T) {
	repo, db := newTestRepo(t)

	_, err := db.Exec(
		"INSERT INTO calendars (key, events, updated_at) VALUES (?, ?, ?)",
		ScopedKey("owner-1", "acme"), `{broken`, "2024-01-01T00:00:00Z",
	)
	require.NoError(t, err)

	events, err := repo.Load("owner-1", "acme")
	require.NoError(t, err)
	assert.Empty(t, events)
}
