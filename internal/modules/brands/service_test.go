package brands

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

func TestActiveBrands_StaticFallbackWhenEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	brands := svc.ActiveBrands()
	require.NotEmpty(t, brands)
	assert.Equal(t, "lantern", brands[0].ID)
}

func TestActiveBrands_ReturnsStoredBrands(t *testing.T) {
	svc, repo := newTestService(t)

	owner := "owner-1"
	handle := "acmesocial"
	require.NoError(t, repo.Upsert(Brand{
		ID:           "acme",
		DisplayName:  "Acme Corp",
		OwnerID:      &owner,
		SocialHandle: &handle,
	}))
	require.NoError(t, repo.Upsert(Brand{ID: "globex", DisplayName: "Globex"}))

	brands := svc.ActiveBrands()
	require.Len(t, brands, 2)
	assert.Equal(t, "acme", brands[0].ID)
	assert.Equal(t, "acmesocial", brands[0].Handle())
	assert.Equal(t, "globex", brands[1].Handle()) // no handle falls back to id
}

func TestResolve_CaseInsensitiveMatching(t *testing.T) {
	svc, repo := newTestService(t)

	handle := "AcmeSocial"
	require.NoError(t, repo.Upsert(Brand{ID: "acme", DisplayName: "Acme Corp", SocialHandle: &handle}))

	tests := []struct {
		name   string
		filter string
		want   string
	}{
		{"by id", "ACME", "acme"},
		{"by display name", "acme corp", "acme"},
		{"by handle", "acmesocial", "acme"},
		{"with whitespace", "  acme  ", "acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Resolve(tt.filter)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.ID)
		})
	}

	assert.Nil(t, svc.Resolve("unknown"))
	assert.Nil(t, svc.Resolve(""))
}
