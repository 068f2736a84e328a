package demo

import (
	"context"
	"testing"
	"time"

	"nekocare/internal/care"
	"nekocare/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestDefaultSeedParses(t *testing.T) {
	s := Default()
	assert.Equal(t, "demo", s.User.Username)
	assert.Len(t, s.Cats, 2)
	assert.NotEmpty(t, s.TaskDefs)
	require.NotEmpty(t, s.Themes)
	assert.Equal(t, "default", s.Themes[0].ID)
}

func TestParseRejectsIncompleteSeed(t *testing.T) {
	_, err := Parse([]byte("household: x\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("household: [\n"))
	assert.Error(t, err)
}

func TestApplyToMemory(t *testing.T) {
	ctx := context.Background()
	store := repo.NewMemoryStore()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	res, err := Default().Apply(ctx, Memory(store), now)
	require.NoError(t, err)
	require.Len(t, res.Cats, 2)

	u, err := store.Users().GetByUsername(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, res.Household.ID, u.HouseholdID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("demo")))

	snap, err := care.LoadSnapshot(ctx, store, res.Household.ID, now)
	require.NoError(t, err)
	assert.Len(t, snap.TaskDefs, 5)
	assert.Len(t, snap.NoticeDefs, 4)
	assert.Len(t, snap.Inventory, 3)
	assert.Equal(t, 40, snap.Settings.Points)

	themes, err := store.ListThemes(ctx)
	require.NoError(t, err)
	assert.Len(t, themes, 4)
}
