package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nekocare/internal/repo"
)

func TestUserService_RegisterAndLogin(t *testing.T) {
	store := repo.NewMemoryStore()
	svc := NewUserService(store.Users(), store, 5)
	ctx := context.Background()

	u, err := svc.Register(ctx, " mika ", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "mika", u.Username)
	assert.NotZero(t, u.HouseholdID)

	st, err := store.GetSettings(ctx, u.HouseholdID)
	require.NoError(t, err)
	assert.Equal(t, 5, st.DayStartHour)

	_, err = svc.Register(ctx, "mika", "other", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.Register(ctx, "", "x", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := svc.ValidateCredentials(ctx, "mika", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.ValidateCredentials(ctx, "mika", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.ValidateCredentials(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
