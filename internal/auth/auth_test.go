package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	id, err := s.Create(ctx, Session{UserID: 1, HouseholdID: 2})
	require.NoError(t, err)
	got, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.HouseholdID)

	now = now.Add(time.Hour)
	_, ok, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := NewMemoryStore(time.Hour)
	id, err := store.Create(context.Background(), Session{UserID: 5, HouseholdID: 9})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireSession(store), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserIDFromContext(c), "household": HouseholdIDFromContext(c)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "nope"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user":5,"household":9}`, w.Body.String())
}
