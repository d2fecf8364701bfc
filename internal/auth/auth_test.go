package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	require.NotEqual(t, "pw1", hash)

	require.NoError(t, VerifyPassword(hash, "pw1"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	token, err := tokens.Issue(42, "alice")
	require.NoError(t, err)

	identity, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
}

func TestTokenTamperRejected(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	token, err := tokens.Issue(42, "alice")
	require.NoError(t, err)

	_, err = tokens.Validate(token + "x")
	assert.Error(t, err)

	// A token signed with a different secret is just as invalid.
	other := NewTokenService("other-secret", time.Hour)
	forged, err := other.Issue(42, "alice")
	require.NoError(t, err)
	_, err = tokens.Validate(forged)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokenService("test-secret", -time.Minute)

	token, err := tokens.Issue(1, "bob")
	require.NoError(t, err)

	_, err = tokens.Validate(token)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	tokens := NewTokenService("test-secret", time.Hour)

	var got Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		got = identity
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireAuth(tokens)(next)

	t.Run("no cookie redirects to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("invalid cookie redirects to login", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
	})

	t.Run("valid cookie binds identity", func(t *testing.T) {
		token, err := tokens.Issue(7, "carol")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, Identity{UserID: 7, Username: "carol"}, got)
	})
}
