package security

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionCookieSameSiteLax(t *testing.T) {
	policy := CookiePolicy{Name: "session", MaxAge: time.Hour}

	c := policy.SessionCookie("tok")
	require.Equal(t, "session", c.Name)
	require.Equal(t, "tok", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.False(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)
}

func TestSessionCookieCrossOriginForcesSecure(t *testing.T) {
	policy := CookiePolicy{Name: "session", CrossOrigin: true, MaxAge: time.Hour}

	c := policy.SessionCookie("tok")
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestClearCookie(t *testing.T) {
	policy := CookiePolicy{Name: "session", MaxAge: time.Hour}

	c := policy.ClearCookie()
	require.Equal(t, "session", c.Name)
	require.Empty(t, c.Value)
	require.Equal(t, -1, c.MaxAge)
}

func TestGenerateOpaqueTokenIsURLSafeAndUnique(t *testing.T) {
	first, err := GenerateOpaqueToken()
	require.NoError(t, err)
	second, err := GenerateOpaqueToken()
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Len(t, first, 43) // 32 bytes, unpadded base64url
	require.NotContains(t, first, "+")
	require.NotContains(t, first, "/")
	require.NotContains(t, first, "=")
}
