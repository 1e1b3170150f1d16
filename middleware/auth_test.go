package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	req := require.New(t)
	auth := NewAuth("secret", time.Hour)

	token, err := auth.GenerateToken("user42")
	req.NoError(err)

	claims, err := auth.VerifyToken(token)
	req.NoError(err)
	req.Equal("user42", claims.UserID)
}

func TestExpiredTokenRejected(t *testing.T) {
	req := require.New(t)
	auth := NewAuth("secret", -time.Minute)

	token, err := auth.GenerateToken("user42")
	req.NoError(err)

	_, err = auth.VerifyToken(token)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestWrongSecretRejected(t *testing.T) {
	req := require.New(t)

	token, err := NewAuth("secret-a", time.Hour).GenerateToken("user42")
	req.NoError(err)

	_, err = NewAuth("secret-b", time.Hour).VerifyToken(token)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokenFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{name: "bearer header", header: "Bearer abc", want: "abc"},
		{name: "query fallback", query: "xyz", want: "xyz"},
		{name: "malformed header", header: "abc", want: ""},
		{name: "wrong scheme", header: "Basic abc", want: ""},
		{name: "nothing", want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			target := "/ws"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			c.Request = httptest.NewRequest("GET", target, nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}

			require.Equal(t, tc.want, TokenFromRequest(c))
		})
	}
}

func TestRateLimiterBlocksAboveLimit(t *testing.T) {
	req := require.New(t)
	rl := NewIPRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		req.True(rl.Allow("10.0.0.1"))
	}
	req.False(rl.Allow("10.0.0.1"))

	// Other clients are unaffected.
	req.True(rl.Allow("10.0.0.2"))
}
