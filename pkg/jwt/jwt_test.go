package jwt_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tribehub/notify/pkg/jwt"
)

var testNow = time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	opts = append([]jwt.Option{jwt.WithClock(func() time.Time { return testNow })}, opts...)
	svc, err := jwt.NewFromString("test-secret", opts...)
	require.NoError(t, err)
	return svc
}

func userClaims() jwt.Claims {
	return jwt.Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   "3f0b8a52-8c1e-4c55-a34d-92f1e8c0b7aa",
			Audience:  jwt.Audience{"authenticated"},
			ExpiresAt: testNow.Add(time.Hour).Unix(),
		},
		Role:  "authenticated",
		Email: "sam@tribehub.test",
	}
}

func TestService_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newService(t, jwt.WithAudience("authenticated"))
	token, err := svc.Generate(userClaims())
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.NotContains(t, token, "=")

	var parsed jwt.Claims
	require.NoError(t, svc.Parse(token, &parsed))
	assert.Equal(t, userClaims(), parsed)
}

func TestService_Parse_Rejects(t *testing.T) {
	t.Parallel()

	svc := newService(t, jwt.WithAudience("authenticated"), jwt.WithIssuer("https://auth.tribehub.test"))
	sign := func(mutate func(*jwt.Claims)) string {
		c := userClaims()
		c.Issuer = "https://auth.tribehub.test"
		mutate(&c)
		token, err := svc.Generate(c)
		require.NoError(t, err)
		return token
	}

	other, err := jwt.NewFromString("other-secret")
	require.NoError(t, err)
	forged, err := other.Generate(userClaims())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "malformed", token: "abc.def", want: jwt.ErrInvalidToken},
		{name: "wrong key", token: forged, want: jwt.ErrInvalidSignature},
		{name: "expired", token: sign(func(c *jwt.Claims) { c.ExpiresAt = testNow.Add(-time.Minute).Unix() }), want: jwt.ErrExpiredToken},
		{name: "not yet valid", token: sign(func(c *jwt.Claims) { c.NotBefore = testNow.Add(time.Minute).Unix() }), want: jwt.ErrInvalidToken},
		{name: "audience", token: sign(func(c *jwt.Claims) { c.Audience = jwt.Audience{"anon"} }), want: jwt.ErrInvalidAudience},
		{name: "issuer", token: sign(func(c *jwt.Claims) { c.Issuer = "https://evil.test" }), want: jwt.ErrInvalidIssuer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var c jwt.Claims
			assert.ErrorIs(t, svc.Parse(tt.token, &c), tt.want)
		})
	}
}

func TestService_Leeway(t *testing.T) {
	t.Parallel()

	c := userClaims()
	c.ExpiresAt = testNow.Add(-10 * time.Second).Unix()

	strict := newService(t)
	token, err := strict.Generate(c)
	require.NoError(t, err)

	var parsed jwt.Claims
	require.ErrorIs(t, strict.Parse(token, &parsed), jwt.ErrExpiredToken)
	require.NoError(t, newService(t, jwt.WithLeeway(30*time.Second)).Parse(token, &parsed))
}

func TestAudience_JSON(t *testing.T) {
	t.Parallel()

	var c jwt.StandardClaims
	require.NoError(t, json.Unmarshal([]byte(`{"aud":"authenticated"}`), &c))
	assert.Equal(t, jwt.Audience{"authenticated"}, c.Audience)

	require.NoError(t, json.Unmarshal([]byte(`{"aud":["a","b"]}`), &c))
	assert.Equal(t, jwt.Audience{"a", "b"}, c.Audience)

	require.ErrorIs(t, json.Unmarshal([]byte(`{"aud":42}`), &c), jwt.ErrInvalidClaims)

	b, err := json.Marshal(jwt.StandardClaims{Audience: jwt.Audience{"authenticated"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"aud":"authenticated"}`, string(b))
}

func TestNew_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
	_, err = jwt.NewFromConfig(jwt.Config{})
	require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}
