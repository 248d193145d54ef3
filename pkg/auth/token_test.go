package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Coco120903/BananaMeow-sub000/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "bananameow"}

func TestMintAndParseAccessToken(t *testing.T) {
	now := time.Now().UTC()
	token, err := MintAccessToken(testJWT, now, 30*time.Minute, "ops@bananameow.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWT, token)
	require.NoError(t, err)
	require.Equal(t, "ops@bananameow.com", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
	require.Equal(t, "bananameow", claims.Issuer)
	require.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestParseAccessTokenRejects(t *testing.T) {
	now := time.Now().UTC()

	token, err := MintAccessToken(config.JWTConfig{Secret: "other", Issuer: "bananameow"}, now, time.Minute, "x", RoleAdmin)
	require.NoError(t, err)
	_, err = ParseAccessToken(testJWT, token)
	require.Error(t, err, "wrong secret")

	token, err = MintAccessToken(testJWT, now.Add(-2*time.Hour), time.Hour, "x", RoleAdmin)
	require.NoError(t, err)
	_, err = ParseAccessToken(testJWT, token)
	require.Error(t, err, "expired")

	token, err = MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "someone-else"}, now, time.Minute, "x", RoleAdmin)
	require.NoError(t, err)
	_, err = ParseAccessToken(testJWT, token)
	require.Error(t, err, "issuer")

	_, err = ParseAccessToken(config.JWTConfig{}, token)
	require.Error(t, err)
	_, err = MintAccessToken(testJWT, now, 0, "x", RoleAdmin)
	require.Error(t, err)
}
