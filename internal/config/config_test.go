package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("auth-service")
	require.NoError(t, err)

	assert.Equal(t, "auth-service", cfg.App.Name)
	assert.Equal(t, "jwt_token", cfg.Auth.CookieName)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.True(t, cfg.Auth.RefreshTokenTTL() > cfg.Auth.AccessTokenTTL())
}

func TestSecretKeyDecoding(t *testing.T) {
	raw := []byte("a-signing-key-with-arbitrary-bytes")
	auth := AuthConfig{JWTSecretB64: base64.StdEncoding.EncodeToString(raw)}

	key, err := auth.SecretKey()
	require.NoError(t, err)
	assert.Equal(t, raw, key)
}

func TestSecretKeyRejectsBadInput(t *testing.T) {
	_, err := AuthConfig{JWTSecretB64: "%%% not base64 %%%"}.SecretKey()
	assert.Error(t, err)

	_, err = AuthConfig{JWTSecretB64: ""}.SecretKey()
	assert.Error(t, err)
}

func TestLoadRejectsBadSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET_B64", "%%%")

	_, err := Load("auth-service")
	assert.Error(t, err)
}
