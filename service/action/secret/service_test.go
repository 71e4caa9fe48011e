package secret

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_JWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()

	hmacKey := base64.StdEncoding.EncodeToString([]byte("atom-jwt-test-key-0123456789abcdef"))
	keyURL := "mem://localhost/secret/jwt/hmac.txt"
	require.NoError(t, fs.Upload(ctx, keyURL, 0644, strings.NewReader(hmacKey)))

	service := New()

	var signed SignJWTOutput
	err := service.SignJWT(ctx, &SignJWTInput{
		Claims:     map[string]interface{}{"email": "ops@atom.dev", "scope": "runs"},
		HMACKeyURL: keyURL,
	}, &signed)
	require.NoError(t, err)
	require.True(t, signed.Success)
	require.NotEmpty(t, signed.Token)

	var verified VerifyJWTOutput
	err = service.VerifyJWT(ctx, &VerifyJWTInput{
		Token:      signed.Token,
		HMACKeyURL: keyURL,
	}, &verified)
	require.NoError(t, err)
	assert.True(t, verified.Valid)
	require.NotNil(t, verified.Claims)
	assert.Equal(t, "ops@atom.dev", verified.Claims.Email)

	t.Run("tampered token is invalid", func(t *testing.T) {
		var output VerifyJWTOutput
		err := service.VerifyJWT(ctx, &VerifyJWTInput{
			Token:      signed.Token + "x",
			HMACKeyURL: keyURL,
		}, &output)
		require.NoError(t, err)
		assert.False(t, output.Valid)
		assert.Nil(t, output.Claims)
	})

	t.Run("missing key", func(t *testing.T) {
		var output VerifyJWTOutput
		err := service.VerifyJWT(ctx, &VerifyJWTInput{Token: signed.Token}, &output)
		assert.Error(t, err)
	})
}

func TestService_SignJWTValidation(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	keyURL := "mem://localhost/secret/jwt/validation-hmac.txt"
	require.NoError(t, fs.Upload(ctx, keyURL, 0644, strings.NewReader(base64.StdEncoding.EncodeToString([]byte("validation-key")))))

	service := New()

	var output SignJWTOutput
	err := service.SignJWT(ctx, &SignJWTInput{Claims: map[string]interface{}{"email": "ops@atom.dev"}}, &output)
	assert.Error(t, err, "signing requires a key URL")

	err = service.SignJWT(ctx, &SignJWTInput{HMACKeyURL: keyURL}, &output)
	assert.Error(t, err, "signing requires claims")
}
