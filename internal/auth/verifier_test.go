package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func signToken(t *testing.T, key string, claims jwt.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(Config{SigningKey: testKey})

	token := signToken(t, testKey, sessionClaims{
		Email: "jo@example.com",
		Name:  "Jo",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	actor, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, "jo@example.com", actor.Email)
	assert.Equal(t, "Jo", actor.Name)
}

func TestVerifyExpired(t *testing.T) {
	verifier := NewVerifier(Config{SigningKey: testKey})

	token := signToken(t, testKey, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongKey(t *testing.T) {
	verifier := NewVerifier(Config{SigningKey: testKey})

	token := signToken(t, "other-key", jwt.RegisteredClaims{Subject: "user-1"})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyIssuer(t *testing.T) {
	verifier := NewVerifier(Config{SigningKey: testKey, Issuer: "statusdeck-idp"})

	good := signToken(t, testKey, jwt.RegisteredClaims{Subject: "user-1", Issuer: "statusdeck-idp"})
	_, err := verifier.Verify(context.Background(), good)
	require.NoError(t, err)

	bad := signToken(t, testKey, jwt.RegisteredClaims{Subject: "user-1", Issuer: "someone-else"})
	_, err = verifier.Verify(context.Background(), bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyNoSubject(t *testing.T) {
	verifier := NewVerifier(Config{SigningKey: testKey})

	token := signToken(t, testKey, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := verifier.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrNoSubject)
}