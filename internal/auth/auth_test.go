package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AngelCh415/creator-calc/internal/models"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	tok, err := iss.Issue("user-42", RoleAdmin)
	require.NoError(t, err)

	id, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-42", Role: RoleAdmin}, id)
	assert.True(t, id.IsAdmin())
}

func TestIssueDefaultsRole(t *testing.T) {
	iss := NewIssuer("s3cret", 0)
	tok, err := iss.Issue("u", "")
	require.NoError(t, err)
	id, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, id.Role)
	assert.False(t, id.IsAdmin())

	_, err = iss.Issue("", RoleUser)
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("s3cret", time.Hour)
	good, err := iss.Issue("u", RoleUser)
	require.NoError(t, err)

	expired := NewIssuer("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue("u", RoleUser)
	require.NoError(t, err)

	otherKey, err := NewIssuer("different", time.Hour).Issue("u", RoleUser)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":    old,
		"wrong key":  otherKey,
		"no subject": noSubject,
		"wrong alg":  hs512,
		"garbage":    "not.a.jwt",
		"tampered":   good + "x",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := iss.Parse(tok)
			assert.ErrorIs(t, err, models.ErrUnauthorized)
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u", Role: RoleUser})
	id, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u", id.UserID)
}
