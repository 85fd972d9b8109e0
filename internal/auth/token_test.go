package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrincipal() *Principal {
	return &Principal{
		UserID:   "665f1b2a9c3d4e5f6a7b8c9d",
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		GasID:    "665f1b2a9c3d4e5f6a7b8c9e",
		Roles:    "INTERVIEWER,ADMIN",
	}
}

func TestNewTokens(t *testing.T) {
	_, err := NewTokens("", time.Hour)
	assert.ErrorContains(t, err, "secret is required")

	_, err = NewTokens("s3cret", 0)
	assert.ErrorContains(t, err, "ttl must be positive")
}

func TestIssueAndVerify(t *testing.T) {
	tokens, err := NewTokens("s3cret", 7*24*time.Hour)
	require.NoError(t, err)

	signed, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	got, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, testPrincipal(), got)
}

func TestVerifyExpired(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	// Issue in the past, verify in the present.
	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	signed, err := tokens.Issue(testPrincipal())
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokens("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokens("secret-b", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(testPrincipal())
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyGarbage(t *testing.T) {
	tokens, err := NewTokens("s3cret", time.Hour)
	require.NoError(t, err)

	_, err = tokens.Verify("not.a.token")
	assert.Error(t, err)
}

func TestHasRole(t *testing.T) {
	p := &Principal{Roles: " Admin , interviewer"}
	assert.True(t, p.HasRole("ADMIN"))
	assert.True(t, p.HasRole("Interviewer", "host"))
	assert.False(t, p.HasRole("host"))
	assert.False(t, (&Principal{}).HasRole("admin"))
}
