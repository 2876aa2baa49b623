package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biblioenspy/biblio-service/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, expiresAt, err := auth.NewToken("alice", "STUDENT", "alice@enspy.cm", true, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Profile.Username)
	require.Equal(t, "STUDENT", claims.Profile.Role)
	require.Equal(t, "alice@enspy.cm", claims.Email)
	require.True(t, claims.Verified)
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := auth.NewToken("alice", "STUDENT", "alice@enspy.cm", true, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken(token)
	require.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := auth.ParseToken("not.a.token")
	require.Error(t, err)
}

func TestAuthContext(t *testing.T) {
	ctx := auth.SetAuthContext(context.Background(), "alice", "STUDENT", true)

	name, ok := auth.UserName(ctx)
	require.True(t, ok)
	require.Equal(t, "alice", name)

	role, ok := auth.UserRole(ctx)
	require.True(t, ok)
	require.Equal(t, "STUDENT", role)

	require.True(t, auth.IsVerified(ctx))

	_, ok = auth.UserName(context.Background())
	require.False(t, ok)
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	require.NoError(t, auth.ComparePassword(hash, "s3cret-pass"))
	require.Error(t, auth.ComparePassword(hash, "wrong"))
}
