package auth0

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClient(t *testing.T) {
	c := NewFakeClient()
	c.AddUser("token-1", &UserInfo{Sub: "auth0|abc", Email: "a@example.com", Name: "A"})

	info, err := c.GetUserInfo(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", info.Sub)

	_, err = c.GetUserInfo(context.Background(), "token-2")
	assert.ErrorIs(t, err, ErrUserInfoFailed)
}
