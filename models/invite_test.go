package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteCode(t *testing.T) {
	a, err := GenerateInviteCode()
	require.NoError(t, err)
	b, err := GenerateInviteCode()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestInviteIsValid(t *testing.T) {
	invite := Invite{ExpiresAt: time.Now().Add(time.Hour)}
	assert.True(t, invite.IsValid())

	invite.Used = true
	assert.False(t, invite.IsValid(), "burned codes stay burned")

	expired := Invite{ExpiresAt: time.Now().Add(-time.Minute)}
	assert.False(t, expired.IsValid())
}
