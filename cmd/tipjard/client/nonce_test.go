package client

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/sigs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userClient serves GetUser from memory and counts the calls.
type userClient struct {
	Client
	sequence int64
	known    bool
	calls    int
}

func (c *userClient) GetUser(addr weave.Address) (*UserResponse, error) {
	c.calls++
	if !c.known {
		return nil, nil
	}
	return &UserResponse{Address: addr, UserData: sigs.UserData{Sequence: c.sequence}}, nil
}

func TestNonceCountsLocally(t *testing.T) {
	users := &userClient{sequence: 7, known: true}
	n := NewNonce(users, weavetest.NewCondition().Address())

	for _, want := range []int64{7, 8, 9} {
		got, err := n.Next()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, users.calls)

	users.sequence = 20
	seq, err := n.Query()
	require.NoError(t, err)
	assert.Equal(t, int64(20), seq)
	seq, err = n.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(20), seq)
	assert.Equal(t, 2, users.calls)
}

func TestNonceOfNewAccount(t *testing.T) {
	n := NewNonce(&userClient{}, weavetest.NewCondition().Address())
	first, err := n.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), first)
	second, err := n.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1), second)
}
