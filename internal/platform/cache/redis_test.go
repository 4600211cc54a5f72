package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsAcceptsAddressAndURL(t *testing.T) {
	opts, err := Options("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, clientName, opts.ClientName)

	opts, err = Options("redis://:secret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = Options(" ")
	assert.Error(t, err)
	_, err = Options("redis://host:6379/notadb")
	assert.Error(t, err)
}

func TestQueueOptionsCarriesCredentials(t *testing.T) {
	opts, err := QueueOptions("redis://worker:pw@queue:6379/1")
	require.NoError(t, err)
	assert.Equal(t, "queue:6379", opts.Addr)
	assert.Equal(t, "worker", opts.Username)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestNewAndCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := New(ctx, mr.Addr())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, Check(ctx, client))

	mr.Close()
	assert.Equal(t, StatusUnavailable, Check(ctx, client))
	_ = client.Close()

	assert.Equal(t, StatusDisabled, Check(ctx, nil))
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr)
	assert.ErrorContains(t, err, "platform/cache: ping")
}
