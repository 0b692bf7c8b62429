package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	var got sample
	require.ErrorIs(t, GetJSON(ctx, client, "hsn:8471", &got), ErrMiss)

	require.NoError(t, SetJSON(ctx, client, "hsn:8471", sample{Code: "8471", Description: "computers"}, time.Minute))
	require.NoError(t, GetJSON(ctx, client, "hsn:8471", &got))
	require.Equal(t, "computers", got.Description)

	mr.FastForward(2 * time.Minute)
	require.ErrorIs(t, GetJSON(ctx, client, "hsn:8471", &got), ErrMiss)
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := New(context.Background(), addr)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = New(context.Background(), addr)
	require.Error(t, err)
}
