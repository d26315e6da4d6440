package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	in := []byte("token")
	require.NoError(t, s.Save(ctx, in))
	in[0] = 'X'

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token", string(out))

	out[0] = 'Y'
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token", string(again))

	assert.Equal(t, 1, s.Saves())

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
