package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/imageboard/internal/repository"
)

func TestStore(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Read(ctx, "doc")
	assert.ErrorIs(t, err, repository.ErrNoDocument)

	data := []byte("[1]")
	require.NoError(t, store.Write(ctx, "doc", data))
	data[1] = '2'

	got, err := store.Read(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(got), "the store keeps its own copy")

	got[1] = '3'
	again, err := store.Read(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(again))
}
