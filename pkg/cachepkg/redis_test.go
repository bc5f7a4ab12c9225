package cachepkg

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Setup(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)

	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

func TestSetupInvalidURL(t *testing.T) {
	_, err := Setup(context.Background(), "http://localhost")
	require.Error(t, err)
}

func TestSetupUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Setup(context.Background(), "redis://"+addr)
	require.Error(t, err)
}
