package instance

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestEndpoint_PublishAndRead verifies the address round trip between two guards.
func TestEndpoint_PublishAndRead(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	name := uniqueName(t)

	holder := NewGuard(name, WithDir("/cache/hourly-chime"), WithFs(fs))
	client := NewGuard(name, WithDir("/cache/hourly-chime"), WithFs(fs))

	_, err := client.Endpoint()
	require.ErrorIs(t, err, ErrNoEndpoint)

	require.NoError(t, holder.Publish("127.0.0.1:40123"))

	address, err := client.Endpoint()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:40123", address)

	require.NoError(t, holder.Unpublish())
	require.NoError(t, holder.Unpublish())

	_, err = client.Endpoint()
	require.ErrorIs(t, err, ErrNoEndpoint)
}

// TestEndpoint_BlankFile treats an empty endpoint file as unpublished.
func TestEndpoint_BlankFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	guard := NewGuard("blank", WithDir("/cache"), WithFs(fs))

	require.NoError(t, afero.WriteFile(fs, "/cache/blank.addr", []byte("\n"), 0o600))

	_, err := guard.Endpoint()
	require.ErrorIs(t, err, ErrNoEndpoint)
}
