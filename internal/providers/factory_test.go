package providers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathPhraseNative(t *testing.T) {
	factory := NewFactory(context.Background())
	abs, err := filepath.Abs("some/dir")
	require.NoError(t, err)

	ap, err := factory.ParsePathPhrase("some/dir")
	require.NoError(t, err)
	assert.Equal(t, "native", ap.Device.Kind())
	assert.Equal(t, abs, ap.DisplayPath())
}

func TestParsePathPhraseMemoryVolumesAreShared(t *testing.T) {
	factory := NewFactory(context.Background())

	a1, err := factory.ParsePathPhrase("mem:vol/a")
	require.NoError(t, err)
	a2, err := factory.ParsePathPhrase("mem:vol/b/c")
	require.NoError(t, err)
	other, err := factory.ParsePathPhrase("mem:other/x")
	require.NoError(t, err)

	assert.Equal(t, "memory", a1.Device.Kind())
	assert.True(t, a1.Device.EqualTo(a2.Device))
	assert.False(t, a1.Device.EqualTo(other.Device))
	assert.Equal(t, "a", string(a1.Path))
	assert.Equal(t, "b/c", string(a2.Path))
}

func TestParsePathPhraseEmpty(t *testing.T) {
	factory := NewFactory(context.Background())
	_, err := factory.ParsePathPhrase("   ")
	assert.Error(t, err)
}

func TestNativeDevicesAreEquivalent(t *testing.T) {
	factory := NewFactory(context.Background())
	a, err := factory.ParsePathPhrase("/tmp/a")
	require.NoError(t, err)
	b, err := factory.ParsePathPhrase("/tmp/b")
	require.NoError(t, err)
	assert.True(t, a.Device.EqualTo(b.Device))
}
