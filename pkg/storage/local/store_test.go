package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadWritesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	u, err := store.Upload(context.Background(), "users/profile/a.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/users/profile/a.png", u)

	b, err := os.ReadFile(filepath.Join(dir, "users", "profile", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
	require.NoError(t, store.Ping(context.Background()))
}

func TestUploadStaysInsideRoot(t *testing.T) {
	dir := t.TempDir()
	store, err := New(filepath.Join(dir, "root"), "http://x")
	require.NoError(t, err)

	u, err := store.Upload(context.Background(), "../../escape.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://x/escape.png", u)
	_, err = os.Stat(filepath.Join(dir, "root", "escape.png"))
	assert.NoError(t, err)

	_, err = store.Upload(context.Background(), "", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New(" ", "http://x")
	assert.Error(t, err)
}
