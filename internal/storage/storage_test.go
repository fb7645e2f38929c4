package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileHeader builds a *multipart.FileHeader the way an HTTP handler would
// receive one.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := multipart.NewReader(buf, w.Boundary())
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := New(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveCoverRenamesAndPreservesExtension(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	payload := []byte("not really a png")
	name, err := store.SaveCover(fileHeader(t, "photo.png", payload))
	require.NoError(t, err)

	assert.NotEqual(t, "photo.png", name)
	assert.Equal(t, ".png", filepath.Ext(name))

	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestSaveCoverWithoutExtension(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	name, err := store.SaveCover(fileHeader(t, "noext", []byte("data")))
	require.NoError(t, err)
	assert.Empty(t, filepath.Ext(name))
}
