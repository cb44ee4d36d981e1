package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	fileID := uuid.New()
	content := []byte("dagvaarding concept")

	path, err := store.Upload(ctx, fileID, "dagvaarding concept.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Contains(t, path, fileID.String())
	// spaces are sanitized out of the stored name
	assert.NotContains(t, path, " ")

	reader, err := store.Download(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, store.Delete(ctx, path))
	_, err = store.Download(ctx, path)
	assert.Error(t, err)
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(context.Background(), "ab/onbekend.pdf"))
}

func TestGetContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", getContentType("stuk.pdf"))
	assert.Equal(t, "message/rfc822", getContentType("Mail.EML"))
	assert.Equal(t, "image/jpeg", getContentType("foto.JPG"))
	assert.Equal(t, "application/octet-stream", getContentType("onbekend.bin"))
}

func TestGenerateStoragePathSanitizes(t *testing.T) {
	fileID := uuid.New()
	path := generateStoragePath(fileID, `raar/pad\met spaties.txt`)
	assert.True(t, strings.HasPrefix(path, fileID.String()[:2]+"/"))
	assert.NotContains(t, path[3:], "/")
	assert.NotContains(t, path, `\`)
	assert.NotContains(t, path, " ")
}
