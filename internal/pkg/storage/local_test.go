package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("%PDF-1.3"), "payslips/2025-03/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "payslips/2025-03/a.pdf", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(content))

	require.NoError(t, s.Delete(ctx, key))
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// deleting twice is not an error
	require.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Download(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalStorage_PathsStayInsideBase(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)

	key, err := s.Upload(ctx, strings.NewReader("x"), "../../escape.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)

	_, err = os.Stat(filepath.Join(base, "escape.txt"))
	assert.NoError(t, err)

	_, err = s.Upload(ctx, strings.NewReader("x"), "/", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
