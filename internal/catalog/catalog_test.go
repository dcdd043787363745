package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

const sampleDoc = `{"Food": ["Groceries", "Lunch"], "Transport": []}`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_ReturnsDocumentVerbatim(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	r := NewReader(path, 0)

	got, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, got)
}

func TestRead_DoesNotValidateContent(t *testing.T) {
	path := writeDoc(t, "not json at all")
	got, err := NewReader(path, 0).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not json at all", got)
}

func TestRead_MissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "nope.json"), 0)

	_, err := r.Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	var nf *core.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestRead_UncachedSeesChanges(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	r := NewReader(path, 0)
	ctx := context.Background()

	_, err := r.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	got, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)
	assert.Nil(t, r.Cache())
}

func TestRead_CachedWithinTTL(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	r := NewReader(path, time.Hour)
	ctx := context.Background()

	_, err := r.Read(ctx)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	got, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDoc, got)
	assert.NotNil(t, r.Cache())
}

func TestRead_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader(writeDoc(t, sampleDoc), 0).Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecode(t *testing.T) {
	r := NewReader(writeDoc(t, sampleDoc), 0)

	got, err := r.Decode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Groceries", "Lunch"}, got["Food"])
	assert.Empty(t, got["Transport"])
	assert.Len(t, got, 2)
}

func TestDecode_Malformed(t *testing.T) {
	r := NewReader(writeDoc(t, `{"Food": "not-a-list"}`), 0)
	_, err := r.Decode(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNotFound))
}
