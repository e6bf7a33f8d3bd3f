package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"cv.pdf":                "cv.pdf",
		"My Resume (final).pdf": "My_Resume_final.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\jane\cv.docx`: "cv.docx",
		"ünïcödé.png":           "ncd.png",
		"":                      "file",
		"...":                   "file",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeName(in), in)
	}
	long := strings.Repeat("a", 300) + ".pdf"
	got := SanitizeName(long)
	assert.Len(t, got, maxNameLen)
	assert.True(t, strings.HasSuffix(got, ".pdf"))
}

func TestObjectNameIsUnique(t *testing.T) {
	a, b := ObjectName("cv.pdf"), ObjectName("cv.pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-cv.pdf"))
	assert.Len(t, a, 36+len("-cv.pdf"))
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage()

	id, err := m.Put(ctx, "abc-cv.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "abc-cv.pdf", id)
	assert.Equal(t, 1, m.Len())

	rc, obj, err := m.Get(ctx, id)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, &Object{ID: id, Name: id, ContentType: "application/pdf", Size: 8}, obj)

	require.NoError(t, m.Delete(ctx, id))
	_, _, err = m.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, id), ErrNotFound)
}

func TestNewBackends(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Backend: BackendMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = New(ctx, Config{Backend: BackendNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = New(ctx, Config{Backend: BackendGridFS}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: BackendMinIO}, nil)
	assert.Error(t, err)

	_, err = New(ctx, Config{Backend: "s3"}, nil)
	assert.Error(t, err)
}
