package blob

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hungrypanda/internal/core/config"
)

func TestSanitizeKey(t *testing.T) {
	ok, err := sanitizeKey(`images\1700dal.png`)
	require.NoError(t, err)
	assert.Equal(t, "images/1700dal.png", ok)

	for _, bad := range []string{"", " ", "/etc/passwd", "../secret", "images/../../x", "."} {
		_, err := sanitizeKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestFSPutAndRelease(t *testing.T) {
	root := t.TempDir()
	s, err := NewFS(root)
	require.NoError(t, err)

	ref, err := s.Put(context.Background(), "images/1dal.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "images/1dal.png", ref)

	b, err := os.ReadFile(filepath.Join(root, "images", "1dal.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(b))

	require.NoError(t, s.Release(context.Background(), ref))
	_, err = os.Stat(filepath.Join(root, "images", "1dal.png"))
	assert.True(t, os.IsNotExist(err))

	// 幂等
	assert.NoError(t, s.Release(context.Background(), ref))
	assert.NoError(t, s.Release(context.Background(), "https://cdn.example.com/a.png/../b"))
}

func TestFSPutRejectsTraversal(t *testing.T) {
	s, err := NewFS(t.TempDir())
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "../x.png", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	ref, err := m.Put(context.Background(), "images/a.png", strings.NewReader("a"), "")
	require.NoError(t, err)
	assert.True(t, m.Has(ref))

	require.NoError(t, m.Release(context.Background(), ref))
	require.NoError(t, m.Release(context.Background(), ref))
	assert.False(t, m.Has(ref))
	assert.Equal(t, []string{ref, ref}, m.Released())
}

func TestOpenDrivers(t *testing.T) {
	s, err := Open(context.Background(), config.Storage{Driver: "fs", Root: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, s.Driver())

	s, err = Open(context.Background(), config.Storage{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, s.Driver())

	_, err = Open(context.Background(), config.Storage{Driver: "s3"})
	assert.Error(t, err)

	_, err = Open(context.Background(), config.Storage{Driver: "ftp"})
	assert.Error(t, err)
}

type s3Call struct {
	method string
	path   string
	body   string
}

func fakeS3(t *testing.T) (*httptest.Server, func() []s3Call) {
	var mu sync.Mutex
	var calls []s3Call
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, s3Call{method: r.Method, path: r.URL.Path, body: string(b)})
		mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(ts.Close)
	return ts, func() []s3Call {
		mu.Lock()
		defer mu.Unlock()
		return append([]s3Call(nil), calls...)
	}
}

func TestS3PutAndRelease(t *testing.T) {
	ts, calls := fakeS3(t)
	s, err := NewS3(context.Background(), config.S3{
		Bucket:          "panda",
		Region:          "us-east-1",
		Endpoint:        ts.URL,
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)

	ref, err := s.Put(context.Background(), "images/1dal.png", bytes.NewReader([]byte("png")), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "images/1dal.png", ref)
	require.NoError(t, s.Release(context.Background(), ref))

	got := calls()
	require.Len(t, got, 2)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/panda/images/1dal.png", got[0].path)
	assert.Equal(t, http.MethodDelete, got[1].method)
	assert.Equal(t, "/panda/images/1dal.png", got[1].path)
}
