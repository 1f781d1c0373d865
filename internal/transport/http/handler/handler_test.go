package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/blob"
)

func TestSafeName(t *testing.T) {
	assert.Equal(t, "dal-makhani.png", safeName("dal makhani.png"))
	assert.Equal(t, "passwd", safeName("../../etc/passwd"))
	assert.Equal(t, "a-b.jpg", safeName("a..b.jpg"))
	assert.Equal(t, "x.png", safeName(`C:\tmp\x.png`))
}

func TestParseSocial(t *testing.T) {
	links, err := parseSocial("")
	require.NoError(t, err)
	assert.Empty(t, links)

	links, err = parseSocial(`[{"name":"instagram","value":"@dal","hasValue":true}]`)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "@dal", links[0].Value)

	_, err = parseSocial("{nope")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func uploadCtx(t *testing.T, filename string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("png"))
	}
	require.NoError(t, mw.WriteField("name", "dal"))
	require.NoError(t, mw.Close())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", mw.FormDataContentType())
	return c
}

func TestUploaderSave(t *testing.T) {
	mem := blob.NewMemory()
	up := NewUploader(mem, nil)

	ref, err := up.Save(uploadCtx(t, "Dal Tadka.PNG"))
	require.NoError(t, err)
	assert.Regexp(t, `^images/\d+Dal-Tadka\.PNG$`, ref)
	assert.True(t, mem.Has(ref))

	up.Discard(uploadCtx(t, "").Request.Context(), ref)
	assert.False(t, mem.Has(ref))

	ref, err = up.Save(uploadCtx(t, ""))
	require.NoError(t, err)
	assert.Empty(t, ref)

	_, err = up.Save(uploadCtx(t, "x.gif"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	mem.FailPut = errors.New("disk full")
	_, err = up.Save(uploadCtx(t, "x.jpg"))
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}
