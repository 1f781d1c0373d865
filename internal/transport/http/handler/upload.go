package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/blob"
)

const (
	imageField       = "image"
	msgImageFormat   = "Only .png, .jpg and .jpeg format allowed!"
	msgImageTooLarge = "The uploaded image is too large!"
)

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Uploader 单文件字段 image，先落存储再校验表单；校验失败由调用方 Discard
type Uploader struct {
	store blob.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewUploader(store blob.Store, log *zap.Logger) *Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Uploader{store: store, log: log, now: time.Now}
}

// Save 没有上传文件时返回空引用
func (u *Uploader) Save(c *gin.Context) (string, error) {
	fh, err := c.FormFile(imageField)
	switch {
	case err == nil:
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return "", nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", apperr.BadRequest(msgImageTooLarge)
		}
		return "", apperr.BadRequest(msgImageFormat)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	ct, ok := imageTypes[ext]
	if !ok {
		return "", apperr.Validation(msgImageFormat)
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Internal("", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s%d%s", blob.ImagePrefix, u.now().UnixMilli(), safeName(fh.Filename))
	ref, err := u.store.Put(c.Request.Context(), key, f, ct)
	if err != nil {
		return "", apperr.Internal("", err)
	}
	return ref, nil
}

// Discard 请求失败时释放本次上传的文件
func (u *Uploader) Discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := u.store.Release(ctx, ref); err != nil {
		u.log.Warn("discard upload failed", zap.String("ref", ref), zap.Error(err))
	}
}

// safeName 只保留文件名本身，空白和路径分隔符替换为 -
func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "-")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ' ' || r < 0x20:
			return '-'
		default:
			return r
		}
	}, name)
}
