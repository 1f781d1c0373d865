package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"hungrypanda/internal/core/config"
)

type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// ImagePrefix 所有上传图片的 key 前缀，fs 驱动下即 /images 静态目录
const ImagePrefix = "images/"

var ErrInvalidKey = errors.New("invalid blob key")

// Store 图片存储。Put 返回写入记录里的引用；Release 幂等，不存在的对象直接成功
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Release(ctx context.Context, ref string) error
}

// Open 按配置创建驱动
func Open(ctx context.Context, c config.Storage) (Store, error) {
	switch Driver(strings.ToLower(c.Driver)) {
	case DriverFilesystem, "":
		return NewFS(c.Root)
	case DriverS3:
		return NewS3(ctx, c.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", c.Driver)
	}
}

// sanitizeKey 禁止绝对路径和 .. 穿越
func sanitizeKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
