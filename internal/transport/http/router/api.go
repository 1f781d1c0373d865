package router

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hungrypanda/internal/core/auth"
	"hungrypanda/internal/core/blob"
	"hungrypanda/internal/core/config"
	"hungrypanda/internal/core/server"
	mdw "hungrypanda/internal/transport/http/middleware"
)

// Deps engine 需要的依赖，由 main 组装
type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Revoker  mdw.RevocationChecker
	Limits   config.Limits
	BasePath string
	// StaticRoot 非空时在 /images 下提供本地图片
	StaticRoot string
	Modules    *Registry
}

func (d Deps) basePath() string {
	if d.BasePath == "" {
		return "/hungrypandaAPI"
	}
	return d.BasePath
}

func (d Deps) limits() config.Limits {
	l := d.Limits
	if l.RPS <= 0 {
		l.RPS = 50
	}
	if l.Burst <= 0 {
		l.Burst = 100
	}
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = 300
	}
	if l.MaxBodyMB <= 0 {
		l.MaxBodyMB = 16
	}
	if l.TimeoutSec <= 0 {
		l.TimeoutSec = 10
	}
	return l
}

func baseEngine(d Deps) *gin.Engine {
	l := d.limits()
	r := server.NewRouter(d.Log)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(l.RPS), l.Burst),
		mdw.ConcurrencyLimit(l.MaxConcurrent, time.Second),
		mdw.MaxBodyBytes(l.MaxBodyMB<<20),
		mdw.Timeout(time.Duration(l.TimeoutSec)*time.Second),
		mdw.Metrics(),
		mdw.AccessLog(d.Log, "/health", "/metrics"),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := baseEngine(d)

	if d.StaticRoot != "" {
		r.Static("/"+blob.ImagePrefix, filepath.Join(d.StaticRoot, filepath.FromSlash(blob.ImagePrefix)))
	}

	api := r.Group(d.basePath())
	public := api.Group("")
	public.Use(mdw.OptionalAuthJWT(d.JWT, d.Revoker))
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.Revoker, ""))

	if d.Modules != nil {
		d.Modules.MountAPI(public, authed)
	}
	return r
}
