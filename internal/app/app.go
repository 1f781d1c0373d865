package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hungrypanda/internal/core/auth"
	"hungrypanda/internal/core/blob"
	"hungrypanda/internal/core/cache"
	"hungrypanda/internal/core/config"
	"hungrypanda/internal/core/database"
	"hungrypanda/internal/repo"
	"hungrypanda/internal/service"
	"hungrypanda/internal/transport/http/handler"
	"hungrypanda/internal/transport/http/router"
)

// App 两个进程共用的依赖装配
type App struct {
	Cfg    *config.Config
	Log    *zap.Logger
	DB     *gorm.DB
	Cache  *cache.Cache
	Images blob.Store
	JWT    *auth.JWTer

	Users      *service.UserService
	Recipes    *service.RecipeService
	Reconciler *service.Reconciler
}

func OpenDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                l,
	})
}

// New db 由调用方打开，方便测试注入 sqlite 内存库
func New(ctx context.Context, cfg *config.Config, l *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}

	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Ping(ctx); err != nil {
			// redis 只做缓存和黑名单，连不上不阻塞启动
			l.Warn("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
	}

	images, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open image storage: %w", err)
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	store := repo.NewStore(db)
	ttl := time.Duration(cfg.Redis.RecipeTTLSec) * time.Second
	return &App{
		Cfg:        cfg,
		Log:        l,
		DB:         db,
		Cache:      c,
		Images:     images,
		JWT:        jwter,
		Users:      service.NewUserService(store, images, c, jwter, l),
		Recipes:    service.NewRecipeService(store, images, c, ttl, l),
		Reconciler: service.NewReconciler(store, images, l),
	}, nil
}

func (a *App) deps(mods *router.Registry) router.Deps {
	d := router.Deps{
		Log:      a.Log,
		JWT:      a.JWT,
		Limits:   a.Cfg.Limits,
		BasePath: a.Cfg.App.BasePath,
		Modules:  mods,
	}
	if a.Cache != nil {
		d.Revoker = a.Cache
	}
	return d
}

// APIEngine 用户端：/users + /recipes
func (a *App) APIEngine() *gin.Engine {
	up := handler.NewUploader(a.Images, a.Log)
	d := a.deps(router.NewRegistry(
		handler.NewUserHandler(a.Users, up, a.Log),
		handler.NewRecipeHandler(a.Recipes, up, a.Log),
	))
	if fs, ok := a.Images.(*blob.FS); ok {
		d.StaticRoot = fs.Root()
	}
	return router.NewAPIEngine(d)
}

func (a *App) AdminEngine() *gin.Engine {
	return router.NewAdminEngine(a.deps(router.NewRegistry(
		handler.NewAdminHandler(a.Users, a.Reconciler, a.Log),
	)))
}

func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("close redis", zap.Error(err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
