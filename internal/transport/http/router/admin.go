package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "hungrypanda/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := baseEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, d.Revoker, "admin"))

	if d.Modules != nil {
		d.Modules.MountAdmin(admin)
	}
	return r
}
