package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hungrypanda/internal/service"
	httpez "hungrypanda/internal/transport/http/ez"
	resp "hungrypanda/internal/transport/http/response"
)

// AdminHandler 管理端：用户列表 / 删号 / 手动对账
type AdminHandler struct {
	users *service.UserService
	rec   *service.Reconciler
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, rec *service.Reconciler, log *zap.Logger) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{users: users, rec: rec, log: log}
}

func (h *AdminHandler) Priority() int { return 10 }

type listQ struct {
	Offset int    `form:"offset,default=0" binding:"min=0" msg:"offset must not be negative"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

type userRow struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	UserName     string    `json:"userName"`
	Role         string    `json:"role"`
	TotalRecipes int       `json:"totalRecipes"`
	CreatedAt    time.Time `json:"createdAt"`
}

type listOut struct {
	Total int64     `json:"total"`
	Items []userRow `json:"items"`
}

// MountAdmin 分组已走 AuthJWT("admin")
func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	ez := httpez.New(g, h.log)

	// --- GET /admin/v1/users  用户列表 ---
	httpez.RegisterAction(ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := h.users.List(c.Request.Context(), in.Q, in.Offset, in.Limit)
			if err != nil {
				return listOut{}, err
			}
			out := listOut{Total: total, Items: make([]userRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, userRow{
					ID: u.ID, Email: u.Email, Name: u.Name, UserName: u.UserName,
					Role: u.Role, TotalRecipes: u.TotalRecipes, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- DELETE /admin/v1/users/:id  删号，走同一条级联 ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			id := c.Param("id")
			if err := h.users.DeleteAccount(c.Request.Context(), id, nil); err != nil {
				return resp.Msg{}, err
			}
			h.log.Info("admin deleted account",
				zap.String("by", httpez.UserID(c)), zap.String("user", id))
			return resp.Message("Successfully deleted the account!"), nil
		},
	})

	// --- POST /admin/v1/reconcile ---
	httpez.RegisterAction(ez, httpez.Action[struct{}, service.Report]{
		Method: http.MethodPost,
		Path:   "/reconcile",
		Handler: func(c *gin.Context, _ *struct{}) (service.Report, error) {
			return h.rec.Run(c.Request.Context())
		},
	})
}
