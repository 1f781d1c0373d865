package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/validate"
	mdw "hungrypanda/internal/transport/http/middleware"
	resp "hungrypanda/internal/transport/http/response"
)

// MsgBadInput 绑定失败且不是字段校验错误时的提示
const MsgBadInput = "Please check all the informations entered or enter all the required informations!"

// EZ 轻封装：分组 + 日志
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart / urlencoded
	BindNone  Binder = "none"  // 不绑定，handler 自己处理（带上传的接口）
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // GET | POST | PATCH | PUT | DELETE
	Path    string   // 例："/recipes/updatelike/:id"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Status  int      // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// Bind 按 binder 绑定并校验；校验失败返回带首条提示的 422
func Bind(c *gin.Context, b Binder, in any) error {
	var err error
	switch b {
	case BindJSON:
		err = c.ShouldBindJSON(in)
	case BindQuery:
		err = c.ShouldBindQuery(in)
	case BindForm:
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			err = c.ShouldBindWith(in, binding.FormMultipart)
		} else {
			err = c.ShouldBindWith(in, binding.Form)
		}
	default:
		return nil
	}
	if err == nil {
		return nil
	}
	if msg, ok := validate.FirstMessage(err, in); ok {
		return apperr.Validation(msg)
	}
	return apperr.Validation(MsgBadInput)
}

// UserID 当前登录用户
func UserID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

func hasRole(c *gin.Context, roles []string) bool {
	role := c.GetString(mdw.KeyRole)
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// Fail 统一错误映射：{"message"} + 真实状态码，内部原因只进日志
func (e EZ) Fail(c *gin.Context, err error) {
	status, msg := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp.Error(status, msg))
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if UserID(c) == "" {
				e.Fail(c, apperr.Unauthenticated(""))
				return
			}
			if len(a.Roles) > 0 && !hasRole(c, a.Roles) {
				resp.Abort(c, resp.CodeForbidden, "")
				return
			}
		}

		// 2) 绑定入参
		var in I
		if err := Bind(c, a.Binder, &in); err != nil {
			e.Fail(c, err)
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			var ae *apperr.Error
			if !errors.As(err, &ae) {
				err = apperr.Internal("", err)
			}
			e.Fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
