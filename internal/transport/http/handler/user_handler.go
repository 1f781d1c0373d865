package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/domain"
	"hungrypanda/internal/service"
	httpez "hungrypanda/internal/transport/http/ez"
	mdw "hungrypanda/internal/transport/http/middleware"
	resp "hungrypanda/internal/transport/http/response"
)

const msgSocialMedia = "Please enter valid social media links!"

type signupForm struct {
	Name        string `form:"name" binding:"required" msg:"Please enter a name!"`
	Email       string `form:"email" binding:"required,email" msg:"Please enter a valid email address!"`
	UserName    string `form:"userName" binding:"required" msg:"Please enter an user-name"`
	Password    string `form:"password" binding:"required,min=5" msg:"Please enter a password of at-least 5 characters!"`
	Age         *int   `form:"age" binding:"required,min=0" msg:"Please enter your age"`
	Location    string `form:"location" binding:"required" msg:"Please enter a city-name!"`
	SocialMedia string `form:"socialMedia"`
}

type profileForm struct {
	Name        string `form:"name" binding:"required" msg:"Please enter a name!"`
	Email       string `form:"email" binding:"required,email" msg:"Please enter a valid email address!"`
	UserName    string `form:"userName" binding:"required" msg:"Please enter an user-name"`
	Age         *int   `form:"age" binding:"required,min=0" msg:"Please enter your age"`
	Location    string `form:"location" binding:"required" msg:"Please enter a city-name!"`
	SocialMedia string `form:"socialMedia"`
}

// input 头像只认本次上传的引用，客户端传来的文本 image 不入库
func (f *profileForm) input(image string) (service.ProfileInput, error) {
	links, err := parseSocial(f.SocialMedia)
	if err != nil {
		return service.ProfileInput{}, err
	}
	in := service.ProfileInput{
		Name:        f.Name,
		Email:       f.Email,
		UserName:    f.UserName,
		Location:    f.Location,
		Image:       image,
		SocialMedia: links,
	}
	if f.Age != nil {
		in.Age = *f.Age
	}
	return in, nil
}

// parseSocial socialMedia 以 JSON 数组提交
func parseSocial(raw string) (domain.SocialLinks, error) {
	links := domain.SocialLinks{}
	if strings.TrimSpace(raw) == "" {
		return links, nil
	}
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, apperr.Validation(msgSocialMedia)
	}
	return links, nil
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginOut struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type UserHandler struct {
	svc *service.UserService
	up  *Uploader
	log *zap.Logger
}

func NewUserHandler(svc *service.UserService, up *Uploader, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{svc: svc, up: up, log: log}
}

func (h *UserHandler) MountAPI(public, authed *gin.RouterGroup) {
	pub := httpez.New(public.Group("/users"), h.log)
	ez := httpez.New(authed.Group("/users"), h.log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/myprofile/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, total, err := h.svc.Profile(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"user": u, "totalLikes": total}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/getLikedRecipes",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			u, liked, err := h.svc.LikedRecipes(c.Request.Context(), httpez.UserID(c))
			if err != nil {
				return nil, err
			}
			return gin.H{"user": u, "likedRecipes": liked}, nil
		},
	})

	httpez.RegisterAction(pub, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			ref, err := h.up.Save(c)
			if err != nil {
				return nil, err
			}
			u, err := h.signup(c, ref)
			if err != nil {
				h.up.Discard(c.Request.Context(), ref)
				return nil, err
			}
			return gin.H{"newUser": u}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodPatch,
		Path:   "/editprofile/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			ref, err := h.up.Save(c)
			if err != nil {
				return resp.Msg{}, err
			}
			if err := h.edit(c, ref); err != nil {
				h.up.Discard(c.Request.Context(), ref)
				return resp.Msg{}, err
			}
			return resp.Message("Successfully updated the user data!"), nil
		},
	})

	httpez.RegisterAction(pub, httpez.Action[loginIn, loginOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (loginOut, error) {
			tok, uid, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			return loginOut{Token: tok, UserID: uid}, err
		},
	})

	// logout 公开：带合法 token 时拉黑
	httpez.RegisterAction(pub, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodPost,
		Path:   "/logout",
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			h.svc.Logout(c.Request.Context(), mdw.ClaimsFrom(c))
			return resp.Message("You are logged out!"), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/delete-account",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.DeleteAccount(c.Request.Context(), httpez.UserID(c), mdw.ClaimsFrom(c)); err != nil {
				return resp.Msg{}, err
			}
			return resp.Message("Successfully deleted the account!"), nil
		},
	})
}

func (h *UserHandler) signup(c *gin.Context, ref string) (*domain.User, error) {
	var f signupForm
	if err := httpez.Bind(c, httpez.BindForm, &f); err != nil {
		return nil, err
	}
	pf := profileForm{Name: f.Name, Email: f.Email, UserName: f.UserName, Age: f.Age,
		Location: f.Location, SocialMedia: f.SocialMedia}
	in, err := pf.input(ref)
	if err != nil {
		return nil, err
	}
	return h.svc.Signup(c.Request.Context(), service.SignupInput{ProfileInput: in, Password: f.Password})
}

func (h *UserHandler) edit(c *gin.Context, ref string) error {
	var f profileForm
	if err := httpez.Bind(c, httpez.BindForm, &f); err != nil {
		return err
	}
	in, err := f.input(ref)
	if err != nil {
		return err
	}
	return h.svc.EditProfile(c.Request.Context(), httpez.UserID(c), c.Param("id"), in)
}
