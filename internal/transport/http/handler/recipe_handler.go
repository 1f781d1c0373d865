package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/domain"
	"hungrypanda/internal/service"
	httpez "hungrypanda/internal/transport/http/ez"
	resp "hungrypanda/internal/transport/http/response"
)

const msgImageRequired = "Please upload an image of the recipe!"

type recipeForm struct {
	Name        string   `form:"name" binding:"required" msg:"Please enter the name of the recipe!"`
	Hours       *int     `form:"cookTime.hours" binding:"required,min=0" msg:"Please enter the cooking time in hours!"`
	Minutes     *int     `form:"cookTime.minutes" binding:"required,min=1,max=59" msg:"Please enter the cooking minutes between 1 and 59!"`
	Description string   `form:"description" binding:"min=10,max=400" msg:"Please enter a description between 10 to 400 words!"`
	KeyIngred   []string `form:"keyIngred" binding:"min=1,dive,required" msg:"Please enter the key ingredients!"`
	Ingredients []string `form:"ingredients" binding:"min=1,dive,required" msg:"Please enter the ingredients!"`
	Procedure   string   `form:"procedure" binding:"min=30" msg:"Please enter the procedure for prepration of at-least 30 words!"`
}

// input image 只取本次上传产生的引用；为空时更新沿用旧图
func (f *recipeForm) input(image string) service.RecipeInput {
	in := service.RecipeInput{
		Name:        f.Name,
		Image:       image,
		Description: f.Description,
		KeyIngred:   f.KeyIngred,
		Ingredients: f.Ingredients,
		Procedure:   f.Procedure,
	}
	if f.Hours != nil {
		in.CookTime.Hours = *f.Hours
	}
	if f.Minutes != nil {
		in.CookTime.Minutes = *f.Minutes
	}
	return in
}

type RecipeHandler struct {
	svc *service.RecipeService
	up  *Uploader
	log *zap.Logger
}

func NewRecipeHandler(svc *service.RecipeService, up *Uploader, log *zap.Logger) *RecipeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecipeHandler{svc: svc, up: up, log: log}
}

type recipesOut struct {
	Recipes []domain.Recipe `json:"recipes"`
}

// bindWithUpload 先保存上传再校验；任何失败都释放刚上传的图
func (h *RecipeHandler) bindWithUpload(c *gin.Context, requireImage bool) (*recipeForm, string, error) {
	ref, err := h.up.Save(c)
	if err != nil {
		return nil, "", err
	}
	var f recipeForm
	if err := httpez.Bind(c, httpez.BindForm, &f); err != nil {
		h.up.Discard(c.Request.Context(), ref)
		return nil, "", err
	}
	if requireImage && ref == "" {
		return nil, "", apperr.Validation(msgImageRequired)
	}
	return &f, ref, nil
}

func (h *RecipeHandler) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed.Group("/recipes"), h.log)

	httpez.RegisterAction(ez, httpez.Action[struct{}, recipesOut]{
		Method: http.MethodGet,
		Path:   "/explore",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (recipesOut, error) {
			list, err := h.svc.Explore(c.Request.Context(), httpez.UserID(c))
			return recipesOut{Recipes: list}, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/recipe/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return gin.H{"recipe": v}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, recipesOut]{
		Method: http.MethodGet,
		Path:   "/myrecipes/:cid",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (recipesOut, error) {
			list, err := h.svc.ListByCreator(c.Request.Context(), c.Param("cid"))
			return recipesOut{Recipes: list}, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/addrecipe",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			f, ref, err := h.bindWithUpload(c, true)
			if err != nil {
				return nil, err
			}
			rc, err := h.svc.Create(c.Request.Context(), httpez.UserID(c), f.input(ref))
			if err != nil {
				h.up.Discard(c.Request.Context(), ref)
				return nil, err
			}
			return gin.H{"message": "Created a new recipe!", "recipe": rc}, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodPatch,
		Path:   "/updateRecipe/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			f, ref, err := h.bindWithUpload(c, false)
			if err != nil {
				return resp.Msg{}, err
			}
			if err := h.svc.Update(c.Request.Context(), httpez.UserID(c), c.Param("id"), f.input(ref)); err != nil {
				h.up.Discard(c.Request.Context(), ref)
				return resp.Msg{}, err
			}
			return resp.Message("Updated the recipe!"), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, recipesOut]{
		Method: http.MethodPatch,
		Path:   "/updatelike/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (recipesOut, error) {
			list, err := h.svc.ToggleLike(c.Request.Context(), httpez.UserID(c), c.Param("id"))
			return recipesOut{Recipes: list}, err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/deleterecipe/:id",
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Msg, error) {
			if err := h.svc.Delete(c.Request.Context(), httpez.UserID(c), c.Param("id")); err != nil {
				return resp.Msg{}, err
			}
			return resp.Message("Successfully deleted the recipe!"), nil
		},
	})
}
