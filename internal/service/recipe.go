package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/cache"
	"hungrypanda/internal/domain"
	"hungrypanda/pkg/utils"
)

const (
	msgRecipeNotFound = "Can't find the requested recipe!"
	msgNoSuchRecipe   = "No such recipe exists!"
	msgNoSuchUser     = "No such user exists!"
	msgNotYourRecipe  = "You are not authenticated to delete this recipe"
	msgNotYourUpdate  = "You are not authenticated to update this recipe"
)

// RecipeInput 创建 / 更新共用的内容字段
type RecipeInput struct {
	Name        string
	Image       string
	CookTime    domain.CookTime
	Description string
	KeyIngred   []string
	Ingredients []string
	Procedure   string
}

type CreatorRef struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

// RecipeView 详情页：菜谱 + 作者用户名
type RecipeView struct {
	domain.Recipe
	Creator *CreatorRef `json:"creator"`
}

type RecipeService struct {
	store   domain.Store
	images  Releaser
	cache   *cache.Cache
	viewTTL time.Duration
	log     *zap.Logger
}

func NewRecipeService(store domain.Store, images Releaser, c *cache.Cache, viewTTL time.Duration, log *zap.Logger) *RecipeService {
	return &RecipeService{store: store, images: images, cache: c, viewTTL: viewTTL, log: nopLogger(log)}
}

// Explore 别人发布的菜谱
func (s *RecipeService) Explore(ctx context.Context, actor string) ([]domain.Recipe, error) {
	list, err := s.store.Recipes().ListExcludingCreator(ctx, actor)
	if err != nil {
		return nil, apperr.Internal("Can't fetch the recipes now, please try after some moments!", err)
	}
	return list, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (*RecipeView, error) {
	return cache.GetOrLoadJSON(s.cache, ctx, recipeKey(id), s.viewTTL, func(ctx context.Context) (*RecipeView, error) {
		rc, err := s.store.Recipes().FindByID(ctx, id)
		if err != nil {
			return nil, apperr.Wrap(notFound(err, msgRecipeNotFound), msgRecipeNotFound)
		}
		v := &RecipeView{Recipe: *rc}
		if u, err := s.store.Users().FindByID(ctx, rc.CreatorID); err == nil {
			v.Creator = &CreatorRef{ID: u.ID, UserName: u.UserName}
		}
		return v, nil
	})
}

func (s *RecipeService) ListByCreator(ctx context.Context, creatorID string) ([]domain.Recipe, error) {
	const msg = "Can't find the recipes for the requested user!"
	if _, err := s.store.Users().FindByID(ctx, creatorID); err != nil {
		return nil, apperr.BadRequest(msg)
	}
	list, err := s.store.Recipes().ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperr.BadRequest(msg)
	}
	return list, nil
}

// Create 插入菜谱并给作者 totalRecipes+1，同一事务
func (s *RecipeService) Create(ctx context.Context, actor string, in RecipeInput) (*domain.Recipe, error) {
	rc := &domain.Recipe{ID: utils.NewID(), CreatorID: actor}
	applyContent(rc, in)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		if err := tx.Recipes().Create(ctx, rc); err != nil {
			return err
		}
		return notFound(tx.Users().AdjustTotalRecipes(ctx, actor, 1), msgNoSuchUser)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Can't create a recipe at this moment! please try again")
	}
	s.log.Info("recipe created", zap.String("recipe", rc.ID), zap.String("creator", actor))
	return rc, nil
}

// Update 只有作者可改；新图替换旧图时提交后再释放旧图
func (s *RecipeService) Update(ctx context.Context, actor, id string, in RecipeInput) error {
	var oldImage string
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		rc, err := tx.Recipes().FindByID(ctx, id)
		if err != nil {
			return notFound(err, msgRecipeNotFound)
		}
		if err := authorize(actor, rc.CreatorID, msgNotYourUpdate); err != nil {
			return err
		}
		oldImage = rc.Image
		if in.Image == "" {
			in.Image = rc.Image
		}
		applyContent(rc, in)
		return notFound(tx.Recipes().ReplaceContent(ctx, rc), msgRecipeNotFound)
	})
	if err != nil {
		return apperr.Wrap(err, "Can't updated the requested recipe at this moment")
	}
	if oldImage != in.Image {
		releaseAll(ctx, s.images, s.log, oldImage)
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete 顺序：作者计数 -> 所有点赞 -> 菜谱本身；图片在提交后释放
func (s *RecipeService) Delete(ctx context.Context, actor, id string) error {
	var image string
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		rc, err := tx.Recipes().FindByID(ctx, id)
		if err != nil {
			return notFound(err, msgRecipeNotFound)
		}
		if err := authorize(actor, rc.CreatorID, msgNotYourRecipe); err != nil {
			return err
		}
		image = rc.Image
		// totalLikes 读时汇总，菜谱删除后自然扣掉 rc.Likes
		if err := tx.Users().AdjustTotalRecipes(ctx, actor, -1); err != nil {
			return notFound(err, msgNoSuchUser)
		}
		if _, err := tx.Likes().RemoveByRecipes(ctx, []string{id}); err != nil {
			return err
		}
		return notFound(tx.Recipes().Delete(ctx, id), msgRecipeNotFound)
	})
	if err != nil {
		return apperr.Wrap(err, "Can't delete the requested recipe!")
	}
	cascadeDeletes.WithLabelValues("recipe").Inc()
	releaseAll(ctx, s.images, s.log, image)
	s.invalidate(ctx, id)
	s.log.Info("recipe deleted", zap.String("recipe", id), zap.String("creator", actor))
	return nil
}

// ToggleLike 先删关系行，删到了就 likes-1，否则插入并 likes+1；并发下不会重复计数
func (s *RecipeService) ToggleLike(ctx context.Context, actor, id string) ([]domain.Recipe, error) {
	var liked bool
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		if _, err := tx.Recipes().FindByID(ctx, id); err != nil {
			return notFound(err, msgNoSuchRecipe)
		}
		if _, err := tx.Users().FindByID(ctx, actor); err != nil {
			return notFound(err, msgNoSuchUser)
		}
		removed, err := tx.Likes().Remove(ctx, actor, id)
		if err != nil {
			return err
		}
		if removed {
			return tx.Recipes().AdjustLikes(ctx, id, -1)
		}
		added, err := tx.Likes().Add(ctx, actor, id)
		if err != nil || !added {
			return err
		}
		liked = true
		return tx.Recipes().AdjustLikes(ctx, id, 1)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Can't update the like value, please try again!")
	}
	action := "unlike"
	if liked {
		action = "like"
	}
	likeToggles.WithLabelValues(action).Inc()
	s.invalidate(ctx, id)

	list, err := s.store.Recipes().ListExcludingCreator(ctx, actor)
	if err != nil {
		return nil, apperr.Internal("Can't update the like value, please try again!", err)
	}
	return list, nil
}

func (s *RecipeService) invalidate(ctx context.Context, ids ...string) {
	invalidateRecipes(ctx, s.cache, s.log, ids...)
}

func applyContent(rc *domain.Recipe, in RecipeInput) {
	rc.Name = in.Name
	rc.Image = in.Image
	rc.CookTime = in.CookTime
	rc.Description = in.Description
	rc.KeyIngred = domain.StringList(in.KeyIngred)
	rc.Ingredients = domain.StringList(in.Ingredients)
	rc.Procedure = in.Procedure
}
