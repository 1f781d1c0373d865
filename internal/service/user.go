package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"hungrypanda/internal/core/apperr"
	"hungrypanda/internal/core/auth"
	"hungrypanda/internal/core/cache"
	"hungrypanda/internal/domain"
	"hungrypanda/pkg/utils"
)

const (
	msgEmailTaken     = "An user already exists with this email!"
	msgNotYourProfile = "You are not authenticated to edit this profile"
)

type ProfileInput struct {
	Name        string
	Email       string
	UserName    string
	Age         int
	Location    string
	Image       string
	SocialMedia domain.SocialLinks
}

type SignupInput struct {
	ProfileInput
	Password string
}

type UserService struct {
	store  domain.Store
	images Releaser
	cache  *cache.Cache
	jwt    *auth.JWTer
	log    *zap.Logger
}

func NewUserService(store domain.Store, images Releaser, c *cache.Cache, jwt *auth.JWTer, log *zap.Logger) *UserService {
	return &UserService{store: store, images: images, cache: c, jwt: jwt, log: nopLogger(log)}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	const failMsg = "Can't create a new user at this moment!"
	email := normalizeEmail(in.Email)
	if _, err := s.store.Users().FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict(msgEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Internal(failMsg, err)
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(failMsg, err)
	}
	u := &domain.User{ID: utils.NewID(), PasswordHash: hash, Role: domain.RoleUser}
	applyProfile(u, in.ProfileInput)
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict(msgEmailTaken)
		}
		return nil, apperr.Internal(failMsg, err)
	}
	u.Recipes, u.LikedRecipes = []string{}, []string{}
	s.log.Info("user signed up", zap.String("user", u.ID))
	return u, nil
}

// Login 返回 token 和 userId
func (s *UserService) Login(ctx context.Context, email, password string) (string, string, error) {
	u, err := s.store.Users().FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", apperr.Unauthenticated("An user with such email is not found!")
		}
		return "", "", apperr.Internal("Please try to log in after a few moments!", err)
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return "", "", apperr.Unauthenticated("The password entered is incorrect!")
	}
	tok, err := s.jwt.Issue(u.ID, u.Email, u.Role)
	if err != nil {
		return "", "", apperr.Internal("Please try to log in after a few moments!", err)
	}
	return tok, u.ID, nil
}

// Logout 把当前 token 拉黑到过期；未配置 redis 或写失败时只记日志
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) {
	if claims == nil || claims.ExpiresAt == nil {
		return
	}
	if err := s.cache.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		s.log.Warn("revoke token failed", zap.String("user", claims.UID), zap.Error(err))
	}
}

// Profile 返回用户和 totalLikes（读时按名下菜谱汇总）
func (s *UserService) Profile(ctx context.Context, id string) (*domain.User, int64, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, 0, apperr.Wrap(notFound(err, msgNoSuchUser), "Can't fetch the user data at this moment!")
	}
	total, err := s.store.Recipes().SumLikesByCreator(ctx, id)
	if err != nil {
		return nil, 0, apperr.Internal("Can't fetch the user data at this moment!", err)
	}
	return u, total, nil
}

func (s *UserService) LikedRecipes(ctx context.Context, actor string) (*domain.User, []domain.Recipe, error) {
	const msg = "Can't find the requested user!"
	u, err := s.store.Users().FindByID(ctx, actor)
	if err != nil {
		return nil, nil, apperr.Wrap(notFound(err, msg), msg)
	}
	list, err := s.store.Recipes().FindByIDs(ctx, u.LikedRecipes)
	if err != nil {
		return nil, nil, apperr.Internal(msg, err)
	}
	return u, list, nil
}

// EditProfile 只能改自己；换头像时提交后释放旧图
func (s *UserService) EditProfile(ctx context.Context, actor, id string, in ProfileInput) error {
	if err := authorize(actor, id, msgNotYourProfile); err != nil {
		return err
	}
	in.Email = normalizeEmail(in.Email)
	var (
		oldImage string
		stale    []string // userName 变了：名下菜谱详情里的 creator 要刷新
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return notFound(err, msgNoSuchUser)
		}
		if in.Email != u.Email {
			other, err := tx.Users().FindByEmail(ctx, in.Email)
			if err == nil && other.ID != u.ID {
				return apperr.Conflict(msgEmailTaken)
			}
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		oldImage = u.Image
		if in.Image == "" {
			in.Image = u.Image
		}
		if u.UserName != in.UserName {
			stale = append([]string{}, u.Recipes...)
		}
		applyProfile(u, in)
		err = tx.Users().UpdateProfile(ctx, u)
		if errors.Is(err, domain.ErrDuplicate) {
			return apperr.Conflict(msgEmailTaken)
		}
		return notFound(err, msgNoSuchUser)
	})
	if err != nil {
		return apperr.Wrap(err, "Can't updated the user data at this moment!")
	}
	if oldImage != in.Image {
		releaseAll(ctx, s.images, s.log, oldImage)
	}
	invalidateRecipes(ctx, s.cache, s.log, stale...)
	return nil
}

// DeleteAccount 级联顺序：名下菜谱的点赞 -> 自己点过的赞 -> 名下菜谱 -> 用户；
// 所有图片在事务提交后释放
func (s *UserService) DeleteAccount(ctx context.Context, actor string, claims *auth.Claims) error {
	var (
		profileImage string
		recipeImages []string
		touched      []string
	)
	err := s.store.Atomic(ctx, func(tx domain.Store) error {
		u, err := tx.Users().FindByID(ctx, actor)
		if err != nil {
			return notFound(err, msgNoSuchUser)
		}
		profileImage = u.Image
		owned, err := tx.Recipes().ListByCreator(ctx, actor)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(owned))
		for _, rc := range owned {
			ids = append(ids, rc.ID)
			recipeImages = append(recipeImages, rc.Image)
		}
		touched = append(append([]string{}, ids...), u.LikedRecipes...)

		if _, err := tx.Likes().RemoveByRecipes(ctx, ids); err != nil {
			return err
		}
		if _, err := tx.Recipes().DecrementLikesLikedBy(ctx, actor); err != nil {
			return err
		}
		if _, err := tx.Likes().RemoveByUser(ctx, actor); err != nil {
			return err
		}
		if _, err := tx.Recipes().DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		return notFound(tx.Users().Delete(ctx, actor), msgNoSuchUser)
	})
	if err != nil {
		return apperr.Wrap(err, "Can't delete the account at this moment!")
	}
	cascadeDeletes.WithLabelValues("account").Inc()
	releaseAll(ctx, s.images, s.log, append([]string{profileImage}, recipeImages...)...)
	invalidateRecipes(ctx, s.cache, s.log, touched...)
	s.Logout(ctx, claims)
	s.log.Info("account deleted", zap.String("user", actor), zap.Int("recipes", len(recipeImages)))
	return nil
}

func applyProfile(u *domain.User, in ProfileInput) {
	u.Name = in.Name
	u.Email = normalizeEmail(in.Email)
	u.UserName = in.UserName
	u.Age = in.Age
	u.Location = in.Location
	u.Image = in.Image
	u.SocialMedia = in.SocialMedia
}

// List 管理端用户列表
func (s *UserService) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	users, total, err := s.store.Users().List(ctx, strings.TrimSpace(q), offset, limit)
	if err != nil {
		return nil, 0, apperr.Internal("list users failed", err)
	}
	return users, total, nil
}
