package domain

import "context"

// 仓储接口：找不到统一返回 ErrNotFound，唯一键冲突返回 ErrDuplicate
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByID 同时填充 Recipes / LikedRecipes
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, u *User) error
	AdjustTotalRecipes(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q string, offset, limit int) ([]User, int64, error)
	// RecountRecipes 按 recipes.creator_id 重算 total_recipes，返回修正行数
	RecountRecipes(ctx context.Context) (int64, error)
}

type RecipeRepository interface {
	Create(ctx context.Context, r *Recipe) error
	// 读方法都会填充 LikedBy
	FindByID(ctx context.Context, id string) (*Recipe, error)
	FindByIDs(ctx context.Context, ids []string) ([]Recipe, error)
	ListByCreator(ctx context.Context, creatorID string) ([]Recipe, error)
	ListExcludingCreator(ctx context.Context, creatorID string) ([]Recipe, error)
	ReplaceContent(ctx context.Context, r *Recipe) error
	AdjustLikes(ctx context.Context, id string, delta int) error
	// DecrementLikesLikedBy 该用户点过赞的菜谱 likes 各减一
	DecrementLikesLikedBy(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	SumLikesByCreator(ctx context.Context, creatorID string) (int64, error)
	// RecountLikes 按 recipe_likes 重算 likes，返回修正行数
	RecountLikes(ctx context.Context) (int64, error)
	// Orphans creator 已不存在的菜谱
	Orphans(ctx context.Context) ([]Recipe, error)
}

type LikeRepository interface {
	// Add 已存在时返回 false
	Add(ctx context.Context, userID, recipeID string) (bool, error)
	// Remove 不存在时返回 false
	Remove(ctx context.Context, userID, recipeID string) (bool, error)
	RemoveByRecipes(ctx context.Context, recipeIDs []string) (int64, error)
	RemoveByUser(ctx context.Context, userID string) (int64, error)
	LikedBy(ctx context.Context, recipeIDs []string) (map[string][]string, error)
	LikedRecipeIDs(ctx context.Context, userID string) ([]string, error)
	// PruneDangling 删除 user 或 recipe 已不存在的点赞
	PruneDangling(ctx context.Context) (int64, error)
}

// Store 多表写入通过 Atomic 放在同一个事务里；fn 内只能使用传入的 tx
type Store interface {
	Users() UserRepository
	Recipes() RecipeRepository
	Likes() LikeRepository
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
