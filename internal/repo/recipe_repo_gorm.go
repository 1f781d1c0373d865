package repo

import (
	"context"

	"gorm.io/gorm"

	"hungrypanda/internal/domain"
)

type RecipeRepo struct{ db *gorm.DB }

func (r *RecipeRepo) Create(ctx context.Context, rc *domain.Recipe) error {
	rc.Likes = 0
	if err := r.db.WithContext(ctx).Create(rc).Error; err != nil {
		return mapErr(err)
	}
	rc.LikedBy = []string{}
	return nil
}

func (r *RecipeRepo) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	var rc domain.Recipe
	if err := r.db.WithContext(ctx).First(&rc, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	list := []domain.Recipe{rc}
	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *RecipeRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Recipe, error) {
	if len(ids) == 0 {
		return []domain.Recipe{}, nil
	}
	return r.find(ctx, r.db.WithContext(ctx).Where("id IN ?", ids))
}

func (r *RecipeRepo) ListByCreator(ctx context.Context, creatorID string) ([]domain.Recipe, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("creator_id = ?", creatorID))
}

func (r *RecipeRepo) ListExcludingCreator(ctx context.Context, creatorID string) ([]domain.Recipe, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("creator_id <> ?", creatorID))
}

func (r *RecipeRepo) find(ctx context.Context, q *gorm.DB) ([]domain.Recipe, error) {
	list := []domain.Recipe{}
	if err := q.Order("created_at, id").Find(&list).Error; err != nil {
		return nil, err
	}
	if err := r.attach(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attach 从 recipe_likes 填充 LikedBy
func (r *RecipeRepo) attach(ctx context.Context, list []domain.Recipe) error {
	ids := make([]string, 0, len(list))
	for _, rc := range list {
		ids = append(ids, rc.ID)
	}
	likedBy, err := (&LikeRepo{db: r.db}).LikedBy(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].LikedBy = likedBy[list[i].ID]
	}
	return nil
}

// ReplaceContent 整体替换内容字段，creator / likes 不动
func (r *RecipeRepo) ReplaceContent(ctx context.Context, rc *domain.Recipe) error {
	res := r.db.WithContext(ctx).Model(&domain.Recipe{ID: rc.ID}).
		Select("name", "image", "cook_hours", "cook_minutes", "description", "key_ingred", "ingredients", "procedure", "updated_at").
		Updates(rc)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) AdjustLikes(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) DecrementLikesLikedBy(ctx context.Context, userID string) (int64, error) {
	liked := r.db.Model(&domain.RecipeLike{}).Select("recipe_id").Where("user_id = ?", userID)
	res := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("likes > 0 AND id IN (?)", liked).
		UpdateColumn("likes", gorm.Expr("likes - 1"))
	return res.RowsAffected, res.Error
}

func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Recipe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *RecipeRepo) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Recipe{})
	return res.RowsAffected, res.Error
}

func (r *RecipeRepo) SumLikesByCreator(ctx context.Context, creatorID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("creator_id = ?", creatorID).
		Select("COALESCE(SUM(likes), 0)").Scan(&total).Error
	return total, err
}

const likeCount = "(SELECT COUNT(*) FROM recipe_likes WHERE recipe_likes.recipe_id = recipes.id)"

func (r *RecipeRepo) RecountLikes(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("likes <> " + likeCount).
		UpdateColumn("likes", gorm.Expr(likeCount))
	return res.RowsAffected, res.Error
}

func (r *RecipeRepo) Orphans(ctx context.Context) ([]domain.Recipe, error) {
	list := []domain.Recipe{}
	err := r.db.WithContext(ctx).
		Where("creator_id NOT IN (?)", r.db.Model(&domain.User{}).Select("id")).
		Order("created_at, id").Find(&list).Error
	return list, err
}
