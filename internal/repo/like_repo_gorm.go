package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hungrypanda/internal/domain"
)

type LikeRepo struct{ db *gorm.DB }

// Add 冲突即已点赞，不报错
func (r *LikeRepo) Add(ctx context.Context, userID, recipeID string) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.RecipeLike{UserID: userID, RecipeID: recipeID})
	return res.RowsAffected == 1, res.Error
}

func (r *LikeRepo) Remove(ctx context.Context, userID, recipeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.RecipeLike{})
	return res.RowsAffected == 1, res.Error
}

func (r *LikeRepo) RemoveByRecipes(ctx context.Context, recipeIDs []string) (int64, error) {
	if len(recipeIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("recipe_id IN ?", recipeIDs).Delete(&domain.RecipeLike{})
	return res.RowsAffected, res.Error
}

func (r *LikeRepo) RemoveByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.RecipeLike{})
	return res.RowsAffected, res.Error
}

// LikedBy recipeID -> userIDs，每个请求的 id 都有条目
func (r *LikeRepo) LikedBy(ctx context.Context, recipeIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(recipeIDs))
	for _, id := range recipeIDs {
		out[id] = []string{}
	}
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []domain.RecipeLike
	err := r.db.WithContext(ctx).Where("recipe_id IN ?", recipeIDs).
		Order("created_at, user_id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, l := range rows {
		out[l.RecipeID] = append(out[l.RecipeID], l.UserID)
	}
	return out, nil
}

func (r *LikeRepo) LikedRecipeIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.RecipeLike{}).
		Where("user_id = ?", userID).Order("created_at, recipe_id").Pluck("recipe_id", &ids).Error
	return nonNil(ids), err
}

func (r *LikeRepo) PruneDangling(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id NOT IN (?) OR recipe_id NOT IN (?)",
			r.db.Model(&domain.User{}).Select("id"),
			r.db.Model(&domain.Recipe{}).Select("id")).
		Delete(&domain.RecipeLike{})
	return res.RowsAffected, res.Error
}
