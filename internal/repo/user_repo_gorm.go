package repo

import (
	"context"

	"gorm.io/gorm"

	"hungrypanda/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return mapErr(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, mapErr(err)
	}
	if err := r.attach(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// attach 填充 recipes（按创建顺序）和 likedRecipes
func (r *UserRepo) attach(ctx context.Context, u *domain.User) error {
	var owned []string
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("creator_id = ?", u.ID).Order("created_at, id").Pluck("id", &owned).Error
	if err != nil {
		return err
	}
	liked, err := (&LikeRepo{db: r.db}).LikedRecipeIDs(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Recipes = nonNil(owned)
	u.LikedRecipes = liked
	return nil
}

func (r *UserRepo) UpdateProfile(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&domain.User{ID: u.ID}).
		Select("name", "email", "user_name", "age", "location", "image", "social_media", "updated_at").
		Updates(u)
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) AdjustTotalRecipes(ctx context.Context, id string, delta int) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		UpdateColumn("total_recipes", gorm.Expr("total_recipes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	var users []domain.User
	tx := r.db.WithContext(ctx).Model(&domain.User{})
	if q != "" {
		like := "%" + q + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ? OR user_name LIKE ?", like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := tx.Offset(offset).Limit(limit).Order("created_at desc").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

const ownedCount = "(SELECT COUNT(*) FROM recipes WHERE recipes.creator_id = users.id)"

func (r *UserRepo) RecountRecipes(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("total_recipes <> " + ownedCount).
		UpdateColumn("total_recipes", gorm.Expr(ownedCount))
	return res.RowsAffected, res.Error
}
