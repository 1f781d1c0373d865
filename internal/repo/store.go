package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"hungrypanda/internal/domain"
)

// Store gorm 实现；在事务里 db 即 tx
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Users() domain.UserRepository { return NewUserRepo(s.db) }
func (s *Store) Recipes() domain.RecipeRepository { return &RecipeRepo{db: s.db} }
func (s *Store) Likes() domain.LikeRepository { return &LikeRepo{db: s.db} }

func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Recipe{}, &domain.RecipeLike{})
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrDuplicate
	default:
		return err
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
