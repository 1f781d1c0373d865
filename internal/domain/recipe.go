package domain

import "time"

type CookTime struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

type Recipe struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	CreatorID   string     `gorm:"index;size:36;not null" json:"creatorId"`
	Name        string     `gorm:"size:128;not null" json:"name"`
	Image       string     `gorm:"size:255;not null" json:"image"`
	CookTime    CookTime   `gorm:"embedded;embeddedPrefix:cook_" json:"cookTime"`
	Description string     `gorm:"type:text;not null" json:"description"`
	KeyIngred   StringList `gorm:"type:text" json:"keyIngred"`
	Ingredients StringList `gorm:"type:text" json:"ingredients"`
	Procedure   string     `gorm:"type:text;not null" json:"procedure"`
	Likes       int        `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// 派生字段：recipe_likes 反查
	LikedBy []string `gorm:"-" json:"likedBy"`
}

// RecipeLike (user, recipe) 唯一，likedBy / likedRecipes 都从这里推导
type RecipeLike struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	RecipeID  string    `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

func (RecipeLike) TableName() string { return "recipe_likes" }
