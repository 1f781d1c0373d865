package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string      `gorm:"primaryKey;size:36" json:"id"`
	Email        string      `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string      `gorm:"size:100;not null" json:"-"`
	Name         string      `gorm:"size:64;not null" json:"name"`
	UserName     string      `gorm:"size:64;not null" json:"userName"`
	Age          int         `json:"age"`
	Location     string      `gorm:"size:128;not null" json:"location"`
	Image        string      `gorm:"size:255" json:"image"`
	SocialMedia  SocialLinks `gorm:"type:text" json:"socialMedia"`
	Role         string      `gorm:"size:16;not null;default:user" json:"role"`
	TotalRecipes int         `gorm:"not null;default:0" json:"totalRecipes"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	// 派生字段：recipes.creator_id / recipe_likes 反查
	Recipes      []string `gorm:"-" json:"recipes"`
	LikedRecipes []string `gorm:"-" json:"likedRecipes"`
}
