package domain

import "time"

// Favorite представляет связь пользователя с избранным рецептом.
// Каждая запись означает, что пользователь добавил рецепт в избранное.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_recipe"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_user_recipe"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Virtual fields для preload
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Recipe *Recipe `json:"recipe,omitempty" gorm:"foreignKey:RecipeID"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCart — корзина покупок, одна на пользователя.
// Создаётся лениво при первом добавлении рецепта.
type ShoppingCart struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Recipes []Recipe `json:"recipes,omitempty" gorm:"many2many:shopping_cart_recipes"`
}

func (ShoppingCart) TableName() string {
	return "shopping_carts"
}
