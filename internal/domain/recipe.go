package domain

import "time"

// Recipe — центральная сущность. Владеет своими строками
// IngredientToRecipe (каскадное удаление), теги и ингредиенты —
// общие справочники.
type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AuthorID    int64     `json:"author_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Image       string    `json:"image" gorm:"not null"`
	Text        string    `json:"text" gorm:"size:600;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	PubDate     time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	Author      *User                `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Tags        []Tag                `json:"tags,omitempty" gorm:"many2many:recipe_tags"`
	Ingredients []IngredientToRecipe `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// IngredientToRecipe — join-строка "ингредиент в рецепте" с количеством.
// Пара (recipe_id, ingredient_id) уникальна, amount > 0 проверяется
// при записи. При обновлении рецепта набор заменяется целиком.
type IngredientToRecipe struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int   `json:"amount" gorm:"not null"`

	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID"`
}

func (IngredientToRecipe) TableName() string {
	return "ingredient_to_recipes"
}
