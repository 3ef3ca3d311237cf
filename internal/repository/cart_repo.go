package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
)

var ErrAlreadyInCart = errors.New("recipe already in shopping cart")
var ErrNotInCart = errors.New("recipe not in shopping cart")

// ShoppingListItem — одна строка агрегированного списка покупок:
// ингредиент и сумма его количеств по всем рецептам корзины.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int
}

// ShoppingCartRepository управляет корзиной пользователя.
// Корзина создаётся лениво при первом добавлении.
type ShoppingCartRepository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.ShoppingCart, error)
	AddRecipe(ctx context.Context, userID, recipeID int64) error
	RemoveRecipe(ctx context.Context, userID, recipeID int64) error
	Contains(ctx context.Context, userID, recipeID int64) (bool, error)
	AggregateIngredients(ctx context.Context, userID int64) ([]ShoppingListItem, error)
}

type shoppingCartRepository struct {
	db *gorm.DB
}

func NewShoppingCartRepository(db *gorm.DB) ShoppingCartRepository {
	return &shoppingCartRepository{db: db}
}

func (r *shoppingCartRepository) GetOrCreate(ctx context.Context, userID int64) (*domain.ShoppingCart, error) {
	var cart domain.ShoppingCart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = domain.ShoppingCart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		if IsUniqueViolation(err) {
			// Конкурентное создание: перечитываем уже вставленную корзину.
			if rerr := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; rerr == nil {
				return &cart, nil
			}
		}
		return nil, err
	}
	return &cart, nil
}

func (r *shoppingCartRepository) AddRecipe(ctx context.Context, userID, recipeID int64) error {
	cart, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	contains, err := r.Contains(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if contains {
		return ErrAlreadyInCart
	}

	return r.db.WithContext(ctx).Model(cart).
		Association("Recipes").
		Append(&domain.Recipe{ID: recipeID})
}

func (r *shoppingCartRepository) RemoveRecipe(ctx context.Context, userID, recipeID int64) error {
	cart, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	contains, err := r.Contains(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !contains {
		return ErrNotInCart
	}

	return r.db.WithContext(ctx).Model(cart).
		Association("Recipes").
		Delete(&domain.Recipe{ID: recipeID})
}

func (r *shoppingCartRepository) Contains(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("shopping_cart_recipes").
		Joins("JOIN shopping_carts ON shopping_carts.id = shopping_cart_recipes.shopping_cart_id").
		Where("shopping_carts.user_id = ? AND shopping_cart_recipes.recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AggregateIngredients суммирует количество каждого ингредиента
// по всем рецептам в корзине пользователя (GROUP BY по ингредиенту).
func (r *shoppingCartRepository) AggregateIngredients(ctx context.Context, userID int64) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := r.db.WithContext(ctx).
		Table("ingredient_to_recipes").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(ingredient_to_recipes.amount) AS total_amount").
		Joins("JOIN ingredients ON ingredients.id = ingredient_to_recipes.ingredient_id").
		Joins("JOIN shopping_cart_recipes ON shopping_cart_recipes.recipe_id = ingredient_to_recipes.recipe_id").
		Joins("JOIN shopping_carts ON shopping_carts.id = shopping_cart_recipes.shopping_cart_id").
		Where("shopping_carts.user_id = ?", userID).
		Group("ingredients.id, ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&items).Error
	return items, err
}
