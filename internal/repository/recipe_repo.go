package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
)

// RecipeFilters — фильтры списка рецептов из query-параметров.
// ViewerID = 0 означает анонимного пользователя: булевы фильтры
// в этом случае не применяются.
type RecipeFilters struct {
	AuthorID         int64
	TagSlugs         []string
	IsFavorited      *bool
	IsInShoppingCart *bool
	ViewerID         int64
	Limit            int
	Offset           int
}

// RecipeRepository отвечает за агрегат рецепта: строку рецепта,
// набор тегов и join-строки ингредиентов как единое целое.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe, tags []domain.Tag, entries []domain.IngredientToRecipe) error
	Update(ctx context.Context, recipe *domain.Recipe, tags []domain.Tag, entries []domain.IngredientToRecipe) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Recipe, error)
	List(ctx context.Context, f RecipeFilters) ([]domain.Recipe, int64, error)
	ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create сохраняет рецепт, набор тегов и join-строки одной транзакцией:
// частично записанный агрегат не должен быть наблюдаем.
func (r *recipeRepository) Create(ctx context.Context, recipe *domain.Recipe, tags []domain.Tag, entries []domain.IngredientToRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Create(recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		for i := range entries {
			entries[i].RecipeID = recipe.ID
		}
		return tx.Create(&entries).Error
	})
}

// Update обновляет строку рецепта; tags и entries, если не nil,
// заменяют прежние наборы целиком (delete + bulk insert).
func (r *recipeRepository) Update(ctx context.Context, recipe *domain.Recipe, tags []domain.Tag, entries []domain.IngredientToRecipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Ingredients", "Author").Save(recipe).Error; err != nil {
			return err
		}
		if tags != nil {
			if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if entries != nil {
			if err := tx.Where("recipe_id = ?", recipe.ID).
				Delete(&domain.IngredientToRecipe{}).Error; err != nil {
				return err
			}
			for i := range entries {
				entries[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete удаляет рецепт вместе с join-строками, избранным
// и членством в корзинах.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.IngredientToRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM shopping_cart_recipes WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, id).Error
	})
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id).Error
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(ctx context.Context, f RecipeFilters) ([]domain.Recipe, int64, error) {
	var recipes []domain.Recipe
	var total int64

	base := r.db.WithContext(ctx).Model(&domain.Recipe{})

	if f.AuthorID > 0 {
		base = base.Where("recipes.author_id = ?", f.AuthorID)
	}

	if len(f.TagSlugs) > 0 {
		base = base.Where(
			"recipes.id IN (?)",
			r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs),
		)
	}

	// Булевы фильтры — no-op для анонимного пользователя.
	if f.ViewerID > 0 && f.IsFavorited != nil {
		sub := r.db.Table("favorites").
			Select("favorites.recipe_id").
			Where("favorites.user_id = ?", f.ViewerID)
		if *f.IsFavorited {
			base = base.Where("recipes.id IN (?)", sub)
		} else {
			base = base.Where("recipes.id NOT IN (?)", sub)
		}
	}

	if f.ViewerID > 0 && f.IsInShoppingCart != nil {
		sub := r.db.Table("shopping_cart_recipes").
			Select("shopping_cart_recipes.recipe_id").
			Joins("JOIN shopping_carts ON shopping_carts.id = shopping_cart_recipes.shopping_cart_id").
			Where("shopping_carts.user_id = ?", f.ViewerID)
		if *f.IsInShoppingCart {
			base = base.Where("recipes.id IN (?)", sub)
		} else {
			base = base.Where("recipes.id NOT IN (?)", sub)
		}
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.pub_date DESC, recipes.id DESC")

	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}

	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}

	return recipes, total, nil
}

func (r *recipeRepository) ListShortByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	query := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&recipes).Error
	return recipes, err
}

func (r *recipeRepository) CountByAuthor(ctx context.Context, authorID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

// IsUniqueViolation распознаёт нарушение уникального индекса:
// код 23505 у postgres, ErrDuplicatedKey у gorm-транслятора,
// текст "UNIQUE constraint failed" у драйвера sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
