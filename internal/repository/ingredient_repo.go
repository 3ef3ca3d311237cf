package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
)

// IngredientRepository — справочник ингредиентов. Заполняется сидером,
// API отдаёт только чтение с поиском по имени.
type IngredientRepository interface {
	Search(ctx context.Context, name string) ([]domain.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*domain.Ingredient, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error)
	BulkCreate(ctx context.Context, ingredients []domain.Ingredient) error
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

// Search ищет сначала по префиксу, затем по подстроке; регистр не важен.
// Пустой запрос возвращает весь справочник.
func (r *ingredientRepository) Search(ctx context.Context, name string) ([]domain.Ingredient, error) {
	var ingredients []domain.Ingredient

	name = strings.TrimSpace(name)
	if name == "" {
		err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error
		return ingredients, err
	}

	pattern := strings.ToLower(name)
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern+"%").
		Order("name ASC").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	if len(ingredients) > 0 {
		return ingredients, nil
	}

	err = r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+pattern+"%").
		Order("name ASC").
		Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Ingredient, error) {
	var ingredients []domain.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) BulkCreate(ctx context.Context, ingredients []domain.Ingredient) error {
	if len(ingredients) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&ingredients, 500).Error
}
