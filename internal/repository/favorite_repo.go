package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
)

var ErrAlreadyFavorite = errors.New("recipe already in favorite")
var ErrNotFavorite = errors.New("recipe not in favorite")

// FavoriteRepository определяет методы для работы с избранным
type FavoriteRepository interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Exists(ctx context.Context, userID, recipeID int64) (bool, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add добавляет рецепт в избранное пользователя.
// Возвращает ошибку если рецепт уже в избранном.
func (r *favoriteRepository) Add(ctx context.Context, userID, recipeID int64) error {
	exists, err := r.Exists(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFavorite
	}

	err = r.db.WithContext(ctx).Create(&domain.Favorite{
		UserID:   userID,
		RecipeID: recipeID,
	}).Error
	if IsUniqueViolation(err) {
		// Гонка двух одинаковых запросов: уникальный индекс — последний рубеж.
		return ErrAlreadyFavorite
	}
	return err
}

// Remove удаляет рецепт из избранного пользователя.
// Возвращает ошибку если рецепта не было в избранном.
func (r *favoriteRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&domain.Favorite{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorite
	}
	return nil
}

// Exists проверяет, есть ли рецепт в избранном у пользователя.
// Используется для флага is_favorited в проекции рецепта.
func (r *favoriteRepository) Exists(ctx context.Context, userID, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Favorite{}).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
