package recipe

import "github.com/maximov-569/foodgram-project-react/internal/domain"

// IngredientAmountRequest — пара (id ингредиента, количество) в записи
// рецепта. Amount — указатель, чтобы отличить отсутствующее поле от нуля.
type IngredientAmountRequest struct {
	ID     int64 `json:"id"`
	Amount *int  `json:"amount"`
}

// WriteRecipeRequest — входной payload создания и частичного обновления
// рецепта. При PATCH nil-поля означают "не менять"; непустые наборы
// tags/ingredients заменяют прежние целиком.
type WriteRecipeRequest struct {
	Ingredients []IngredientAmountRequest `json:"ingredients"`
	Tags        []int64                   `json:"tags"`
	Image       string                    `json:"image"`
	Name        string                    `json:"name"`
	Text        string                    `json:"text"`
	CookingTime *int                      `json:"cooking_time"`
}

// AuthorResponse — вложенная проекция автора рецепта
type AuthorResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// IngredientAmountResponse — ингредиент рецепта: поля справочника,
// развёрнутые из join-строки, плюс количество.
type IngredientAmountResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// RecipeResponse — полная проекция рецепта. is_favorited и
// is_in_shopping_cart вычисляются для текущего пользователя,
// для анонима всегда false.
type RecipeResponse struct {
	ID               int64                      `json:"id"`
	Tags             []domain.Tag               `json:"tags"`
	Author           AuthorResponse             `json:"author"`
	Ingredients      []IngredientAmountResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
}

// ShortRecipeResponse — краткая проекция для ответов favorite/shopping_cart
type ShortRecipeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// RecipeListResponse — постраничный список рецептов
type RecipeListResponse struct {
	Recipes []RecipeResponse `json:"recipes"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

func toShortResponse(r *domain.Recipe) ShortRecipeResponse {
	return ShortRecipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}

func toIngredientResponses(entries []domain.IngredientToRecipe) []IngredientAmountResponse {
	out := make([]IngredientAmountResponse, len(entries))
	for i, e := range entries {
		out[i] = IngredientAmountResponse{
			ID:     e.IngredientID,
			Amount: e.Amount,
		}
		if e.Ingredient != nil {
			out[i].Name = e.Ingredient.Name
			out[i].MeasurementUnit = e.Ingredient.MeasurementUnit
		}
	}
	return out
}
