package users

import "github.com/maximov-569/foodgram-project-react/internal/domain"

// UserResponse — проекция пользователя с вычисляемым is_subscribed:
// подписан ли текущий пользователь на этого. Для анонима всегда false.
type UserResponse struct {
	Email        string `json:"email"`
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ShortRecipe — краткая проекция рецепта для списка подписок
type ShortRecipe struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionResponse — автор из списка подписок с его рецептами
type SubscriptionResponse struct {
	UserResponse
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// UserListResponse — постраничный список пользователей
type UserListResponse struct {
	Users   []UserResponse `json:"users"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
}

// SubscriptionListResponse — постраничный список подписок
type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Total         int64                  `json:"total"`
	Page          int                    `json:"page"`
	PerPage       int                    `json:"per_page"`
}

func toUserResponse(u *domain.User, isSubscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

func toShortRecipes(recipes []domain.Recipe) []ShortRecipe {
	out := make([]ShortRecipe, len(recipes))
	for i, r := range recipes {
		out[i] = ShortRecipe{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.Image,
			CookingTime: r.CookingTime,
		}
	}
	return out
}
