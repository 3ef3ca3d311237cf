package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/maximov-569/foodgram-project-react/internal/domain"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

// ImageStore сохраняет base64-изображение и возвращает путь файла.
type ImageStore interface {
	SaveBase64(payload string) (string, error)
}

// Service реализует агрегат рецепта: валидацию записи, атомарное
// сохранение, проекции чтения и toggle-операции избранного и корзины.
type Service struct {
	recipes       repository.RecipeRepository
	tags          repository.TagRepository
	ingredients   repository.IngredientRepository
	favorites     repository.FavoriteRepository
	carts         repository.ShoppingCartRepository
	subscriptions repository.SubscriptionRepository
	images        ImageStore
}

func NewService(
	recipes repository.RecipeRepository,
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	favorites repository.FavoriteRepository,
	carts repository.ShoppingCartRepository,
	subscriptions repository.SubscriptionRepository,
	images ImageStore,
) *Service {
	return &Service{
		recipes:       recipes,
		tags:          tags,
		ingredients:   ingredients,
		favorites:     favorites,
		carts:         carts,
		subscriptions: subscriptions,
		images:        images,
	}
}

// Create валидирует payload (накапливая все ошибки), сохраняет рецепт
// с тегами и join-строками одной транзакцией и возвращает проекцию.
func (s *Service) Create(ctx context.Context, authorID int64, req WriteRecipeRequest) (*RecipeResponse, error) {
	tags, entries, fields := s.validateWrite(ctx, req, true)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	imagePath, err := s.images.SaveBase64(req.Image)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"image": "Invalid base64 image.",
		}}
	}

	recipe := &domain.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Image:       imagePath,
		Text:        req.Text,
		CookingTime: *req.CookingTime,
	}

	if err := s.recipes.Create(ctx, recipe, tags, entries); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ValidationError{Fields: map[string]string{
				"name": "Recipe with this name already exists.",
			}}
		}
		return nil, err
	}

	return s.Get(ctx, authorID, recipe.ID)
}

// Update обновляет только переданные поля; наборы tags и ingredients,
// если присутствуют в payload, заменяются целиком.
func (s *Service) Update(ctx context.Context, userID, recipeID int64, req WriteRecipeRequest) (*RecipeResponse, error) {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	tags, entries, fields := s.validateWrite(ctx, req, false)
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if req.Name != "" {
		existing.Name = strings.TrimSpace(req.Name)
	}
	if req.Text != "" {
		existing.Text = req.Text
	}
	if req.CookingTime != nil {
		existing.CookingTime = *req.CookingTime
	}
	if req.Image != "" {
		imagePath, err := s.images.SaveBase64(req.Image)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{
				"image": "Invalid base64 image.",
			}}
		}
		existing.Image = imagePath
	}

	if req.Tags == nil {
		tags = nil
	}
	if req.Ingredients == nil {
		entries = nil
	}

	if err := s.recipes.Update(ctx, existing, tags, entries); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ValidationError{Fields: map[string]string{
				"name": "Recipe with this name already exists.",
			}}
		}
		return nil, err
	}

	return s.Get(ctx, userID, recipeID)
}

func (s *Service) Delete(ctx context.Context, userID, recipeID int64) error {
	existing, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if existing.AuthorID != userID {
		return ErrNotAuthor
	}
	return s.recipes.Delete(ctx, recipeID)
}

func (s *Service) Get(ctx context.Context, viewerID, recipeID int64) (*RecipeResponse, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	return s.project(ctx, recipe, viewerID)
}

func (s *Service) List(ctx context.Context, f repository.RecipeFilters) ([]RecipeResponse, int64, error) {
	recipes, total, err := s.recipes.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := s.project(ctx, &recipes[i], f.ViewerID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

// Favorite добавляет рецепт в избранное. Повторное добавление —
// конфликт (repository.ErrAlreadyFavorite).
func (s *Service) Favorite(ctx context.Context, userID, recipeID int64) (*ShortRecipeResponse, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.favorites.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	resp := toShortResponse(recipe)
	return &resp, nil
}

func (s *Service) Unfavorite(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.favorites.Remove(ctx, userID, recipeID)
}

// AddToCart кладёт рецепт в корзину; корзина создаётся лениво.
func (s *Service) AddToCart(ctx context.Context, userID, recipeID int64) (*ShortRecipeResponse, error) {
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.AddRecipe(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	resp := toShortResponse(recipe)
	return &resp, nil
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.carts.RemoveRecipe(ctx, userID, recipeID)
}

// BuildShoppingList собирает текстовый список покупок: сумма количества
// каждого ингредиента по всем рецептам корзины, по строке на ингредиент.
func (s *Service) BuildShoppingList(ctx context.Context, userID int64) (string, error) {
	items, err := s.carts.AggregateIngredients(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Список покупок:")
	for _, item := range items {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s - %d %s.", item.Name, item.TotalAmount, item.MeasurementUnit))
	}
	return b.String(), nil
}

// validateWrite применяет политику накопления: все нарушения собираются
// в карту "поле -> сообщение" и возвращаются разом.
func (s *Service) validateWrite(ctx context.Context, req WriteRecipeRequest, forCreate bool) ([]domain.Tag, []domain.IngredientToRecipe, map[string]string) {
	fields := make(map[string]string)

	if forCreate {
		if strings.TrimSpace(req.Name) == "" {
			fields["name"] = "This field is required."
		}
		if strings.TrimSpace(req.Text) == "" {
			fields["text"] = "This field is required."
		}
		if strings.TrimSpace(req.Image) == "" {
			fields["image"] = "This field is required."
		}
		if req.CookingTime == nil {
			fields["cooking_time"] = "This field is required."
		}
	}

	if req.CookingTime != nil && *req.CookingTime < 1 {
		fields["cooking_time"] = "Cooking time should be greater than 0."
	}

	var tags []domain.Tag
	if forCreate || req.Tags != nil {
		tags = s.validateTags(ctx, req.Tags, fields)
	}

	var entries []domain.IngredientToRecipe
	if forCreate || req.Ingredients != nil {
		entries = s.validateIngredients(ctx, req.Ingredients, fields)
	}

	return tags, entries, fields
}

func (s *Service) validateTags(ctx context.Context, ids []int64, fields map[string]string) []domain.Tag {
	if len(ids) == 0 {
		fields["tags"] = "This list may not be empty."
		return nil
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			fields["tags"] = "Tags must be unique."
			return nil
		}
		seen[id] = true
	}

	tags, err := s.tags.GetByIDs(ctx, ids)
	if err != nil || len(tags) != len(ids) {
		fields["tags"] = "One or more tags do not exist."
		return nil
	}
	return tags
}

func (s *Service) validateIngredients(ctx context.Context, items []IngredientAmountRequest, fields map[string]string) []domain.IngredientToRecipe {
	if len(items) == 0 {
		fields["ingredients"] = "This list may not be empty."
		return nil
	}

	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	entries := make([]domain.IngredientToRecipe, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			fields["ingredients"] = "Ingredients must be unique."
			return nil
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)

		if item.Amount == nil {
			fields["amount"] = "This field is required for each ingredient."
			continue
		}
		if *item.Amount <= 0 {
			fields["amount"] = "Amount should be greater than 0."
			continue
		}
		entries = append(entries, domain.IngredientToRecipe{
			IngredientID: item.ID,
			Amount:       *item.Amount,
		})
	}

	existing, err := s.ingredients.GetByIDs(ctx, ids)
	if err != nil || len(existing) != len(ids) {
		fields["ingredients"] = "One or more ingredients do not exist."
		return nil
	}
	if len(entries) != len(items) {
		return nil
	}
	return entries
}

func (s *Service) project(ctx context.Context, r *domain.Recipe, viewerID int64) (*RecipeResponse, error) {
	isFavorited := false
	isInCart := false
	isSubscribed := false

	if viewerID > 0 {
		var err error
		if isFavorited, err = s.favorites.Exists(ctx, viewerID, r.ID); err != nil {
			return nil, err
		}
		if isInCart, err = s.carts.Contains(ctx, viewerID, r.ID); err != nil {
			return nil, err
		}
		if isSubscribed, err = s.subscriptions.Exists(ctx, viewerID, r.AuthorID); err != nil {
			return nil, err
		}
	}

	author := AuthorResponse{ID: r.AuthorID, IsSubscribed: isSubscribed}
	if r.Author != nil {
		author.Email = r.Author.Email
		author.Username = r.Author.Username
		author.FirstName = r.Author.FirstName
		author.LastName = r.Author.LastName
	}

	tags := r.Tags
	if tags == nil {
		tags = []domain.Tag{}
	}

	return &RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      toIngredientResponses(r.Ingredients),
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}, nil
}
