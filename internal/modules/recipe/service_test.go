package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormsqlite "gorm.io/driver/sqlite"

	"github.com/maximov-569/foodgram-project-react/internal/database"
	"github.com/maximov-569/foodgram-project-react/internal/domain"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

type fakeImageStore struct{}

func (fakeImageStore) SaveBase64(payload string) (string, error) {
	if payload == "broken" {
		return "", errors.New("invalid base64 image")
	}
	return "recipes/images/test.png", nil
}

type testEnv struct {
	db        *gorm.DB
	svc       *Service
	favorites repository.FavoriteRepository
	carts     repository.ShoppingCartRepository
}

func setupTestService(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:recipe_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	favorites := repository.NewFavoriteRepository(db)
	carts := repository.NewShoppingCartRepository(db)
	svc := NewService(
		repository.NewRecipeRepository(db),
		repository.NewTagRepository(db),
		repository.NewIngredientRepository(db),
		favorites,
		carts,
		repository.NewSubscriptionRepository(db),
		fakeImageStore{},
	)
	return &testEnv{db: db, svc: svc, favorites: favorites, carts: carts}
}

func (e *testEnv) seedCatalog(t *testing.T) (tagIDs []int64, flourID, saltID, sugarID int64) {
	t.Helper()

	tags := []domain.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
	}
	if err := e.db.Create(&tags).Error; err != nil {
		t.Fatalf("failed to seed tags: %v", err)
	}

	ingredients := []domain.Ingredient{
		{Name: "Flour", MeasurementUnit: "g"},
		{Name: "Salt", MeasurementUnit: "g"},
		{Name: "Sugar", MeasurementUnit: "g"},
	}
	if err := e.db.Create(&ingredients).Error; err != nil {
		t.Fatalf("failed to seed ingredients: %v", err)
	}

	return []int64{tags[0].ID, tags[1].ID}, ingredients[0].ID, ingredients[1].ID, ingredients[2].ID
}

func (e *testEnv) seedUser(t *testing.T, email, username string) int64 {
	t.Helper()
	user := domain.User{
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func intPtr(v int) *int { return &v }

func writeRequest(name string, tagIDs []int64, entries ...IngredientAmountRequest) WriteRecipeRequest {
	return WriteRecipeRequest{
		Ingredients: entries,
		Tags:        tagIDs,
		Image:       "data:image/png;base64,AAAA",
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: intPtr(30),
	}
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields[field]; !ok {
		t.Fatalf("expected validation error for field %q, got %v", field, vErr.Fields)
	}
}

func TestCreateRejectsEmptyTags(t *testing.T) {
	env := setupTestService(t)
	_, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", nil, IngredientAmountRequest{ID: flourID, Amount: intPtr(200)})

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "tags")
}

func TestCreateRejectsDuplicateTags(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", []int64{tagIDs[0], tagIDs[0]},
		IngredientAmountRequest{ID: flourID, Amount: intPtr(200)})

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "tags")
}

func TestCreateRejectsDuplicateIngredients(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs,
		IngredientAmountRequest{ID: flourID, Amount: intPtr(200)},
		IngredientAmountRequest{ID: flourID, Amount: intPtr(100)})

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "ingredients")
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs,
		IngredientAmountRequest{ID: flourID, Amount: intPtr(0)})

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "amount")
}

func TestCreateRejectsUnknownIngredient(t *testing.T) {
	env := setupTestService(t)
	tagIDs, _, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs,
		IngredientAmountRequest{ID: 9999, Amount: intPtr(10)})

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "ingredients")
}

func TestCreateRejectsNonPositiveCookingTime(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs,
		IngredientAmountRequest{ID: flourID, Amount: intPtr(200)})
	req.CookingTime = intPtr(0)

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "cooking_time")
}

func TestCreateAccumulatesAllFailures(t *testing.T) {
	env := setupTestService(t)
	env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := WriteRecipeRequest{
		Image:       "data:image/png;base64,AAAA",
		Name:        "Bread",
		Text:        "Mix and bake.",
		CookingTime: intPtr(0),
	}

	_, err := env.svc.Create(context.Background(), authorID, req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"tags", "ingredients", "cooking_time"} {
		if _, ok := vErr.Fields[field]; !ok {
			t.Fatalf("expected accumulated error for %q, got %v", field, vErr.Fields)
		}
	}
}

func TestCreateRoundTripKeepsAmounts(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, saltID, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs[:1],
		IngredientAmountRequest{ID: flourID, Amount: intPtr(200)},
		IngredientAmountRequest{ID: saltID, Amount: intPtr(5)})

	created, err := env.svc.Create(context.Background(), authorID, req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := env.svc.Get(context.Background(), 0, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got.Ingredients) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(got.Ingredients))
	}

	amounts := map[string]int{}
	for _, ing := range got.Ingredients {
		amounts[ing.Name] = ing.Amount
	}
	if amounts["Flour"] != 200 || amounts["Salt"] != 5 {
		t.Fatalf("unexpected amounts: %v", amounts)
	}
	if len(got.Tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(got.Tags))
	}
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, saltID, sugarID := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)},
			IngredientAmountRequest{ID: saltID, Amount: intPtr(5)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = env.svc.Update(context.Background(), authorID, created.ID, WriteRecipeRequest{
		Ingredients: []IngredientAmountRequest{{ID: sugarID, Amount: intPtr(50)}},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, err := env.svc.Get(context.Background(), 0, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got.Ingredients) != 1 {
		t.Fatalf("expected 1 ingredient after replace, got %d", len(got.Ingredients))
	}
	if got.Ingredients[0].Name != "Sugar" || got.Ingredients[0].Amount != 50 {
		t.Fatalf("unexpected ingredient after replace: %+v", got.Ingredients[0])
	}
}

func TestUpdateKeepsScalarsWhenNotSupplied(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := env.svc.Update(context.Background(), authorID, created.ID, WriteRecipeRequest{
		Name: "Rye Bread",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Rye Bread" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Text != created.Text || updated.CookingTime != created.CookingTime {
		t.Fatalf("scalars changed unexpectedly: %+v", updated)
	}
	if len(updated.Ingredients) != 1 {
		t.Fatalf("ingredients changed unexpectedly: %+v", updated.Ingredients)
	}
}

func TestUpdateAndDeleteForbiddenForNonAuthor(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	otherID := env.seedUser(t, "other@example.com", "other")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = env.svc.Update(context.Background(), otherID, created.ID, WriteRecipeRequest{Name: "Stolen"})
	if !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor on update, got %v", err)
	}

	if err := env.svc.Delete(context.Background(), otherID, created.ID); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor on delete, got %v", err)
	}

	got, err := env.svc.Get(context.Background(), 0, created.ID)
	if err != nil {
		t.Fatalf("recipe should still exist: %v", err)
	}
	if got.Name != "Bread" {
		t.Fatalf("recipe changed by non-author: %q", got.Name)
	}
}

func TestFavoriteTwiceConflicts(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := env.svc.Favorite(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("first Favorite returned error: %v", err)
	}
	_, err = env.svc.Favorite(context.Background(), userID, created.ID)
	if !errors.Is(err, repository.ErrAlreadyFavorite) {
		t.Fatalf("expected ErrAlreadyFavorite, got %v", err)
	}

	if err := env.svc.Unfavorite(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("Unfavorite returned error: %v", err)
	}
	if err := env.svc.Unfavorite(context.Background(), userID, created.ID); !errors.Is(err, repository.ErrNotFavorite) {
		t.Fatalf("expected ErrNotFavorite, got %v", err)
	}
}

func TestCartToggleConflicts(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := env.svc.AddToCart(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}
	if _, err := env.svc.AddToCart(context.Background(), userID, created.ID); !errors.Is(err, repository.ErrAlreadyInCart) {
		t.Fatalf("expected ErrAlreadyInCart, got %v", err)
	}
	if err := env.svc.RemoveFromCart(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("RemoveFromCart returned error: %v", err)
	}
	if err := env.svc.RemoveFromCart(context.Background(), userID, created.ID); !errors.Is(err, repository.ErrNotInCart) {
		t.Fatalf("expected ErrNotInCart, got %v", err)
	}
}

func TestShoppingListSumsAcrossCartRecipes(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, sugarID := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	first, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Cake", tagIDs[:1],
			IngredientAmountRequest{ID: sugarID, Amount: intPtr(100)},
			IngredientAmountRequest{ID: flourID, Amount: intPtr(300)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Jam", tagIDs[:1],
			IngredientAmountRequest{ID: sugarID, Amount: intPtr(50)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	for _, id := range []int64{first.ID, second.ID} {
		if _, err := env.svc.AddToCart(context.Background(), userID, id); err != nil {
			t.Fatalf("AddToCart returned error: %v", err)
		}
	}

	text, err := env.svc.BuildShoppingList(context.Background(), userID)
	if err != nil {
		t.Fatalf("BuildShoppingList returned error: %v", err)
	}

	if strings.Count(text, "Sugar") != 1 {
		t.Fatalf("expected a single merged Sugar line, got:\n%s", text)
	}
	if !strings.Contains(text, "Sugar - 150 g.") {
		t.Fatalf("expected summed Sugar line, got:\n%s", text)
	}
	if !strings.Contains(text, "Flour - 300 g.") {
		t.Fatalf("expected Flour line, got:\n%s", text)
	}
}

func TestProjectionFlagsFalseForAnonymous(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := env.svc.Favorite(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("Favorite returned error: %v", err)
	}
	if _, err := env.svc.AddToCart(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}

	anon, err := env.svc.Get(context.Background(), 0, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if anon.IsFavorited || anon.IsInShoppingCart {
		t.Fatalf("anonymous viewer must see false flags, got %+v", anon)
	}

	viewer, err := env.svc.Get(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !viewer.IsFavorited || !viewer.IsInShoppingCart {
		t.Fatalf("authenticated viewer must see true flags, got %+v", viewer)
	}
}

func TestListFilterByFavorited(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	liked, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Liked", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(10)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	other, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Other", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(20)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := env.svc.Favorite(context.Background(), userID, liked.ID); err != nil {
		t.Fatalf("Favorite returned error: %v", err)
	}

	truthy := true
	got, _, err := env.svc.List(context.Background(), repository.RecipeFilters{
		ViewerID:    userID,
		IsFavorited: &truthy,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != liked.ID {
		t.Fatalf("expected only favorited recipe, got %+v", got)
	}

	falsy := false
	got, _, err = env.svc.List(context.Background(), repository.RecipeFilters{
		ViewerID:    userID,
		IsFavorited: &falsy,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != other.ID {
		t.Fatalf("expected complement of favorited, got %+v", got)
	}

	// Для анонима булев фильтр — no-op.
	got, _, err = env.svc.List(context.Background(), repository.RecipeFilters{
		IsFavorited: &truthy,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected unfiltered set for anonymous, got %d recipes", len(got))
	}
}

func TestListFilterByTagSlug(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	breakfast, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Porridge", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(10)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Steak", tagIDs[1:],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(20)})); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, _, err := env.svc.List(context.Background(), repository.RecipeFilters{
		TagSlugs: []string{"breakfast"},
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || got[0].ID != breakfast.ID {
		t.Fatalf("expected only breakfast recipe, got %+v", got)
	}
}

func TestDeleteCascades(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")
	userID := env.seedUser(t, "fan@example.com", "fan")

	created, err := env.svc.Create(context.Background(), authorID,
		writeRequest("Bread", tagIDs[:1],
			IngredientAmountRequest{ID: flourID, Amount: intPtr(200)}))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.svc.Favorite(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("Favorite returned error: %v", err)
	}
	if _, err := env.svc.AddToCart(context.Background(), userID, created.ID); err != nil {
		t.Fatalf("AddToCart returned error: %v", err)
	}

	if err := env.svc.Delete(context.Background(), authorID, created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if _, err := env.svc.Get(context.Background(), 0, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound after delete, got %v", err)
	}

	var joinCount int64
	if err := env.db.Model(&domain.IngredientToRecipe{}).Where("recipe_id = ?", created.ID).Count(&joinCount).Error; err != nil {
		t.Fatalf("count join rows: %v", err)
	}
	if joinCount != 0 {
		t.Fatalf("expected join rows removed, got %d", joinCount)
	}

	exists, err := env.favorites.Exists(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("favorites.Exists returned error: %v", err)
	}
	if exists {
		t.Fatal("expected favorite removed with recipe")
	}

	contains, err := env.carts.Contains(context.Background(), userID, created.ID)
	if err != nil {
		t.Fatalf("carts.Contains returned error: %v", err)
	}
	if contains {
		t.Fatal("expected cart membership removed with recipe")
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	env := setupTestService(t)
	tagIDs, flourID, _, _ := env.seedCatalog(t)
	authorID := env.seedUser(t, "author@example.com", "author")

	req := writeRequest("Bread", tagIDs[:1],
		IngredientAmountRequest{ID: flourID, Amount: intPtr(200)})
	if _, err := env.svc.Create(context.Background(), authorID, req); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err := env.svc.Create(context.Background(), authorID, req)
	requireValidationField(t, err, "name")
}
