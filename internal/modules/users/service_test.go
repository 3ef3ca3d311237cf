package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormsqlite "gorm.io/driver/sqlite"

	"github.com/maximov-569/foodgram-project-react/internal/database"
	"github.com/maximov-569/foodgram-project-react/internal/domain"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

func setupTestService(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:users_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	svc := NewService(
		repository.NewUserRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewRecipeRepository(db),
	)
	return db, svc
}

func seedUser(t *testing.T, db *gorm.DB, email, username string) int64 {
	t.Helper()
	user := domain.User{
		Email:        email,
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user.ID
}

func seedRecipes(t *testing.T, db *gorm.DB, authorID int64, names ...string) {
	t.Helper()
	for _, name := range names {
		recipe := domain.Recipe{
			AuthorID:    authorID,
			Name:        name,
			Image:       "recipes/images/test.png",
			Text:        "Cook it.",
			CookingTime: 10,
		}
		if err := db.Omit("Tags", "Ingredients", "Author").Create(&recipe).Error; err != nil {
			t.Fatalf("failed to seed recipe: %v", err)
		}
	}
}

func TestSubscribeToSelfRejected(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")

	_, err := svc.Subscribe(context.Background(), userID, userID, 0)
	if !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
}

func TestSubscribeTwiceConflicts(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")
	authorID := seedUser(t, db, "author@example.com", "author")

	if _, err := svc.Subscribe(context.Background(), userID, authorID, 0); err != nil {
		t.Fatalf("first Subscribe returned error: %v", err)
	}
	_, err := svc.Subscribe(context.Background(), userID, authorID, 0)
	if !errors.Is(err, repository.ErrAlreadySubscribed) {
		t.Fatalf("expected ErrAlreadySubscribed, got %v", err)
	}
}

func TestUnsubscribeWhenNotSubscribed(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")
	authorID := seedUser(t, db, "author@example.com", "author")

	err := svc.Unsubscribe(context.Background(), userID, authorID)
	if !errors.Is(err, repository.ErrNotSubscribed) {
		t.Fatalf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestSubscribeReturnsAuthorRecipes(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")
	authorID := seedUser(t, db, "author@example.com", "author")
	seedRecipes(t, db, authorID, "Bread", "Soup", "Cake")

	sub, err := svc.Subscribe(context.Background(), userID, authorID, 0)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if !sub.IsSubscribed {
		t.Fatal("expected is_subscribed true in subscription response")
	}
	if sub.RecipesCount != 3 {
		t.Fatalf("expected recipes_count 3, got %d", sub.RecipesCount)
	}
	if len(sub.Recipes) != 3 {
		t.Fatalf("expected 3 nested recipes, got %d", len(sub.Recipes))
	}
}

func TestSubscriptionsHonorRecipesLimit(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")
	authorID := seedUser(t, db, "author@example.com", "author")
	seedRecipes(t, db, authorID, "Bread", "Soup", "Cake")

	if _, err := svc.Subscribe(context.Background(), userID, authorID, 0); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	subs, total, err := svc.Subscriptions(context.Background(), userID, 2, 0, 0)
	if err != nil {
		t.Fatalf("Subscriptions returned error: %v", err)
	}
	if total != 1 || len(subs) != 1 {
		t.Fatalf("expected a single subscription, got total=%d len=%d", total, len(subs))
	}
	if len(subs[0].Recipes) != 2 {
		t.Fatalf("expected recipes trimmed to 2, got %d", len(subs[0].Recipes))
	}
	// recipes_count считает все рецепты автора, не усечённый список.
	if subs[0].RecipesCount != 3 {
		t.Fatalf("expected recipes_count 3, got %d", subs[0].RecipesCount)
	}
}

func TestGetUserSubscriptionFlag(t *testing.T) {
	db, svc := setupTestService(t)
	userID := seedUser(t, db, "user@example.com", "user")
	authorID := seedUser(t, db, "author@example.com", "author")

	if _, err := svc.Subscribe(context.Background(), userID, authorID, 0); err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	got, err := svc.GetUser(context.Background(), userID, authorID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if !got.IsSubscribed {
		t.Fatal("expected is_subscribed true for subscriber")
	}

	anon, err := svc.GetUser(context.Background(), 0, authorID)
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if anon.IsSubscribed {
		t.Fatal("expected is_subscribed false for anonymous viewer")
	}
}

func TestParseRecipesLimitIgnoresInvalid(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]int{
		"":    0,
		"abc": 0,
		"-3":  0,
		"0":   0,
		"5":   5,
		"5.5": 0,
		"1e2": 0,
	}
	for raw, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/users/subscriptions/?recipes_limit="+url.QueryEscape(raw), nil)
		if got := parseRecipesLimit(c); got != want {
			t.Fatalf("parseRecipesLimit(%q) = %d, want %d", raw, got, want)
		}
	}
}
