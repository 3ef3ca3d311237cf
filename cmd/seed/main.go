package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/maximov-569/foodgram-project-react/internal/config"
	"github.com/maximov-569/foodgram-project-react/internal/database"
	"github.com/maximov-569/foodgram-project-react/internal/domain"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM shopping_cart_recipes")
	db.Exec("DELETE FROM shopping_carts")
	db.Exec("DELETE FROM favorites")
	db.Exec("DELETE FROM ingredient_to_recipes")
	db.Exec("DELETE FROM recipe_tags")
	db.Exec("DELETE FROM recipes")
	db.Exec("DELETE FROM subscriptions")
	db.Exec("DELETE FROM ingredients")
	db.Exec("DELETE FROM tags")
	db.Exec("DELETE FROM users")

	ctx := context.Background()

	log.Println("Creating users...")
	users := []domain.User{
		{Email: "chef@foodgram.local", Username: "chef", FirstName: "Иван", LastName: "Поваров"},
		{Email: "guest@foodgram.local", Username: "guest", FirstName: "Мария", LastName: "Гостева"},
	}
	for i := range users {
		hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		users[i].PasswordHash = string(hash)
		if err := db.Create(&users[i]).Error; err != nil {
			log.Fatal("user seed failed:", err)
		}
	}

	log.Println("Creating tags...")
	tagRepo := repository.NewTagRepository(db)
	tags := []domain.Tag{
		{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
		{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
	}
	if err := tagRepo.BulkCreate(ctx, tags); err != nil {
		log.Fatal("tag seed failed:", err)
	}

	log.Println("Creating ingredients...")
	ingredientRepo := repository.NewIngredientRepository(db)
	ingredients := []domain.Ingredient{
		{Name: "мука", MeasurementUnit: "г"},
		{Name: "сахар", MeasurementUnit: "г"},
		{Name: "соль", MeasurementUnit: "г"},
		{Name: "молоко", MeasurementUnit: "мл"},
		{Name: "яйца", MeasurementUnit: "шт."},
		{Name: "масло сливочное", MeasurementUnit: "г"},
		{Name: "масло растительное", MeasurementUnit: "мл"},
		{Name: "картофель", MeasurementUnit: "г"},
		{Name: "морковь", MeasurementUnit: "г"},
		{Name: "лук репчатый", MeasurementUnit: "г"},
		{Name: "чеснок", MeasurementUnit: "зубч."},
		{Name: "помидоры", MeasurementUnit: "г"},
		{Name: "огурцы", MeasurementUnit: "г"},
		{Name: "капуста", MeasurementUnit: "г"},
		{Name: "рис", MeasurementUnit: "г"},
		{Name: "гречка", MeasurementUnit: "г"},
		{Name: "макароны", MeasurementUnit: "г"},
		{Name: "говядина", MeasurementUnit: "г"},
		{Name: "курица", MeasurementUnit: "г"},
		{Name: "рыба", MeasurementUnit: "г"},
		{Name: "сыр", MeasurementUnit: "г"},
		{Name: "сметана", MeasurementUnit: "г"},
		{Name: "перец чёрный", MeasurementUnit: "г"},
		{Name: "лавровый лист", MeasurementUnit: "шт."},
		{Name: "укроп", MeasurementUnit: "г"},
	}
	if err := ingredientRepo.BulkCreate(ctx, ingredients); err != nil {
		log.Fatal("ingredient seed failed:", err)
	}

	log.Printf("Seed done: %d users, %d tags, %d ingredients", len(users), len(tags), len(ingredients))
}
