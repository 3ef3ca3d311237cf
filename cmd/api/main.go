package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/maximov-569/foodgram-project-react/internal/config"
	"github.com/maximov-569/foodgram-project-react/internal/database"
	"github.com/maximov-569/foodgram-project-react/internal/middleware"
	"github.com/maximov-569/foodgram-project-react/internal/modules/auth"
	"github.com/maximov-569/foodgram-project-react/internal/modules/catalog"
	"github.com/maximov-569/foodgram-project-react/internal/modules/recipe"
	"github.com/maximov-569/foodgram-project-react/internal/modules/users"
	"github.com/maximov-569/foodgram-project-react/internal/pkg/images"
	jwtsvc "github.com/maximov-569/foodgram-project-react/internal/pkg/jwt"
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
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	cartRepo := repository.NewShoppingCartRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	imageStore := images.NewStore(cfg.MediaDir)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	usersService := users.NewService(userRepo, subscriptionRepo, recipeRepo)
	usersHandler := users.NewHandler(usersService)

	catalogHandler := catalog.NewHandler(tagRepo, ingredientRepo)

	recipeService := recipe.NewService(
		recipeRepo,
		tagRepo,
		ingredientRepo,
		favoriteRepo,
		cartRepo,
		subscriptionRepo,
		imageStore,
	)
	recipeHandler := recipe.NewHandler(recipeService, cfg.ShoppingListFilename)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())
	r.Static("/media", cfg.MediaDir)

	api := r.Group("/api")
	{
		authHandler.RegisterRoutes(api)
		catalogHandler.RegisterRoutes(api)

		// public: проекции зависят от текущего пользователя, если он есть
		public := api.Group("/")
		public.Use(middleware.AuthOptional(j))
		{
			usersHandler.RegisterPublic(public)
			recipeHandler.RegisterPublic(public)
		}

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(j))
		{
			usersHandler.RegisterProtected(protected)
			recipeHandler.RegisterProtected(protected)
		}
	}

	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
