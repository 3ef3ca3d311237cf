package recipe

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/pkg/response"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

// Handler обрабатывает HTTP запросы для рецептов
type Handler struct {
	service              *Service
	shoppingListFilename string
}

func NewHandler(service *Service, shoppingListFilename string) *Handler {
	return &Handler{
		service:              service,
		shoppingListFilename: shoppingListFilename,
	}
}

// RegisterPublic — чтение рецептов с опциональной авторизацией.
// Статический "download_shopping_cart" конфликтует в дереве gin
// с wildcard ":id", поэтому разбирается внутри GetRecipe.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/recipes/", h.ListRecipes)
	rg.GET("/recipes/:id/", h.GetRecipe)
}

// RegisterProtected — мутации и toggle-операции, требующие авторизации.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/recipes/", h.CreateRecipe)
	rg.PATCH("/recipes/:id/", h.UpdateRecipe)
	rg.DELETE("/recipes/:id/", h.DeleteRecipe)
	rg.POST("/recipes/:id/favorite/", h.AddFavorite)
	rg.DELETE("/recipes/:id/favorite/", h.RemoveFavorite)
	rg.POST("/recipes/:id/shopping_cart/", h.AddToCart)
	rg.DELETE("/recipes/:id/shopping_cart/", h.RemoveFromCart)
}

func (h *Handler) ListRecipes(c *gin.Context) {
	page, perPage := parsePagination(c)

	f := repository.RecipeFilters{
		ViewerID: c.GetInt64("user_id"),
		Limit:    perPage,
		Offset:   (page - 1) * perPage,
	}

	if author := c.Query("author"); author != "" {
		if id, err := strconv.ParseInt(author, 10, 64); err == nil && id > 0 {
			f.AuthorID = id
		}
	}
	f.TagSlugs = c.QueryArray("tags")
	f.IsFavorited = parseBoolQuery(c, "is_favorited")
	f.IsInShoppingCart = parseBoolQuery(c, "is_in_shopping_cart")

	recipes, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to list recipes.")
		return
	}

	c.JSON(http.StatusOK, RecipeListResponse{
		Recipes: recipes,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	if c.Param("id") == "download_shopping_cart" {
		h.DownloadShoppingCart(c)
		return
	}

	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	recipe, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to get recipe.")
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	var req WriteRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid recipe payload: "+err.Error())
		return
	}

	recipe, err := h.service.Create(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			response.ValidationErrors(c, http.StatusBadRequest, vErr.Fields)
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to create recipe.")
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	var req WriteRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid recipe payload: "+err.Error())
		return
	}

	recipe, err := h.service.Update(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, ErrNotAuthor):
			response.Detail(c, http.StatusForbidden, "Only author can update recipe.")
		case errors.As(err, &vErr):
			response.ValidationErrors(c, http.StatusBadRequest, vErr.Fields)
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to update recipe.")
		}
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, ErrNotAuthor):
			response.Detail(c, http.StatusForbidden, "Only author can delete recipe.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to delete recipe.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	short, err := h.service.Favorite(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, repository.ErrAlreadyFavorite):
			response.Detail(c, http.StatusBadRequest, "Recipe already in favorite.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to add favorite.")
		}
		return
	}

	c.JSON(http.StatusCreated, short)
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	err := h.service.Unfavorite(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, repository.ErrNotFavorite):
			response.Detail(c, http.StatusBadRequest, "Recipe not in favorite.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to remove favorite.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) AddToCart(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	short, err := h.service.AddToCart(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, repository.ErrAlreadyInCart):
			response.Detail(c, http.StatusBadRequest, "Recipe already in shopping cart.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to add recipe to shopping cart.")
		}
		return
	}

	c.JSON(http.StatusCreated, short)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	id, ok := parseRecipeID(c)
	if !ok {
		return
	}

	err := h.service.RemoveFromCart(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Recipe not found.")
		case errors.Is(err, repository.ErrNotInCart):
			response.Detail(c, http.StatusBadRequest, "Recipe not in shopping cart.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to remove recipe from shopping cart.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart отдаёт список покупок текстовым вложением.
func (h *Handler) DownloadShoppingCart(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	text, err := h.service.BuildShoppingList(c.Request.Context(), userID)
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to build shopping list.")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+h.shoppingListFilename)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func parseRecipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid recipe id.")
		return 0, false
	}
	return id, true
}

func parsePagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// parseBoolQuery возвращает nil, если параметр не задан или не похож
// на булево значение: фильтр в этом случае не применяется.
func parseBoolQuery(c *gin.Context, name string) *bool {
	switch c.Query(name) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}
