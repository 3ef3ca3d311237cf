package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/pkg/response"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

// Handler отдаёт справочники тегов и ингредиентов. Только чтение,
// доступно всем без авторизации.
type Handler struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
}

func NewHandler(tags repository.TagRepository, ingredients repository.IngredientRepository) *Handler {
	return &Handler{tags: tags, ingredients: ingredients}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags/", h.ListTags)
	rg.GET("/tags/:id/", h.GetTag)
	rg.GET("/ingredients/", h.ListIngredients)
	rg.GET("/ingredients/:id/", h.GetIngredient)
}

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to list tags.")
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) GetTag(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid tag id.")
		return
	}

	tag, err := h.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Detail(c, http.StatusNotFound, "Tag not found.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to get tag.")
		return
	}

	c.JSON(http.StatusOK, tag)
}

// ListIngredients поддерживает поиск по имени через ?search=<префикс>.
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredients.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to list ingredients.")
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

func (h *Handler) GetIngredient(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid ingredient id.")
		return
	}

	ingredient, err := h.ingredients.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Detail(c, http.StatusNotFound, "Ingredient not found.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to get ingredient.")
		return
	}

	c.JSON(http.StatusOK, ingredient)
}
