package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/maximov-569/foodgram-project-react/internal/pkg/response"
	"github.com/maximov-569/foodgram-project-react/internal/repository"
)

// Handler обрабатывает HTTP запросы для пользователей и подписок
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublic — маршруты, доступные с опциональной авторизацией.
// Статические "me" и "subscriptions" конфликтуют в дереве gin
// с wildcard ":id", поэтому разбираются внутри GetUser.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/users/", h.ListUsers)
	rg.GET("/users/:id/", h.GetUser)
}

// RegisterProtected — маршруты, требующие авторизации.
func (h *Handler) RegisterProtected(rg *gin.RouterGroup) {
	rg.POST("/users/:id/subscribe/", h.Subscribe)
	rg.DELETE("/users/:id/subscribe/", h.Unsubscribe)
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, perPage := parsePagination(c)

	users, total, err := h.service.ListUsers(c.Request.Context(), c.GetInt64("user_id"), perPage, (page-1)*perPage)
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to list users.")
		return
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users:   users,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (h *Handler) GetUser(c *gin.Context) {
	switch c.Param("id") {
	case "me":
		h.Me(c)
		return
	case "subscriptions":
		h.Subscriptions(c)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Detail(c, http.StatusNotFound, "User not found.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to get user.")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID, userID)
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to get current user.")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) Subscriptions(c *gin.Context) {
	if c.GetInt64("user_id") == 0 {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	page, perPage := parsePagination(c)

	subs, total, err := h.service.Subscriptions(
		c.Request.Context(),
		c.GetInt64("user_id"),
		parseRecipesLimit(c),
		perPage,
		(page-1)*perPage,
	)
	if err != nil {
		response.Detail(c, http.StatusInternalServerError, "Failed to list subscriptions.")
		return
	}

	c.JSON(http.StatusOK, SubscriptionListResponse{
		Subscriptions: subs,
		Total:         total,
		Page:          page,
		PerPage:       perPage,
	})
}

func (h *Handler) Subscribe(c *gin.Context) {
	authorID, ok := parseID(c)
	if !ok {
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), c.GetInt64("user_id"), authorID, parseRecipesLimit(c))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Author not found.")
		case errors.Is(err, ErrSelfSubscription):
			response.Detail(c, http.StatusBadRequest, "Subscribing to yourself is not allowed.")
		case errors.Is(err, repository.ErrAlreadySubscribed):
			response.Detail(c, http.StatusBadRequest, "Already subscribed to this author.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to subscribe.")
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	authorID, ok := parseID(c)
	if !ok {
		return
	}

	err := h.service.Unsubscribe(c.Request.Context(), c.GetInt64("user_id"), authorID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.Detail(c, http.StatusNotFound, "Author not found.")
		case errors.Is(err, repository.ErrNotSubscribed):
			response.Detail(c, http.StatusBadRequest, "You are not subscribed to this author.")
		default:
			response.Detail(c, http.StatusInternalServerError, "Failed to unsubscribe.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid user id.")
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

// parseRecipesLimit разбирает recipes_limit осторожно:
// нечисловые и неположительные значения игнорируются.
func parseRecipesLimit(c *gin.Context) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0
	}
	return limit
}
