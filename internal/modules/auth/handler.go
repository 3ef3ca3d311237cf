package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maximov-569/foodgram-project-react/internal/pkg/response"
)

// Handler обрабатывает signup и выдачу токена
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users/", h.Signup)
	rg.POST("/auth/token/login/", h.Login)
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid signup payload: "+err.Error())
		return
	}

	user, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Detail(c, http.StatusBadRequest, "User with this email already exists.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to create user.")
		return
	}

	c.JSON(http.StatusCreated, UserPublic{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid login payload: "+err.Error())
		return
	}

	token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Detail(c, http.StatusBadRequest, "Unable to log in with provided credentials.")
			return
		}
		response.Detail(c, http.StatusInternalServerError, "Failed to log in.")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AuthToken: token})
}
