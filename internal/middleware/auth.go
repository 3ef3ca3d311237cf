package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "github.com/maximov-569/foodgram-project-react/internal/pkg/jwt"
)

// AuthRequired проверяет Bearer-токен и кладёт user_id в контекст.
// Без валидного токена запрос обрывается с 401.
func AuthRequired(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c, jwt)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// AuthOptional пропускает запрос в любом случае, но если валидный
// токен есть — кладёт user_id в контекст. Нужен для публичных
// endpoints, проекции которых зависят от текущего пользователя
// (is_favorited, is_in_shopping_cart, is_subscribed).
func AuthOptional(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseToken(c, jwt); ok {
			c.Set("user_id", claims.UserID)
		}
		c.Next()
	}
}

func parseToken(c *gin.Context, jwt *jwtsvc.Service) (*jwtsvc.Claims, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, false
	}

	tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if tokenStr == "" {
		return nil, false
	}

	claims, err := jwt.ValidateToken(tokenStr)
	if err != nil {
		return nil, false
	}
	return claims, true
}
