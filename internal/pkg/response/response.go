package response

import "github.com/gin-gonic/gin"

// Detail отправляет ошибку в формате {"detail": "..."} —
// единый формат для всех ошибок API.
func Detail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
}

// ValidationErrors отправляет накопленные ошибки валидации
// в виде карты "поле -> сообщение".
func ValidationErrors(c *gin.Context, statusCode int, fields map[string]string) {
	c.JSON(statusCode, gin.H{
		"detail": "Validation failed.",
		"errors": fields,
	})
}
