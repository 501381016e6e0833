package response

import "github.com/gin-gonic/gin"

// JSON writes data as the response body unchanged.
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error writes the flat {"error": "..."} body used by every endpoint.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

// AbortError is Error for middleware: it stops the handler chain.
func AbortError(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"error": message})
}

// ValidationError reports field-level problems alongside the flat message.
func ValidationError(c *gin.Context, statusCode int, message string, fields map[string]string) {
	c.JSON(statusCode, gin.H{
		"error":  message,
		"fields": fields,
	})
}
