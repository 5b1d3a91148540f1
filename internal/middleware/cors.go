package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSOptions містить значення CORS заголовків
type CORSOptions struct {
	AllowedOrigin  string
	AllowedHeaders []string
	AllowedMethods []string
}

// DefaultCORSOptions повертає дозвільні налаштування, які relay застосовує до всіх відповідей
func DefaultCORSOptions() CORSOptions {
	return CORSOptions{
		AllowedOrigin: "*",
		AllowedHeaders: []string{
			"Cache-Control",
			"Pragma",
			"Origin",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPut,
			http.MethodPost,
			http.MethodOptions,
		},
	}
}

// CORS встановлює CORS заголовки на кожну відповідь, включно з помилками та 404.
// Заголовки пишуться до виклику наступних handlers, тому потрапляють у відповідь з будь-яким статусом.
func CORS(opts CORSOptions) gin.HandlerFunc {
	allowHeaders := strings.Join(opts.AllowedHeaders, ", ")
	allowMethods := strings.Join(opts.AllowedMethods, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", opts.AllowedOrigin)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Access-Control-Allow-Methods", allowMethods)

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
