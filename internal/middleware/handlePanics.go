package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		if err, ok := recovered.(error); ok {
			c.String(http.StatusInternalServerError, err.Error())
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
