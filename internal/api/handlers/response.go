package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Int("status", statusCode).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
