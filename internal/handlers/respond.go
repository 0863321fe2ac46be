package handlers

import (
	"go-aqua-delivery/internal/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a taxonomy error onto the standard envelope. The code
// field is stable for frontend branching; the message is display text.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"code":  apperr.CodeOf(err),
	})
}
