package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/matdori/matdori-backend/internal/errors"
)

// parseIDParam reads a positive numeric path parameter; on failure the 400 response is written.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 ID입니다")
		return 0, false
	}
	return uint(id), true
}
