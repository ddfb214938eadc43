package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stikom-adp/siakad-api/internal/middleware"
	"github.com/stikom-adp/siakad-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func identityFromContext(c *gin.Context) *models.CurrentUser {
	return middleware.Identity(c)
}

func pageParams(c *gin.Context) (int, int) {
	page, size := 1, 20
	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		page = p
	}
	if s, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		size = s
	}
	return page, size
}
