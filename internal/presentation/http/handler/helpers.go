package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetMerchantID extracts the merchant ID from the Gin context
func GetMerchantID(c *gin.Context) *uuid.UUID {
	merchantVal, exists := c.Get("merchant_id")
	if !exists {
		return nil
	}
	merchantID, ok := merchantVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &merchantID
}

// ParseIDParam parses a UUID path parameter
func ParseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
