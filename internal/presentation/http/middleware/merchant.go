package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	infraRepo "github.com/ramuneri/tillpoint-api/internal/infrastructure/repository"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
)

// MerchantHeader carries the merchant a request is scoped to.
const MerchantHeader = "X-Merchant-ID"

// MerchantMiddleware requires a merchant ID on every request and scopes the
// request context to it. Every repository query downstream filters by this
// merchant; a request without one never reaches a handler.
func MerchantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(MerchantHeader)
		if header == "" {
			response.BadRequest(c, "X-Merchant-ID header is required")
			c.Abort()
			return
		}

		merchantID, err := uuid.Parse(header)
		if err != nil || merchantID == uuid.Nil {
			response.BadRequest(c, "Invalid merchant ID")
			c.Abort()
			return
		}

		// Set merchant ID in Gin context (for middleware/handlers)
		c.Set("merchant_id", merchantID)

		// Also set merchant ID in request context (for services/repositories)
		ctx := infraRepo.WithMerchant(c.Request.Context(), merchantID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetMerchantID retrieves the merchant ID from gin context
func GetMerchantID(c *gin.Context) uuid.UUID {
	merchantID, exists := c.Get("merchant_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := merchantID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
