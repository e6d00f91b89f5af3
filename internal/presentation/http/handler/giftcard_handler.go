package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ramuneri/tillpoint-api/internal/application/service"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/request"
	"github.com/ramuneri/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/ramuneri/tillpoint-api/pkg/money"
)

// GiftcardHandler handles gift card HTTP requests
type GiftcardHandler struct {
	giftcardService *service.GiftcardService
}

// NewGiftcardHandler creates a new gift card handler
func NewGiftcardHandler(giftcardService *service.GiftcardService) *GiftcardHandler {
	return &GiftcardHandler{giftcardService: giftcardService}
}

// Issue handles creating a gift card
func (h *GiftcardHandler) Issue(c *gin.Context) {
	var req request.IssueGiftcardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	card, err := h.giftcardService.Issue(c.Request.Context(), &service.IssueGiftcardInput{
		Code:                req.Code,
		InitialBalanceCents: money.CentsFromFloat(req.InitialBalance),
		ExpiresAt:           req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Gift card issued successfully", card)
}

// GetByCode handles looking a gift card up by its code
func (h *GiftcardHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Gift card code is required")
		return
	}

	card, err := h.giftcardService.GetByCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Gift card retrieved successfully", card)
}

// Deactivate handles taking a gift card out of circulation
func (h *GiftcardHandler) Deactivate(c *gin.Context) {
	id, ok := ParseIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid gift card ID")
		return
	}

	if err := h.giftcardService.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List handles listing gift cards
func (h *GiftcardHandler) List(c *gin.Context) {
	result, err := h.giftcardService.List(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Gift cards retrieved successfully", result)
}
